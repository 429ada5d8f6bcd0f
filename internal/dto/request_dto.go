package dto

// CreateFromURLRequest registers a plate fetched from a remote image URL.
type CreateFromURLRequest struct {
	ImageURL      string `json:"image_url" binding:"required,url"`
	CorrectAnswer string `json:"correct_answer" binding:"required"`
}

// CreateFromUploadForm is bound from multipart/form-data; the file itself travels in the "image" field.
type CreateFromUploadForm struct {
	CorrectAnswer string `form:"correct_answer" binding:"required"`
}
