package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/platebank/config"
	"github.com/lshigami/platebank/internal/controller"
	"github.com/lshigami/platebank/internal/dto"
	"github.com/lshigami/platebank/internal/service"
	"github.com/rs/zerolog/log"
)

type QuestionController struct {
	questionService service.QuestionService
	maxUploadBytes  int64
}

func NewQuestionController(questionService service.QuestionService, cfg *config.Config) *QuestionController {
	return &QuestionController{questionService: questionService, maxUploadBytes: cfg.Storage.MaxUploadMB << 20}
}

// RegisterRoutes mounts the admin API under the given group (normally /api/v1/admin).
func (c *QuestionController) RegisterRoutes(group *gin.RouterGroup) {
	questions := group.Group("/questions")
	questions.GET("", c.ListQuestions)
	questions.POST("/upload", c.CreateFromUpload)
	questions.POST("/url", c.CreateFromURL)
	questions.GET("/:id/answer", c.RevealAnswer)
	questions.POST("/:id/suggest", c.SuggestAnswer)
	questions.DELETE("/:id", c.DeleteQuestion)

	group.POST("/images/cleanup", c.CleanupImages)
}

// ListQuestions godoc
// @Summary (Admin) List the plate bank
// @Description Every question in ascending ID order. Answers are withheld; use the reveal endpoint.
// @Tags Admin - Questions
// @Produce json
// @Success 200 {array} dto.QuestionSummary
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	questions, err := c.questionService.ListQuestions()
	if err != nil {
		controller.RespondError(ctx, "Failed to list questions", err)
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// CreateFromUpload godoc
// @Summary (Admin) Add a plate from an uploaded image
// @Tags Admin - Questions
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Plate image (jpg, jpeg or png)"
// @Param correct_answer formData string true "Correct answer"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Missing file or answer, unsupported type"
// @Failure 409 {object} dto.ErrorResponse "Answer already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions/upload [post]
func (c *QuestionController) CreateFromUpload(ctx *gin.Context) {
	var form dto.CreateFromUploadForm
	if err := ctx.ShouldBind(&form); err != nil {
		log.Warn().Err(err).Msg("Admin CreateFromUpload: Failed to bind form")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	fh, err := ctx.FormFile("image")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Image file is required", Details: []string{err.Error()}})
		return
	}
	data, err := controller.ReadUpload(fh, c.maxUploadBytes)
	if err != nil {
		controller.RespondError(ctx, "Failed to read uploaded image", err)
		return
	}

	resp, err := c.questionService.CreateFromUpload(data, fh.Filename, form.CorrectAnswer)
	if err != nil {
		controller.RespondError(ctx, "Failed to create question", err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// CreateFromURL godoc
// @Summary (Admin) Add a plate from a remote image URL
// @Description The image is downloaded, checked to decode and stored as JPEG.
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param request body dto.CreateFromURLRequest true "Image URL and correct answer"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 409 {object} dto.ErrorResponse "Answer already exists"
// @Failure 422 {object} dto.ErrorResponse "Image unreachable or not an image"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions/url [post]
func (c *QuestionController) CreateFromURL(ctx *gin.Context) {
	var req dto.CreateFromURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateFromURL: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.questionService.CreateFromURL(ctx.Request.Context(), req.ImageURL, req.CorrectAnswer)
	if err != nil {
		controller.RespondError(ctx, "Failed to create question", err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// RevealAnswer godoc
// @Summary (Admin) Reveal the correct answer of a plate
// @Tags Admin - Questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{id}/answer [get]
func (c *QuestionController) RevealAnswer(ctx *gin.Context) {
	id, err := controller.ParseID(ctx)
	if err != nil {
		controller.RespondError(ctx, "Invalid question ID format", err)
		return
	}
	resp, err := c.questionService.RevealAnswer(id)
	if err != nil {
		controller.RespondError(ctx, "Failed to reveal answer", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a plate
// @Description Removes the row, then its image file. A file that cannot be removed is reported in file_error.
// @Tags Admin - Questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} dto.DeleteResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, err := controller.ParseID(ctx)
	if err != nil {
		controller.RespondError(ctx, "Invalid question ID format", err)
		return
	}
	resp, err := c.questionService.DeleteQuestion(id)
	if err != nil {
		controller.RespondError(ctx, "Failed to delete question", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CleanupImages godoc
// @Summary (Admin) Remove image files no question references
// @Tags Admin - Images
// @Produce json
// @Success 200 {object} dto.CleanupReport
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/images/cleanup [post]
func (c *QuestionController) CleanupImages(ctx *gin.Context) {
	report, err := c.questionService.CleanupOrphans()
	if err != nil {
		controller.RespondError(ctx, "Failed to clean up images", err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// SuggestAnswer godoc
// @Summary (Admin) Ask Gemini to read a plate
// @Description Returns the model's reading and whether it matches the stored answer (case-insensitive).
// @Tags Admin - Questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} dto.SuggestionResponse
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Failure 503 {object} dto.ErrorResponse "Gemini not configured"
// @Router /admin/questions/{id}/suggest [post]
func (c *QuestionController) SuggestAnswer(ctx *gin.Context) {
	id, err := controller.ParseID(ctx)
	if err != nil {
		controller.RespondError(ctx, "Invalid question ID format", err)
		return
	}
	resp, err := c.questionService.SuggestAnswer(ctx.Request.Context(), id)
	if err != nil {
		controller.RespondError(ctx, "Failed to suggest answer", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
