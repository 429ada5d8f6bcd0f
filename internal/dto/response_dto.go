package dto

import "time"

// QuestionResponse is returned right after a plate has been stored.
type QuestionResponse struct {
	ID            uint      `json:"id"`
	ImagePath     string    `json:"image_path"`
	CorrectAnswer string    `json:"correct_answer"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuestionSummary is one row of the bank listing. The answer is withheld until revealed.
type QuestionSummary struct {
	ID          uint      `json:"id"`
	ImagePath   string    `json:"image_path"`
	ImageName   string    `json:"image_name"`
	ImageExists bool      `json:"image_exists"`
	CreatedAt   time.Time `json:"created_at"`
}

type AnswerResponse struct {
	ID            uint   `json:"id"`
	CorrectAnswer string `json:"correct_answer"`
}

type DeleteResponse struct {
	ID          uint   `json:"id"`
	ImagePath   string `json:"image_path"`
	FileRemoved bool   `json:"file_removed"`
	FileError   string `json:"file_error,omitempty"`
}

type CleanupFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type CleanupReport struct {
	Scanned int              `json:"scanned"`
	Removed []string         `json:"removed"`
	Failed  []CleanupFailure `json:"failed,omitempty"`
}

type SuggestionResponse struct {
	ID         uint   `json:"id"`
	Suggestion string `json:"suggestion"`
	Matches    bool   `json:"matches"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
