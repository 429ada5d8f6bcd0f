package model

import "time"

// Question is one plate in the bank. Rows are inserted or hard-deleted, never updated.
type Question struct {
	ID            uint      `gorm:"primarykey;autoIncrement" json:"id"`
	ImagePath     string    `gorm:"not null" json:"image_path"`
	CorrectAnswer string    `gorm:"not null;uniqueIndex" json:"correct_answer"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
