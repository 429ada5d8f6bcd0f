package repository

import (
	"errors"
	"fmt"

	"github.com/lshigami/platebank/internal/model"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateAnswer is returned when a question with the same correct answer already exists.
	ErrDuplicateAnswer  = errors.New("a question with the same answer already exists")
	ErrQuestionNotFound = errors.New("question not found")
)

type QuestionRepository interface {
	Init() error
	AnswerExists(answer string) (bool, error)
	Create(imagePath, answer string) (*model.Question, error)
	FindByID(id uint) (*model.Question, error)
	FindAll() ([]model.Question, error)
	ImagePaths() (map[string]struct{}, error)
	Delete(id uint) (imagePath string, found bool, err error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// Init creates the questions table and its unique answer index when they are missing.
func (r *questionRepository) Init() error {
	if err := r.db.AutoMigrate(&model.Question{}); err != nil {
		return fmt.Errorf("migrate questions: %w", err)
	}
	return nil
}

func (r *questionRepository) AnswerExists(answer string) (bool, error) {
	return answerExists(r.db, answer)
}

func answerExists(db *gorm.DB, answer string) (bool, error) {
	var count int64
	if err := db.Model(&model.Question{}).Where("correct_answer = ?", answer).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check answer: %w", err)
	}
	return count > 0, nil
}

func (r *questionRepository) Create(imagePath, answer string) (*model.Question, error) {
	question := model.Question{ImagePath: imagePath, CorrectAnswer: answer}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		exists, err := answerExists(tx, answer)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateAnswer
		}
		return tx.Create(&question).Error
	})
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// The unique index caught a writer that slipped past the existence check.
		return nil, ErrDuplicateAnswer
	case errors.Is(err, ErrDuplicateAnswer):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("create question: %w", err)
	}
	return &question, nil
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("find question %d: %w", id, err)
	}
	return &question, nil
}

func (r *questionRepository) FindAll() ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Order("id asc").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (r *questionRepository) ImagePaths() (map[string]struct{}, error) {
	var paths []string
	if err := r.db.Model(&model.Question{}).Pluck("image_path", &paths).Error; err != nil {
		return nil, fmt.Errorf("list image paths: %w", err)
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set, nil
}

// Delete removes the row and hands back its image path. The backing file is left alone.
func (r *questionRepository) Delete(id uint) (string, bool, error) {
	var question model.Question
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&question, id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("delete question %d: %w", id, err)
	}
	return question.ImagePath, true, nil
}
