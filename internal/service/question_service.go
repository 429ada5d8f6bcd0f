package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/lshigami/platebank/internal/dto"
	"github.com/lshigami/platebank/internal/repository"
	"github.com/lshigami/platebank/internal/storage"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

var allowedUploadExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// ImageStore is the file side of the bank, implemented by *storage.ImageMaterializer.
type ImageStore interface {
	MaterializeUpload(data []byte, originalName string) (string, error)
	MaterializeFromURL(ctx context.Context, url string) (string, error)
	Remove(path string) error
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	List() ([]string, error)
}

type QuestionService interface {
	CreateFromUpload(data []byte, filename, answer string) (*dto.QuestionResponse, error)
	CreateFromURL(ctx context.Context, url, answer string) (*dto.QuestionResponse, error)
	ListQuestions() ([]dto.QuestionSummary, error)
	RevealAnswer(id uint) (*dto.AnswerResponse, error)
	DeleteQuestion(id uint) (*dto.DeleteResponse, error)
	CleanupOrphans() (*dto.CleanupReport, error)
	SuggestAnswer(ctx context.Context, id uint) (*dto.SuggestionResponse, error)
}

type questionService struct {
	repo    repository.QuestionRepository
	images  ImageStore
	advisor AnswerAdvisor
}

func NewQuestionService(repo repository.QuestionRepository, images ImageStore, advisor AnswerAdvisor) QuestionService {
	return &questionService{repo: repo, images: images, advisor: advisor}
}

func (s *questionService) CreateFromUpload(data []byte, filename, answer string) (*dto.QuestionResponse, error) {
	answer, err := normalizeAnswer(answer)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedUploadExts[ext] {
		return nil, fmt.Errorf("%w: unsupported image type %q (use jpg, jpeg or png)", ErrInvalidInput, ext)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", ErrInvalidInput)
	}
	if err := s.ensureAnswerFree(answer); err != nil {
		return nil, err
	}

	path, err := s.images.MaterializeUpload(data, filename)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Failed to save uploaded image")
		return nil, err
	}
	return s.persist(path, answer)
}

func (s *questionService) CreateFromURL(ctx context.Context, url, answer string) (*dto.QuestionResponse, error) {
	answer, err := normalizeAnswer(answer)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: image url is required", ErrInvalidInput)
	}
	if err := s.ensureAnswerFree(answer); err != nil {
		return nil, err
	}

	path, err := s.images.MaterializeFromURL(ctx, strings.TrimSpace(url))
	if err != nil {
		return nil, err
	}
	return s.persist(path, answer)
}

func normalizeAnswer(answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: correct answer is required", ErrInvalidInput)
	}
	return answer, nil
}

// ensureAnswerFree rejects a duplicate before any file is written. Create re-checks inside its transaction.
func (s *questionService) ensureAnswerFree(answer string) error {
	exists, err := s.repo.AnswerExists(answer)
	if err != nil {
		return err
	}
	if exists {
		return repository.ErrDuplicateAnswer
	}
	return nil
}

// persist stores the row for a freshly materialized file and removes the file again if that fails.
func (s *questionService) persist(path, answer string) (*dto.QuestionResponse, error) {
	question, err := s.repo.Create(path, answer)
	if err != nil {
		if rmErr := s.images.Remove(path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove image after rejected save")
		}
		if !errors.Is(err, repository.ErrDuplicateAnswer) {
			log.Error().Err(err).Str("path", path).Msg("Failed to store question")
		}
		return nil, err
	}
	log.Info().Uint("questionID", question.ID).Str("path", path).Msg("Question stored")

	var resp dto.QuestionResponse
	copier.Copy(&resp, question)
	return &resp, nil
}

func (s *questionService) ListQuestions() ([]dto.QuestionSummary, error) {
	questions, err := s.repo.FindAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list questions")
		return nil, err
	}
	resp := make([]dto.QuestionSummary, 0, len(questions))
	copier.Copy(&resp, &questions)
	for i := range resp {
		resp[i].ImageName = filepath.Base(resp[i].ImagePath)
		resp[i].ImageExists = s.images.Exists(resp[i].ImagePath)
	}
	return resp, nil
}

func (s *questionService) RevealAnswer(id uint) (*dto.AnswerResponse, error) {
	question, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return &dto.AnswerResponse{ID: question.ID, CorrectAnswer: question.CorrectAnswer}, nil
}

// DeleteQuestion removes the row first and the file second. A file that cannot be
// removed does not bring the row back; it is reported and left for CleanupOrphans.
func (s *questionService) DeleteQuestion(id uint) (*dto.DeleteResponse, error) {
	path, found, err := s.repo.Delete(id)
	if err != nil {
		log.Error().Err(err).Uint("questionID", id).Msg("Failed to delete question")
		return nil, err
	}
	if !found {
		return nil, repository.ErrQuestionNotFound
	}

	resp := &dto.DeleteResponse{ID: id, ImagePath: path, FileRemoved: true}
	if err := s.images.Remove(path); err != nil {
		log.Warn().Err(err).Uint("questionID", id).Str("path", path).Msg("Question deleted but image file could not be removed")
		resp.FileRemoved = false
		resp.FileError = err.Error()
	}
	return resp, nil
}

// CleanupOrphans removes every file in the image directory that no question references.
// Stored paths and listed files are compared after resolving both to absolute form.
// Per-file failures land in report.Failed without stopping the batch; the error
// return is reserved for failing to read the live set or the directory.
func (s *questionService) CleanupOrphans() (*dto.CleanupReport, error) {
	live, err := s.repo.ImagePaths()
	if err != nil {
		return nil, err
	}
	liveResolved := make(map[string]struct{}, len(live))
	for p := range live {
		liveResolved[resolvePath(p)] = struct{}{}
	}

	files, err := s.images.List()
	if err != nil {
		return nil, err
	}

	report := &dto.CleanupReport{Scanned: len(files), Removed: []string{}}
	var failures error
	for _, f := range files {
		if _, ok := liveResolved[resolvePath(f)]; ok {
			continue
		}
		if err := s.images.Remove(f); err != nil {
			failures = multierr.Append(failures, err)
			continue
		}
		report.Removed = append(report.Removed, f)
	}

	for _, err := range multierr.Errors(failures) {
		failure := dto.CleanupFailure{Error: err.Error()}
		var ioErr *storage.IOError
		if errors.As(err, &ioErr) {
			failure.Path = ioErr.Path
		}
		report.Failed = append(report.Failed, failure)
	}
	if failures != nil {
		log.Warn().Err(failures).Int("failed", len(report.Failed)).Msg("Some orphaned images could not be removed")
	}
	log.Info().Int("scanned", report.Scanned).Int("removed", len(report.Removed)).Msg("Orphan cleanup finished")
	return report, nil
}

// resolvePath puts relative and absolute spellings of the same file into one form.
func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

func (s *questionService) SuggestAnswer(ctx context.Context, id uint) (*dto.SuggestionResponse, error) {
	if s.advisor == nil || !s.advisor.Enabled() {
		return nil, ErrAdvisorUnavailable
	}
	question, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	data, err := s.images.ReadFile(question.ImagePath)
	if err != nil {
		return nil, err
	}
	suggestion, err := s.advisor.SuggestAnswer(ctx, data, imageFormat(question.ImagePath))
	if err != nil {
		log.Error().Err(err).Uint("questionID", id).Msg("Answer advisor failed")
		return nil, err
	}
	return &dto.SuggestionResponse{
		ID:         id,
		Suggestion: suggestion,
		Matches:    strings.EqualFold(strings.TrimSpace(suggestion), question.CorrectAnswer),
	}, nil
}

// imageFormat maps a file extension to the short format name the Gemini API expects.
func imageFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}
