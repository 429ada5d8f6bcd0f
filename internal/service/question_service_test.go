package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/lshigami/platebank/internal/model"
	"github.com/lshigami/platebank/internal/repository"
	"github.com/lshigami/platebank/internal/storage"
)

type stubQuestionRepo struct {
	nextID    uint
	questions map[uint]*model.Question

	createErr error
}

func newStubQuestionRepo() *stubQuestionRepo {
	return &stubQuestionRepo{nextID: 1, questions: map[uint]*model.Question{}}
}

func (r *stubQuestionRepo) Init() error { return nil }

func (r *stubQuestionRepo) AnswerExists(answer string) (bool, error) {
	for _, q := range r.questions {
		if q.CorrectAnswer == answer {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubQuestionRepo) Create(imagePath, answer string) (*model.Question, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if exists, _ := r.AnswerExists(answer); exists {
		return nil, repository.ErrDuplicateAnswer
	}
	q := &model.Question{ID: r.nextID, ImagePath: imagePath, CorrectAnswer: answer, CreatedAt: time.Now()}
	r.questions[q.ID] = q
	r.nextID++
	copy := *q
	return &copy, nil
}

func (r *stubQuestionRepo) FindByID(id uint) (*model.Question, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, repository.ErrQuestionNotFound
	}
	copy := *q
	return &copy, nil
}

func (r *stubQuestionRepo) FindAll() ([]model.Question, error) {
	out := make([]model.Question, 0, len(r.questions))
	for _, q := range r.questions {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubQuestionRepo) ImagePaths() (map[string]struct{}, error) {
	set := map[string]struct{}{}
	for _, q := range r.questions {
		set[q.ImagePath] = struct{}{}
	}
	return set, nil
}

func (r *stubQuestionRepo) Delete(id uint) (string, bool, error) {
	q, ok := r.questions[id]
	if !ok {
		return "", false, nil
	}
	delete(r.questions, id)
	return q.ImagePath, true, nil
}

type stubAdvisor struct {
	enabled bool
	answer  string
	format  string
}

func (a *stubAdvisor) Enabled() bool { return a.enabled }

func (a *stubAdvisor) SuggestAnswer(ctx context.Context, image []byte, format string) (string, error) {
	a.format = format
	return a.answer, nil
}

func newTestService(t *testing.T, advisor AnswerAdvisor) (*questionService, *stubQuestionRepo, *storage.ImageMaterializer) {
	t.Helper()
	images, err := storage.New(filepath.Join(t.TempDir(), "images"), time.Second, 1<<20)
	if err != nil {
		t.Fatalf("materializer: %v", err)
	}
	repo := newStubQuestionRepo()
	if advisor == nil {
		advisor = &stubAdvisor{}
	}
	return NewQuestionService(repo, images, advisor).(*questionService), repo, images
}

func listFiles(t *testing.T, images *storage.ImageMaterializer) []string {
	t.Helper()
	files, err := images.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return files
}

func TestCreateFromUploadStoresFileAndRow(t *testing.T) {
	svc, repo, images := newTestService(t, nil)

	resp, err := svc.CreateFromUpload([]byte("plate"), "plate.png", "  12 ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.ID != 1 || resp.CorrectAnswer != "12" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if !images.Exists(resp.ImagePath) {
		t.Fatalf("expected file at %s", resp.ImagePath)
	}
	if len(repo.questions) != 1 {
		t.Fatalf("expected one row")
	}
}

func TestCreateFromUploadValidation(t *testing.T) {
	svc, _, images := newTestService(t, nil)

	cases := []struct {
		name     string
		data     []byte
		filename string
		answer   string
	}{
		{"blank answer", []byte("x"), "a.png", "   "},
		{"unsupported extension", []byte("x"), "a.gif", "5"},
		{"no extension", []byte("x"), "plate", "5"},
		{"empty file", nil, "a.jpg", "5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateFromUpload(tc.data, tc.filename, tc.answer)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if files := listFiles(t, images); len(files) != 0 {
		t.Fatalf("rejected uploads must not write files: %v", files)
	}
}

func TestDuplicateAnswerWritesNoFile(t *testing.T) {
	svc, _, images := newTestService(t, nil)
	if _, err := svc.CreateFromUpload([]byte("a"), "a.jpeg", "RED"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.CreateFromUpload([]byte("b"), "b.jpeg", "RED")
	if !errors.Is(err, repository.ErrDuplicateAnswer) {
		t.Fatalf("expected ErrDuplicateAnswer, got %v", err)
	}
	if files := listFiles(t, images); len(files) != 1 {
		t.Fatalf("expected only the first file, got %v", files)
	}
}

func TestFailedSaveRemovesMaterializedFile(t *testing.T) {
	svc, repo, images := newTestService(t, nil)
	repo.createErr = errors.New("disk I/O error")

	if _, err := svc.CreateFromUpload([]byte("a"), "a.png", "8"); err == nil {
		t.Fatal("expected error")
	}
	if files := listFiles(t, images); len(files) != 0 {
		t.Fatalf("expected file to be cleaned up, got %v", files)
	}
}

func TestCreateFromURLDownloadErrorLeavesNothing(t *testing.T) {
	svc, repo, images := newTestService(t, nil)

	_, err := svc.CreateFromURL(context.Background(), "http://127.0.0.1:1/plate.png", "3")
	var dlErr *storage.DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if len(repo.questions) != 0 || len(listFiles(t, images)) != 0 {
		t.Fatalf("download failure must not leave a row or a file")
	}
}

func TestListQuestionsFlagsMissingFiles(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	kept, err := svc.CreateFromUpload([]byte("a"), "a.png", "A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lost, err := svc.CreateFromUpload([]byte("b"), "b.png", "B")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := os.Remove(lost.ImagePath); err != nil {
		t.Fatalf("remove: %v", err)
	}

	list, err := svc.ListQuestions()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != kept.ID || list[1].ID != lost.ID {
		t.Fatalf("unexpected listing %+v", list)
	}
	if !list[0].ImageExists || list[1].ImageExists {
		t.Fatalf("ImageExists flags wrong: %+v", list)
	}
	if list[0].ImageName != filepath.Base(kept.ImagePath) {
		t.Fatalf("ImageName = %q", list[0].ImageName)
	}
}

func TestRevealAnswer(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	q, _ := svc.CreateFromUpload([]byte("a"), "a.png", "42")

	answer, err := svc.RevealAnswer(q.ID)
	if err != nil || answer.CorrectAnswer != "42" {
		t.Fatalf("reveal: %+v %v", answer, err)
	}
	if _, err := svc.RevealAnswer(99); !errors.Is(err, repository.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestDeleteQuestionRemovesFile(t *testing.T) {
	svc, repo, images := newTestService(t, nil)
	q, _ := svc.CreateFromUpload([]byte("a"), "a.png", "42")

	resp, err := svc.DeleteQuestion(q.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !resp.FileRemoved || resp.ImagePath != q.ImagePath {
		t.Fatalf("unexpected response %+v", resp)
	}
	if images.Exists(q.ImagePath) || len(repo.questions) != 0 {
		t.Fatalf("expected row and file to be gone")
	}
	if _, err := svc.DeleteQuestion(q.ID); !errors.Is(err, repository.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestDeleteQuestionWithMissingFile(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	q, _ := svc.CreateFromUpload([]byte("a"), "a.png", "42")
	os.Remove(q.ImagePath)

	resp, err := svc.DeleteQuestion(q.ID)
	if err != nil || !resp.FileRemoved {
		t.Fatalf("deleting a row whose file is gone should succeed: %+v %v", resp, err)
	}
}

func TestCleanupOrphansIsIdempotent(t *testing.T) {
	svc, _, images := newTestService(t, nil)
	q, err := svc.CreateFromUpload([]byte("live"), "live.png", "1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	orphan := filepath.Join(images.Dir(), "stray.jpg")
	if err := os.WriteFile(orphan, []byte("orphan"), 0o644); err != nil {
		t.Fatalf("write orphan: %v", err)
	}

	report, err := svc.CleanupOrphans()
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if report.Scanned != 2 || len(report.Removed) != 1 || report.Removed[0] != orphan || len(report.Failed) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if !images.Exists(q.ImagePath) {
		t.Fatalf("live file was removed")
	}

	report, err = svc.CleanupOrphans()
	if err != nil {
		t.Fatalf("second cleanup: %v", err)
	}
	if len(report.Removed) != 0 {
		t.Fatalf("second run removed %v", report.Removed)
	}
}

func TestSuggestAnswer(t *testing.T) {
	advisor := &stubAdvisor{enabled: true, answer: " red\n"}
	svc, _, _ := newTestService(t, advisor)
	q, _ := svc.CreateFromUpload([]byte("a"), "a.png", "RED")

	resp, err := svc.SuggestAnswer(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !resp.Matches || advisor.format != "png" {
		t.Fatalf("unexpected suggestion %+v (format %s)", resp, advisor.format)
	}
}

func TestSuggestAnswerDisabled(t *testing.T) {
	svc, _, _ := newTestService(t, &stubAdvisor{enabled: false})
	q, _ := svc.CreateFromUpload([]byte("a"), "a.png", "RED")

	if _, err := svc.SuggestAnswer(context.Background(), q.ID); !errors.Is(err, ErrAdvisorUnavailable) {
		t.Fatalf("expected ErrAdvisorUnavailable, got %v", err)
	}
}

func TestCleanupOrphansMatchesRelativeAndAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	images, err := storage.New(filepath.Join(dir, "images"), time.Second, 1<<20)
	if err != nil {
		t.Fatalf("materializer: %v", err)
	}
	live := filepath.Join(images.Dir(), "live.png")
	orphan := filepath.Join(images.Dir(), "orphan.png")
	for _, p := range []string{live, orphan} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	repo := newStubQuestionRepo()
	repo.questions[1] = &model.Question{ID: 1, ImagePath: filepath.Join("images", "live.png"), CorrectAnswer: "7"}
	svc := NewQuestionService(repo, images, &stubAdvisor{})

	report, err := svc.CleanupOrphans()
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(report.Removed) != 1 || report.Removed[0] != orphan {
		t.Fatalf("removed = %v, want [%s]", report.Removed, orphan)
	}
	if !images.Exists(live) {
		t.Fatalf("file referenced by a relative path was removed")
	}
}

type failingRemoveStore struct {
	*storage.ImageMaterializer
	failOn string
}

func (s *failingRemoveStore) Remove(path string) error {
	if filepath.Base(path) == s.failOn {
		return &storage.IOError{Op: "remove", Path: path, Err: os.ErrPermission}
	}
	return s.ImageMaterializer.Remove(path)
}

func TestCleanupOrphansContinuesPastFailedRemoval(t *testing.T) {
	images, err := storage.New(filepath.Join(t.TempDir(), "images"), time.Second, 1<<20)
	if err != nil {
		t.Fatalf("materializer: %v", err)
	}
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if err := os.WriteFile(filepath.Join(images.Dir(), name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	svc := NewQuestionService(newStubQuestionRepo(), &failingRemoveStore{ImageMaterializer: images, failOn: "b.jpg"}, &stubAdvisor{})

	report, err := svc.CleanupOrphans()
	if err != nil {
		t.Fatalf("per-file failures must not fail the batch: %v", err)
	}
	if report.Scanned != 3 {
		t.Fatalf("scanned = %d, want 3", report.Scanned)
	}
	removed := map[string]bool{}
	for _, p := range report.Removed {
		removed[filepath.Base(p)] = true
	}
	if len(removed) != 2 || !removed["a.jpg"] || !removed["c.jpg"] {
		t.Fatalf("removed = %v, want a.jpg and c.jpg", report.Removed)
	}
	failed := filepath.Join(images.Dir(), "b.jpg")
	if len(report.Failed) != 1 || report.Failed[0].Path != failed || report.Failed[0].Error == "" {
		t.Fatalf("failed = %+v, want one entry for %s", report.Failed, failed)
	}
	if !images.Exists(failed) {
		t.Fatalf("b.jpg should still be on disk")
	}
}

func TestAnswerIsTrimmedBeforeDuplicateCheck(t *testing.T) {
	svc, _, images := newTestService(t, nil)
	if _, err := svc.CreateFromUpload([]byte("a"), "a.png", "RED"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.CreateFromUpload([]byte("b"), "b.png", " RED\t"); !errors.Is(err, repository.ErrDuplicateAnswer) {
		t.Fatalf("expected padded answer to collide, got %v", err)
	}
	if _, err := svc.CreateFromUpload([]byte("c"), "c.png", "red"); err != nil {
		t.Fatalf("different case is a different answer: %v", err)
	}
	if files := listFiles(t, images); len(files) != 2 {
		t.Fatalf("expected two files, got %v", files)
	}
}
