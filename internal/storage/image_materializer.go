package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/lshigami/platebank/config"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp" // registers the webp decoder used by imaging.Decode
)

const (
	filePrefix      = "test_"
	timestampLayout = "20060102_150405"
	urlImageExt     = ".jpg"
	maxNameAttempts = 5
)

// ImageMaterializer turns uploaded bytes or remote images into files under a single
// directory and returns their paths.
type ImageMaterializer struct {
	dir      string
	client   *http.Client
	maxBytes int64
	now      func() time.Time
	suffix   func() string
}

func NewImageMaterializer(cfg *config.Config) (*ImageMaterializer, error) {
	return New(cfg.Storage.ImageDir, cfg.Storage.FetchTimeout, cfg.Storage.MaxUploadMB<<20)
}

// New creates dir if needed. A zero timeout falls back to 15s; maxBytes <= 0 disables the download size cap.
func New(dir string, timeout time.Duration, maxBytes int64) (*ImageMaterializer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ImageMaterializer{
		dir:      dir,
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		now:      time.Now,
		suffix:   func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] },
	}, nil
}

func (m *ImageMaterializer) Dir() string { return m.dir }

// MaterializeUpload writes data verbatim to test_<timestamp><ext>, keeping the
// original file's extension.
func (m *ImageMaterializer) MaterializeUpload(data []byte, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	path, f, err := m.createFile(ext)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &IOError{Op: "close", Path: path, Err: err}
	}
	log.Info().Str("path", path).Int("bytes", len(data)).Msg("Upload materialized")
	return path, nil
}

// MaterializeFromURL downloads url, checks that the body decodes as an image and
// stores it re-encoded as JPEG. Nothing is written unless both steps succeed.
func (m *ImageMaterializer) MaterializeFromURL(ctx context.Context, url string) (string, error) {
	body, err := m.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Downloaded bytes are not a decodable image")
		return "", &DownloadError{URL: url, Reason: ReasonInvalidImage, Err: err}
	}

	path, f, err := m.createFile(urlImageExt)
	if err != nil {
		return "", err
	}
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		f.Close()
		os.Remove(path)
		return "", &IOError{Op: "encode", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &IOError{Op: "close", Path: path, Err: err}
	}
	log.Info().Str("url", url).Str("path", path).Msg("Remote image materialized")
	return path, nil
}

func (m *ImageMaterializer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Reason: ReasonUnreachable, Err: err}
	}
	resp, err := m.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Image download failed")
		return nil, &DownloadError{URL: url, Reason: ReasonUnreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("Image download returned non-200 status")
		return nil, &DownloadError{URL: url, Reason: ReasonUnreachable, Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}

	reader := io.Reader(resp.Body)
	if m.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, m.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &DownloadError{URL: url, Reason: ReasonUnreachable, Err: err}
	}
	if m.maxBytes > 0 && int64(len(body)) > m.maxBytes {
		return nil, &DownloadError{URL: url, Reason: ReasonInvalidImage, Err: fmt.Errorf("image larger than %d bytes", m.maxBytes)}
	}
	return body, nil
}

// createFile opens a new file named test_<timestamp><ext>. When that name is taken a
// random suffix is inserted before the extension; existing files are never truncated.
func (m *ImageMaterializer) createFile(ext string) (string, *os.File, error) {
	base := filePrefix + m.now().Format(timestampLayout)
	name := base + ext
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		path := filepath.Join(m.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, &IOError{Op: "create", Path: path, Err: err}
		}
		name = base + "_" + m.suffix() + ext
	}
	return "", nil, &IOError{Op: "create", Path: filepath.Join(m.dir, base+ext), Err: fs.ErrExist}
}

// Remove deletes a materialized file. A file that is already gone is not an error.
func (m *ImageMaterializer) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

func (m *ImageMaterializer) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (m *ImageMaterializer) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// List returns every regular file directly under the image directory, in the same
// form MaterializeUpload and MaterializeFromURL return paths.
func (m *ImageMaterializer) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "readdir", Path: m.dir, Err: err}
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(m.dir, entry.Name()))
	}
	return paths, nil
}
