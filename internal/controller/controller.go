package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/platebank/internal/dto"
	"github.com/lshigami/platebank/internal/repository"
	"github.com/lshigami/platebank/internal/service"
	"github.com/lshigami/platebank/internal/storage"
	"github.com/rs/zerolog/log"
)

// ParseID reads the ":id" path parameter.
func ParseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid question ID %q", service.ErrInvalidInput, c.Param("id"))
	}
	return uint(id), nil
}

// StatusFor maps service and storage errors onto HTTP status codes.
func StatusFor(err error) int {
	var downloadErr *storage.DownloadError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateAnswer):
		return http.StatusConflict
	case errors.As(err, &downloadErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrAdvisorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes dto.ErrorResponse and logs server-side faults at error level.
func RespondError(c *gin.Context, message string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
	} else {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg(message)
	}
	c.JSON(status, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
}

// ReadUpload reads a multipart file, refusing anything above maxBytes.
func ReadUpload(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fmt.Errorf("%w: file too large (max %d bytes)", service.ErrInvalidInput, maxBytes)
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
