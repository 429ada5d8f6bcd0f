package storage

import "fmt"

const (
	ReasonUnreachable  = "unreachable"
	ReasonInvalidImage = "invalid image"
)

// DownloadError reports a remote image that could not be fetched or decoded.
// It is always raised before anything is written to the image directory.
type DownloadError struct {
	URL    string
	Reason string
	Err    error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("download %s: %s", e.URL, e.Reason)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// IOError wraps a filesystem failure on a single image file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
