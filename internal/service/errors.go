package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrAdvisorUnavailable = errors.New("answer advisor is not configured")
)
