package service

import "errors"

var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidPagination = errors.New("page and size must be non-negative")
	ErrInvalidSort       = errors.New("unsupported sort")
	ErrMissingField      = errors.New("missing required field")
)
