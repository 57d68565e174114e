package models

import "errors"

// Custom errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid ID format")
)
