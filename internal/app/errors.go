package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("item name is required")
	ErrNotStarted  = errors.New("service not started")
)
