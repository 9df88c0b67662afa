package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("item not found")
	ErrInvalidID       = errors.New("invalid item id")
	ErrInvalidDocument = errors.New("invalid item document")
	ErrClosed          = errors.New("store closed")
	ErrUnavailable     = errors.New("store unavailable")
)

// reason maps an error to a short metrics label.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, ErrInvalidDocument):
		return "invalid_document"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "internal"
	}
}
