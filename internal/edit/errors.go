package edit

import "github.com/pkg/errors"

var (
	// ErrInvalidMode is returned when editing starts without a usable mode
	ErrInvalidMode = errors.New("invalid edit mode")

	// ErrInsufficientVertices is returned when saving before the mode minimum is reached
	ErrInsufficientVertices = errors.New("insufficient vertices")
)
