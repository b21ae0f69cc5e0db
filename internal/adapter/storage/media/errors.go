package media

import "errors"

var (
	// ErrNotFound indicates the referenced media does not exist.
	ErrNotFound = errors.New("media not found")
	// ErrInvalidRef indicates an empty, malformed or path-escaping reference.
	ErrInvalidRef = errors.New("invalid media reference")
	// ErrTooLarge indicates the media exceeds the configured size limit.
	ErrTooLarge = errors.New("media too large")
	// ErrUnsupported indicates a reference scheme with no configured backend.
	ErrUnsupported = errors.New("unsupported media reference")
)
