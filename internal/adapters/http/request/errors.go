package request

import "errors"

// Sentinel kinds for request errors.
var (
	ErrNotFound          = errors.New("parameter not found")
	ErrUnsupportedMethod = errors.New("unsupported request method")
	ErrMalformedBody     = errors.New("malformed request body")
	ErrBodyTooLarge      = errors.New("request body too large")
	ErrNoFileManager     = errors.New("no file manager configured")
	ErrNoValidator       = errors.New("no validator configured")
)
