package filemanager

import "errors"

// Sentinel kinds for file manager errors.
var (
	ErrNotFound        = errors.New("file not found")
	ErrInvalidFileType = errors.New("invalid file type")
)
