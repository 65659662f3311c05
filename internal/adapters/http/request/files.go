package request

import (
	"context"
	"fmt"

	"github.com/okian/gvera/internal/adapters/storage/filemanager"
)

// FileByPropertyName returns the file uploaded under property. A non-empty
// renameTo renames it before it is returned.
func (r *Request) FileByPropertyName(property, renameTo string) (*filemanager.File, error) {
	if r.files == nil {
		return nil, ErrNoFileManager
	}
	c, err := r.files.BuildFilesFromSource(r.transport.Files, renameTo)
	if err != nil {
		return nil, err
	}
	f, err := c.ByName(property)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return f, nil
}

// MoveFileToDirectory hands f to the file manager. Its errors, including
// filemanager.ErrNotFound and filemanager.ErrInvalidFileType, are returned
// unchanged.
func (r *Request) MoveFileToDirectory(ctx context.Context, directory string, f *filemanager.File) (bool, error) {
	if r.files == nil {
		return false, ErrNoFileManager
	}
	return r.files.SaveToFileSystem(ctx, directory, f)
}
