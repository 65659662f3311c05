// Package filemanager turns multipart uploads into addressable files and
// moves them onto the local file system.
package filemanager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gvera/pkg/logger"
	"github.com/okian/gvera/pkg/metrics"
)

// sniffLen is how many leading bytes http.DetectContentType looks at.
const sniffLen = 512

// Manager builds file collections and persists files under a root directory.
type Manager struct {
	root    string
	allowed map[string]bool
	logger  logger.Logger
}

// New creates a Manager rooted at the current directory unless WithRoot is given.
func New(opts ...Option) *Manager {
	m := &Manager{
		root:   ".",
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BuildFilesFromSource collects the first file of every property in src.
// A non-empty renameTo renames every collected file.
func (m *Manager) BuildFilesFromSource(src map[string][]*multipart.FileHeader, renameTo string) (*Collection, error) {
	c := &Collection{files: make(map[string]*File, len(src))}
	for property, headers := range src {
		if len(headers) == 0 || headers[0] == nil {
			continue
		}
		f := NewFile(property, headers[0], renameTo)
		if f.Name == "" {
			continue
		}
		c.files[property] = f
	}
	return c, nil
}

// SaveToFileSystem moves f into directory (relative to the root). The
// directory must already exist. The content type is sniffed from the data
// rather than trusted from the client.
func (m *Manager) SaveToFileSystem(ctx context.Context, directory string, f *File) (bool, error) {
	start := time.Now()
	err := m.save(ctx, directory, f)

	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrInvalidFileType):
		result = "invalid_type"
	case err != nil:
		result = "error"
	}
	metrics.RecordFileSave(result, float64(time.Since(start).Microseconds())/1000)

	if err != nil {
		m.logger.Warn(ctx, "file save failed", logger.String("directory", directory), logger.Error(err))
		return false, err
	}
	m.logger.Debug(ctx, "file saved",
		logger.String("directory", directory),
		logger.String("name", f.Name),
		logger.Int64("size", f.Size))
	return true, nil
}

func (m *Manager) save(ctx context.Context, directory string, f *File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f == nil || f.header == nil {
		return fmt.Errorf("%w: no file", ErrNotFound)
	}

	dir, err := m.resolve(directory)
	if err != nil {
		return err
	}

	src, err := f.header.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, f.Name, err)
	}
	defer func() { _ = src.Close() }()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	head = head[:n]

	detected := http.DetectContentType(head)
	if !m.accepts(detected) {
		return fmt.Errorf("%w: %s is %s", ErrInvalidFileType, f.Name, detected)
	}
	f.ContentType = detected

	tmp := filepath.Join(dir, "."+uuid.NewString()+".part")
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	_, err = io.Copy(out, io.MultiReader(bytes.NewReader(head), src))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", f.Name, err)
	}

	if err := os.Rename(tmp, filepath.Join(dir, f.Name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move %s: %w", f.Name, err)
	}
	return nil
}

// resolve maps directory under the root. Cleaning against "/" first clamps
// any ".." segments at the root.
func (m *Manager) resolve(directory string) (string, error) {
	root, err := filepath.Abs(m.root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	dir := filepath.Join(root, filepath.Clean("/"+directory))

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: directory %q", ErrNotFound, directory)
		}
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %q is not a directory", ErrNotFound, directory)
	}
	return dir, nil
}

func (m *Manager) accepts(contentType string) bool {
	if len(m.allowed) == 0 {
		return true
	}
	return m.allowed[mediaType(contentType)]
}

func normalizeTypes(types []string) map[string]bool {
	out := make(map[string]bool, len(types))
	for _, t := range types {
		if mt := mediaType(t); mt != "" {
			out[mt] = true
		}
	}
	return out
}

func mediaType(t string) string {
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(t))
	}
	return mt
}
