package filemanager

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
)

// File is an uploaded file addressed by the form field it arrived in.
type File struct {
	Property    string `json:"property"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`

	header *multipart.FileHeader
}

// NewFile wraps a multipart header. renameTo replaces the client file name;
// the original extension is kept when renameTo has none.
func NewFile(property string, fh *multipart.FileHeader, renameTo string) *File {
	name := cleanName(fh.Filename)
	if renameTo = cleanName(renameTo); renameTo != "" {
		if filepath.Ext(renameTo) == "" {
			renameTo += filepath.Ext(name)
		}
		name = renameTo
	}
	return &File{
		Property:    property,
		Name:        name,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		header:      fh,
	}
}

// cleanName drops any client-supplied directory components.
func cleanName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// Collection holds the files of one request keyed by property name.
type Collection struct {
	files map[string]*File
}

// ByName returns the file uploaded under property. The error for a missing
// property lists the ones that were uploaded.
func (c *Collection) ByName(property string) (*File, error) {
	if c != nil {
		if f, ok := c.files[property]; ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (uploaded: %s)", ErrNotFound, property, strings.Join(c.names(), ", "))
}

func (c *Collection) names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.files))
	for k := range c.files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of files.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.files)
}
