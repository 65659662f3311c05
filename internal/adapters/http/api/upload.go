package api

import (
	"net/http"

	"github.com/okian/gvera/pkg/logger"
)

type uploadResponse struct {
	Property    string `json:"property"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// HandleUpload handles POST /upload?field=f&rename=x. The file is moved
// into the configured upload directory.
func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := q.Get("field")
	if field == "" {
		field = "file"
	}

	req, ok := s.newRequest(w, r)
	if !ok {
		return
	}

	f, err := req.FileByPropertyName(field, q.Get("rename"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := req.MoveFileToDirectory(r.Context(), s.uploadDir, f); err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "file uploaded", logger.String("property", field), logger.String("name", f.Name))
	s.respond(w, r, http.StatusCreated, uploadResponse{
		Property:    f.Property,
		Name:        f.Name,
		Size:        f.Size,
		ContentType: f.ContentType,
	})
}
