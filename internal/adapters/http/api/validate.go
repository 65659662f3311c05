package api

import (
	"errors"
	"net/http"

	"github.com/okian/gvera/internal/adapters/http/response"
	"github.com/okian/gvera/internal/domain/types"
	"github.com/okian/gvera/internal/domain/validation"
)

type validateResponse struct {
	Caller string `json:"caller"`
	Valid  bool   `json:"valid"`
}

// HandleValidate handles /validate/{controller}/{method}: the request is
// checked against the rules configured for that caller.
func (s *Server) HandleValidate(w http.ResponseWriter, r *http.Request) {
	caller := types.Caller{Type: r.PathValue("controller"), Method: r.PathValue("method")}
	if !caller.Valid() {
		s.fail(w, r, ErrBadRequest)
		return
	}

	req, ok := s.newRequest(w, r)
	if !ok {
		return
	}

	valid, err := req.Validate(r.Context(), caller)
	if valid {
		s.respond(w, r, http.StatusOK, validateResponse{Caller: caller.Key(), Valid: true})
		return
	}

	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		body := response.ErrorBody{Code: "invalid", Message: "validation failed", Details: fe}
		s.respond(w, r, http.StatusUnprocessableEntity, body)
		return
	}
	if err == nil {
		err = validation.ErrInvalid
	}
	s.fail(w, r, err)
}
