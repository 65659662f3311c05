package api

import (
	"fmt"
	"net/http"
)

type parameterResponse struct {
	Method string `json:"method"`
	Name   string `json:"name"`
	Value  string `json:"value"`
	Ajax   bool   `json:"ajax"`
}

type parametersResponse struct {
	Request map[string]string `json:"request"`
	Stream  map[string]string `json:"stream,omitempty"`
}

// HandleParameter handles /params?name=x for every verb, resolving the
// value the way the verb dictates.
func (s *Server) HandleParameter(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.fail(w, r, fmt.Errorf("%w: missing name", ErrBadRequest))
		return
	}
	req, ok := s.newRequest(w, r)
	if !ok {
		return
	}

	value, err := req.Parameter(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, parameterResponse{
		Method: req.Method().String(),
		Name:   name,
		Value:  value,
		Ajax:   req.IsAjax(),
	})
}

// HandleParameters handles /params/all. The stream is only parsed for
// PUT, PATCH and DELETE.
func (s *Server) HandleParameters(w http.ResponseWriter, r *http.Request) {
	req, ok := s.newRequest(w, r)
	if !ok {
		return
	}

	out := parametersResponse{Request: req.ParametersFromRequest()}
	if req.Method().IsStream() {
		stream, err := req.ParametersFromStream()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out.Stream = stream
	}
	s.respond(w, r, http.StatusOK, out)
}
