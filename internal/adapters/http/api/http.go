// Package api registers the HTTP routes that exercise the request façade.
package api

import (
	"context"
	"net/http"

	"github.com/okian/gvera/internal/adapters/http/request"
	"github.com/okian/gvera/internal/adapters/http/response"
	"github.com/okian/gvera/internal/domain/auth"
	"github.com/okian/gvera/internal/domain/types"
	"github.com/okian/gvera/pkg/logger"
)

// Authenticator resolves the caller from the credentials a request carries.
type Authenticator interface {
	Authenticate(ctx context.Context, creds *types.Credentials, token string) (auth.Principal, error)
}

// Server wires HTTP routes for the API.
type Server struct {
	files     request.FileManager
	validator request.Validator
	auth      Authenticator
	logger    logger.Logger

	transportOpts []request.TransportOption
	uploadDir     string
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithFileManager sets the collaborator used by /upload.
func WithFileManager(fm request.FileManager) Option {
	return func(s *Server) { s.files = fm }
}

// WithValidator sets the collaborator used by /validate.
func WithValidator(v request.Validator) Option {
	return func(s *Server) { s.validator = v }
}

// WithAuthenticator sets the collaborator used by /whoami.
func WithAuthenticator(a Authenticator) Option {
	return func(s *Server) { s.auth = a }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBodyLimits bounds raw bodies and in-memory multipart parsing.
func WithBodyLimits(maxBody, maxMultipart int64) Option {
	return func(s *Server) {
		s.transportOpts = append(s.transportOpts,
			request.WithMaxBodyBytes(maxBody),
			request.WithMaxMultipartMemory(maxMultipart))
	}
}

// WithUploadDir sets the directory, relative to the file manager root,
// that /upload moves files into.
func WithUploadDir(dir string) Option {
	return func(s *Server) { s.uploadDir = dir }
}

// NewServer creates a new API server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:    logger.Nop(),
		uploadDir: "/",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("/healthz", s.chain(NewHealthHandler(), "healthz"))
	mux.Handle("/params", s.chain(http.HandlerFunc(s.HandleParameter), "params"))
	mux.Handle("/params/all", s.chain(http.HandlerFunc(s.HandleParameters), "params_all"))
	mux.Handle("GET /whoami", s.chain(http.HandlerFunc(s.HandleWhoAmI), "whoami"))
	mux.Handle("POST /upload", s.chain(http.HandlerFunc(s.HandleUpload), "upload"))
	mux.Handle("/validate/{controller}/{method}", s.chain(http.HandlerFunc(s.HandleValidate), "validate"))
}

func (s *Server) chain(h http.Handler, endpoint string) http.Handler {
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
}

// newRequest builds the façade for r, writing the error response itself
// when the body cannot be captured.
func (s *Server) newRequest(w http.ResponseWriter, r *http.Request) (*request.Request, bool) {
	req, err := request.FromHTTP(r, s.transportOpts,
		request.WithFileManager(s.files),
		request.WithValidator(s.validator),
		request.WithLogger(s.logger))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return req, true
}

// fail maps err onto a status and writes the error envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", logger.String("path", r.URL.Path), logger.Error(err))
	}
	if werr := response.New(w).RespondError(status, code, err); werr != nil {
		s.logger.Warn(r.Context(), "write error response", logger.Error(werr))
	}
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := response.New(w).RespondStatus(status, payload); err != nil {
		s.logger.Error(r.Context(), "write response", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
