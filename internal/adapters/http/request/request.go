// Package request wraps an inbound HTTP request behind one verb-aware façade:
// parameter lookup, uploaded files, basic-auth and bearer credentials, and
// validation against rules keyed by the calling controller.
//
// A Request is built per inbound call from a Transport and must not be
// shared between goroutines.
package request

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/okian/gvera/internal/adapters/storage/filemanager"
	"github.com/okian/gvera/internal/domain/types"
	"github.com/okian/gvera/pkg/logger"
	"github.com/okian/gvera/pkg/metrics"
)

// FileManager turns the uploaded-file structure into files and persists them.
type FileManager interface {
	BuildFilesFromSource(src map[string][]*multipart.FileHeader, renameTo string) (*filemanager.Collection, error)
	SaveToFileSystem(ctx context.Context, directory string, f *filemanager.File) (bool, error)
}

// Validator checks request inputs for a controller method.
type Validator interface {
	Validate(ctx context.Context, controller, method string, fields map[string]string, headers http.Header) (bool, error)
}

// Request is the request façade.
type Request struct {
	transport *Transport
	method    types.Method
	overlay   map[string]string

	files     FileManager
	validator Validator
	logger    logger.Logger

	streamOnce sync.Once
	stream     map[string]string
	streamErr  error
}

// Option applies a configuration option to the Request.
type Option func(*Request)

// WithFileManager injects the file collaborator.
func WithFileManager(fm FileManager) Option {
	return func(r *Request) {
		r.files = fm
	}
}

// WithValidator injects the validation collaborator.
func WithValidator(v Validator) Option {
	return func(r *Request) {
		r.validator = v
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Request) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a façade over t. The verb used for dispatch is captured here
// and does not follow later changes to t.
func New(t *Transport, opts ...Option) *Request {
	if t == nil {
		panic("request: nil transport")
	}
	r := &Request{
		transport: t,
		method:    t.Method,
		overlay:   make(map[string]string),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if t.ID != "" {
		r.logger = r.logger.With(logger.String("request_id", t.ID))
	}
	return r
}

// FromHTTP builds the Transport for hr and wraps it.
func FromHTTP(hr *http.Request, topts []TransportOption, opts ...Option) (*Request, error) {
	t, err := NewTransport(hr, topts...)
	if err != nil {
		return nil, err
	}
	return New(t, opts...), nil
}

// Parameter returns the overlay value for name if one was set, otherwise the
// value from the source matching the verb: query string for GET and
// OPTIONS, form body for POST, url-encoded stream for PUT, PATCH and DELETE.
//
// A name missing from the query string or form yields "" and no error; a
// name missing from the stream yields ErrNotFound.
func (r *Request) Parameter(name string) (string, error) {
	if v, ok := r.overlay[name]; ok {
		metrics.RecordParameterLookup(metrics.SourceOverlay)
		return v, nil
	}

	switch r.method {
	case types.MethodGet, types.MethodOptions:
		v, _ := r.Get(name)
		return v, nil
	case types.MethodPost:
		v, _ := r.Post(name)
		return v, nil
	case types.MethodPut, types.MethodPatch, types.MethodDelete:
		return r.ParameterFromStream(name)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMethod, r.method)
	}
}

// Get returns the sanitized query-string value for name.
func (r *Request) Get(name string) (string, bool) {
	return r.lookup(r.transport.Query, name, metrics.SourceQuery)
}

// Post returns the sanitized form value for name.
func (r *Request) Post(name string) (string, bool) {
	return r.lookup(r.transport.Form, name, metrics.SourceForm)
}

func (r *Request) lookup(values url.Values, name, source string) (string, bool) {
	vs, ok := values[name]
	if !ok || len(vs) == 0 {
		metrics.RecordParameterNotFound(source)
		return "", false
	}
	metrics.RecordParameterLookup(source)
	return Sanitize(vs[len(vs)-1]), true
}

// SetParameter shadows every other source for name from now on.
func (r *Request) SetParameter(name, value string) {
	r.overlay[name] = value
}

// Method returns the verb captured at construction.
func (r *Request) Method() types.Method { return r.method }

// IsGet reports whether the request is a GET.
func (r *Request) IsGet() bool { return r.method == types.MethodGet }

// IsPost reports whether the request is a POST.
func (r *Request) IsPost() bool { return r.method == types.MethodPost }

// IsPut reports whether the request is a PUT.
func (r *Request) IsPut() bool { return r.method == types.MethodPut }

// IsPatch reports whether the request is a PATCH.
func (r *Request) IsPatch() bool { return r.method == types.MethodPatch }

// IsDelete reports whether the request is a DELETE.
func (r *Request) IsDelete() bool { return r.method == types.MethodDelete }

// IsOptions reports whether the request is an OPTIONS.
func (r *Request) IsOptions() bool { return r.method == types.MethodOptions }

// IsAjax reports whether X-Requested-With is "XMLHttpRequest", in any case.
func (r *Request) IsAjax() bool {
	v, ok := r.transport.Vars[VarRequestedWith]
	if !ok {
		v = r.transport.Header.Get("X-Requested-With")
	}
	return v != "" && strings.EqualFold(v, "xmlhttprequest")
}

// IP returns the remote address as the transport reported it.
func (r *Request) IP() string {
	return r.transport.Vars[VarRemoteAddr]
}

// AuthDetails returns the basic-auth credentials, or nil unless both the
// username and the password are present.
func (r *Request) AuthDetails() *types.Credentials {
	user, okUser := r.transport.Vars[VarAuthUser]
	pass, okPass := r.transport.Vars[VarAuthPassword]
	if !okUser || !okPass {
		return nil
	}
	return &types.Credentials{Username: user, Password: pass}
}
