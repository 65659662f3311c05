package request

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/gvera/internal/domain/types"
	"github.com/okian/gvera/pkg/logger"
	"github.com/okian/gvera/pkg/metrics"
)

// Well-known transport variables.
const (
	VarRemoteAddr        = "REMOTE_ADDR"
	VarAuthUser          = "AUTH_USER"
	VarAuthPassword      = "AUTH_PW"
	VarAuthorization     = "Authorization"
	VarHTTPAuthorization = "HTTP_AUTHORIZATION"
	VarRequestedWith     = "HTTP_X_REQUESTED_WITH"
)

// Default bounds used by NewTransport.
const (
	DefaultMaxBodyBytes       int64 = 1 << 20
	DefaultMaxMultipartMemory int64 = 32 << 20
)

// Transport is the per-request state the façade reads from. It is built
// once when the request enters the application and never shared.
type Transport struct {
	// ID correlates log lines; usually the X-Request-ID.
	ID      string
	Method  types.Method
	Query   url.Values
	Form    url.Values
	Cookies map[string]string
	Body    []byte
	Header  http.Header
	Files   map[string][]*multipart.FileHeader
	// Vars holds server variables: REMOTE_ADDR, AUTH_USER, AUTH_PW and
	// HTTP_<NAME> for every header, following the CGI convention.
	Vars map[string]string
}

// TransportOption tunes NewTransport.
type TransportOption func(*transportOptions)

type transportOptions struct {
	maxBody      int64
	maxMultipart int64
	vars         map[string]string
}

// WithMaxBodyBytes bounds raw and url-encoded bodies.
func WithMaxBodyBytes(n int64) TransportOption {
	return func(o *transportOptions) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

// WithMaxMultipartMemory bounds in-memory multipart parsing.
func WithMaxMultipartMemory(n int64) TransportOption {
	return func(o *transportOptions) {
		if n > 0 {
			o.maxMultipart = n
		}
	}
}

// WithVars adds server variables, e.g. an Authorization value forwarded by
// a fronting proxy. They win over variables derived from the request.
func WithVars(vars map[string]string) TransportOption {
	return func(o *transportOptions) {
		o.vars = vars
	}
}

// NewTransport captures r. POST bodies are parsed as forms; PUT, PATCH and
// DELETE bodies are read raw; other verbs only expose the query string.
func NewTransport(r *http.Request, opts ...TransportOption) (*Transport, error) {
	o := transportOptions{maxBody: DefaultMaxBodyBytes, maxMultipart: DefaultMaxMultipartMemory}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Transport{
		ID:      logger.RequestID(r.Context()),
		Method:  types.ParseMethod(r.Method),
		Query:   r.URL.Query(),
		Form:    url.Values{},
		Cookies: make(map[string]string),
		Header:  r.Header.Clone(),
		Files:   make(map[string][]*multipart.FileHeader),
		Vars:    make(map[string]string),
	}
	if t.Header == nil {
		t.Header = http.Header{}
	}

	for _, c := range r.Cookies() {
		t.Cookies[c.Name] = c.Value
	}

	t.Vars[VarRemoteAddr] = r.RemoteAddr
	if user, pass, ok := r.BasicAuth(); ok {
		t.Vars[VarAuthUser] = user
		t.Vars[VarAuthPassword] = pass
	}
	for name, values := range r.Header {
		t.Vars["HTTP_"+cgiName(name)] = strings.Join(values, ", ")
	}
	for k, v := range o.vars {
		t.Vars[k] = v
	}

	var err error
	switch {
	case t.Method == types.MethodPost:
		err = t.readForm(r, o)
	case t.Method.IsStream():
		t.Body, err = readBody(r, o.maxBody)
		metrics.RecordRequestBodyBytes(len(t.Body))
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Transport) readForm(r *http.Request, o transportOptions) error {
	ct := r.Header.Get("Content-Type")
	mediaType := ""
	if ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return fmt.Errorf("%w: content type: %w", ErrMalformedBody, err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/x-www-form-urlencoded", "":
		if r.Body != nil {
			r.Body = http.MaxBytesReader(nil, r.Body, o.maxBody)
		}
		if err := r.ParseForm(); err != nil {
			return formError(err)
		}
		t.Form = r.PostForm
	case "multipart/form-data":
		if err := r.ParseMultipartForm(o.maxMultipart); err != nil {
			return formError(err)
		}
		t.Form = url.Values(r.MultipartForm.Value)
		t.Files = r.MultipartForm.File
	default:
		// Non-form POST bodies (JSON and friends) stay available raw.
		body, err := readBody(r, o.maxBody)
		if err != nil {
			return err
		}
		t.Body = body
	}
	return nil
}

func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %w", ErrMalformedBody, err)
}

// cgiName turns X-Requested-With into X_REQUESTED_WITH.
func cgiName(header string) string {
	return strings.ToUpper(strings.ReplaceAll(header, "-", "_"))
}
