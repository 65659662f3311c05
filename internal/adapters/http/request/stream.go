package request

import (
	"context"
	"fmt"
	"net/url"

	"github.com/okian/gvera/pkg/logger"
	"github.com/okian/gvera/pkg/metrics"
)

// ParameterFromStream returns the value of name in the url-encoded body.
// Stream values are returned as sent, without sanitizing.
func (r *Request) ParameterFromStream(name string) (string, error) {
	params, err := r.parseStream()
	if err != nil {
		return "", err
	}
	v, ok := params[name]
	if !ok {
		metrics.RecordParameterNotFound(metrics.SourceStream)
		r.logger.Debug(context.Background(), "stream parameter not found", logger.String("name", name))
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	metrics.RecordParameterLookup(metrics.SourceStream)
	return v, nil
}

// ParametersFromStream returns the whole url-encoded body. For a repeated
// key the last value wins. The map is a copy.
func (r *Request) ParametersFromStream() (map[string]string, error) {
	params, err := r.parseStream()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out, nil
}

// ParametersFromRequest merges query string, form body and cookies, in that
// order of precedence (cookies win).
func (r *Request) ParametersFromRequest() map[string]string {
	out := make(map[string]string)
	for _, src := range []url.Values{r.transport.Query, r.transport.Form} {
		for k, vs := range src {
			if len(vs) > 0 {
				out[k] = vs[len(vs)-1]
			}
		}
	}
	for k, v := range r.transport.Cookies {
		out[k] = v
	}
	return out
}

// parseStream parses the raw body once per request.
func (r *Request) parseStream() (map[string]string, error) {
	r.streamOnce.Do(func() {
		values, err := url.ParseQuery(string(r.transport.Body))
		if err != nil {
			r.streamErr = fmt.Errorf("%w: %w", ErrMalformedBody, err)
			return
		}
		r.stream = make(map[string]string, len(values))
		for k, vs := range values {
			if len(vs) > 0 {
				r.stream[k] = vs[len(vs)-1]
			}
		}
	})
	return r.stream, r.streamErr
}
