package request

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/gvera/pkg/metrics"
)

var bearerPattern = regexp.MustCompile(`Bearer\s(\S+)`)

// AuthorizationHeader looks for the Authorization value in, in order: the
// "Authorization" variable, the "HTTP_AUTHORIZATION" variable set by
// proxies, and finally the headers with their names title-cased. The first
// hit is returned trimmed.
func (r *Request) AuthorizationHeader() (string, bool) {
	if v, ok := r.transport.Vars[VarAuthorization]; ok {
		metrics.RecordAuthorizationSource(metrics.AuthSourceVar)
		return strings.TrimSpace(v), true
	}
	if v, ok := r.transport.Vars[VarHTTPAuthorization]; ok {
		metrics.RecordAuthorizationSource(metrics.AuthSourceProxy)
		return strings.TrimSpace(v), true
	}

	names := make([]string, 0, len(r.transport.Header))
	for name := range r.transport.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	title := cases.Title(language.Und)
	for _, name := range names {
		values := r.transport.Header[name]
		if len(values) == 0 {
			continue
		}
		if title.String(name) == "Authorization" {
			metrics.RecordAuthorizationSource(metrics.AuthSourceHeader)
			return strings.TrimSpace(values[0]), true
		}
	}

	metrics.RecordAuthorizationSource(metrics.AuthSourceNone)
	return "", false
}

// BearerToken extracts the token from an Authorization value of the form
// "Bearer <token>".
func (r *Request) BearerToken() (string, bool) {
	h, ok := r.AuthorizationHeader()
	if !ok || h == "" {
		return "", false
	}
	m := bearerPattern.FindStringSubmatch(h)
	if m == nil {
		return "", false
	}
	return m[1], true
}
