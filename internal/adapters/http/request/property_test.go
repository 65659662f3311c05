package request_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/okian/gvera/internal/adapters/http/request"
)

var verbs = []string{
	http.MethodGet, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

func TestOverlayShadowsEverySource(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		verb := rapid.SampledFrom(verbs).Draw(t, "verb")
		name := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "name")
		sent := rapid.StringMatching(`[a-z0-9]{0,12}`).Draw(t, "sent")
		overlay := rapid.String().Draw(t, "overlay")

		body := url.Values{name: {sent}}.Encode()
		hr := httptest.NewRequest(verb, "/?"+body, strings.NewReader(body))
		hr.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		r, err := request.FromHTTP(hr, nil)
		require.NoError(t, err)

		got, err := r.Parameter(name)
		require.NoError(t, err)
		assert.Equal(t, sent, got)

		r.SetParameter(name, overlay)
		got, err = r.Parameter(name)
		require.NoError(t, err)
		assert.Equal(t, overlay, got)
	})
}

func TestStreamRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		want := rapid.MapOf(
			rapid.StringMatching(`[a-zA-Z_][a-zA-Z0-9_]{0,10}`),
			rapid.String(),
		).Draw(t, "params")

		values := url.Values{}
		for k, v := range want {
			values.Set(k, v)
		}
		hr := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(values.Encode()))

		r, err := request.FromHTTP(hr, nil)
		require.NoError(t, err)

		got, err := r.ParametersFromStream()
		require.NoError(t, err)
		assert.Equal(t, len(want), len(got))
		for k, v := range want {
			assert.Equal(t, v, got[k])
		}
	})
}

var markupStart = regexp.MustCompile(`<[A-Za-z/!?]`)

func TestSanitizeNeverEmitsMarkup(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.OneOf(
			rapid.String(),
			rapid.StringMatching(`[<>a-z/!"' ]{0,32}`),
		).Draw(t, "input")
		out := request.Sanitize(s)

		assert.NotRegexp(t, markupStart, out)
		assert.NotContains(t, out, `"`)
		assert.NotContains(t, out, "'")
		assert.NotContains(t, out, "\x00")
	})
}
