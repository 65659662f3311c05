package api

import (
	"net/http"

	"github.com/okian/gvera/internal/domain/auth"
)

type whoAmIResponse struct {
	IP        string          `json:"ip"`
	Username  string          `json:"username,omitempty"`
	Bearer    bool            `json:"bearer"`
	Principal *auth.Principal `json:"principal"`
}

// HandleWhoAmI handles GET /whoami. It reports what the request carries and
// who it authenticates as; 401 when nothing matches.
func (s *Server) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		s.fail(w, r, ErrNotAvailable)
		return
	}
	req, ok := s.newRequest(w, r)
	if !ok {
		return
	}

	creds := req.AuthDetails()
	token, hasToken := req.BearerToken()

	p, err := s.auth.Authenticate(r.Context(), creds, token)
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Basic realm="gvera"`)
		s.fail(w, r, err)
		return
	}

	out := whoAmIResponse{IP: req.IP(), Bearer: hasToken, Principal: &p}
	if creds != nil {
		out.Username = creds.Username
	}
	s.respond(w, r, http.StatusOK, out)
}
