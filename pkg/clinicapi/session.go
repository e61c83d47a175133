// Package clinicapi is a Go client for the clinic REST API. A Client owns
// a Session that attaches the bearer token to every request and tears the
// session down on the first 401 seen anywhere.
package clinicapi

import (
	"net/http"
	"sync"
)

// Session holds the bearer credential for a process-wide login. The
// credential is established at login, cleared at logout or on the first
// authorization failure; the expiry callback fires at most once per
// established credential.
type Session struct {
	mu        sync.Mutex
	token     string
	onExpired func()
}

func NewSession() *Session { return &Session{} }

// OnExpired registers the callback invoked when the server rejects the
// credential. It is called without the session lock held.
func (s *Session) OnExpired(fn func()) {
	s.mu.Lock()
	s.onExpired = fn
	s.mu.Unlock()
}

// SetToken establishes a new credential, re-arming the expiry callback.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Token returns the current credential, empty when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Clear drops the credential without firing the expiry callback; use it
// for an explicit logout.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// expire clears the credential and fires the callback once. Later 401s
// with no credential established are ignored.
func (s *Session) expire() {
	s.mu.Lock()
	fn := s.onExpired
	had := s.token != ""
	s.token = ""
	s.mu.Unlock()
	if had && fn != nil {
		fn()
	}
}

// transport decorates a RoundTripper with bearer auth and 401 detection.
type transport struct {
	base    http.RoundTripper
	session *Session
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if tok := t.session.Token(); tok != "" {
		// Clone before mutating; RoundTrippers must not modify the
		// caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.session.expire()
	}
	return resp, nil
}
