package chat

import (
	"context"
	"strings"
	"sync"
)

// CredentialSource returns the persisted bearer token used for the
// authentication handshake. The token is re-read on every (re)connect and
// never cached by the client. An empty token means the user is in a
// pre-login state; the client then connects anonymously, which is not an
// error.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticCredentialSource holds the token in memory. Login/logout flows
// update it with SetToken; the next (re)connect picks the new value up.
type StaticCredentialSource struct {
	mu    sync.Mutex
	token string
}

// NewStaticCredentialSource constructs a source with an initial token.
func NewStaticCredentialSource(token string) *StaticCredentialSource {
	return &StaticCredentialSource{token: strings.TrimSpace(token)}
}

// Token returns the current token.
func (s *StaticCredentialSource) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// SetToken replaces the stored token. Empty clears it (logout).
func (s *StaticCredentialSource) SetToken(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}
