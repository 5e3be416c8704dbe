package chat

import (
	"context"
	"testing"
)

func TestStaticCredentialSource(t *testing.T) {
	s := NewStaticCredentialSource("")

	tok, err := s.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "" {
		t.Fatalf("token = %q, want empty pre-login", tok)
	}

	s.SetToken("after-login")
	tok, err = s.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "after-login" {
		t.Fatalf("token = %q, want after-login", tok)
	}
}

// A token swapped between connections is picked up on the next connect,
// not mid-connection.
func TestCredentialReReadOnReconnect(t *testing.T) {
	creds := NewStaticCredentialSource("token-old")
	d := &fakeDialer{}
	c := New(testLogger(), testConfig(), d.dial, creds, nil)
	defer c.Destroy()

	c.Initialize()
	waitFor(t, "connect", func() bool { return c.Status().IsConnected })

	creds.SetToken("token-new")
	d.transport().Close()
	waitFor(t, "reconnect", func() bool { return d.dialCount() == 2 && c.Status().IsConnected })

	auth := d.transport().framesFor(EventAuthenticate)
	if len(auth) != 1 {
		t.Fatalf("authenticate frames = %d, want 1", len(auth))
	}
	if got := string(auth[0].Data); got != `"token-new"` {
		t.Fatalf("authenticate payload = %s, want %q", got, "token-new")
	}
}

func TestNewPostgresCredentialSourceValidation(t *testing.T) {
	if _, err := NewPostgresCredentialSource(nil, "user-1"); err == nil {
		t.Fatal("nil pool accepted")
	}
}
