package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/elpatron68/focustasks/internal/config"
)

func TestAddUserPlainAndCheck(t *testing.T) {
	s := NewInMemoryUserStore()
	if err := s.AddUserPlain("alice", "secret"); err != nil {
		t.Fatal(err)
	}
	if !s.CheckPassword("alice", "secret") {
		t.Fatalf("expected password to match")
	}
	if s.CheckPassword("alice", "wrong") || s.CheckPassword("bob", "secret") {
		t.Fatalf("unexpected match")
	}
	for _, bad := range []string{"", "../etc", "a b"} {
		if err := s.AddUserPlain(bad, "x"); err == nil {
			t.Fatalf("expected username %q to be rejected", bad)
		}
	}
}

func TestFromConfig(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Users = []config.UserConfig{{Username: "carol", PasswordHash: string(hash)}, {Username: "", PasswordHash: "x"}}
	s, err := FromConfig(cfg, "admin", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if !s.CheckPassword("carol", "pw") {
		t.Fatalf("configured user missing")
	}
	if s.HasUser("admin") {
		t.Fatalf("fallback user should not be added when users are configured")
	}

	s, err = FromConfig(config.Default(), "admin", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if !s.CheckPassword("admin", "admin") {
		t.Fatalf("fallback user missing")
	}

	cfg.Users = []config.UserConfig{{Username: "dave", PasswordHash: "plaintext"}}
	if _, err := FromConfig(cfg, "admin", "admin"); err == nil {
		t.Fatalf("expected non-bcrypt hash to be rejected")
	}
}

func TestBasicAuthMiddleware(t *testing.T) {
	s := NewInMemoryUserStore()
	if err := s.AddUserPlain("alice", "secret"); err != nil {
		t.Fatal(err)
	}
	var seen string
	h := BasicAuthMiddleware(s, "focustasks", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UsernameFromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized || rr.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("expected challenge, got %d", rr.Code)
	}

	req.SetBasicAuth("alice", "wrong")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rr.Code)
	}

	req.SetBasicAuth("alice", "secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || seen != "alice" {
		t.Fatalf("expected pass-through for alice, got %d %q", rr.Code, seen)
	}
}
