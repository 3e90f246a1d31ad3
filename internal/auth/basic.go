package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/elpatron68/focustasks/internal/config"
)

type UserStore interface {
	HasUser(username string) bool
	CheckPassword(username, plain string) bool
}

// usernameRe limits usernames to characters that are safe inside slot keys.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)

type InMemoryUserStore struct {
	// username -> bcrypt hash
	hashes map[string][]byte
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{hashes: make(map[string][]byte)}
}

// FromConfig loads the configured users. When none are configured the
// fallback credentials are added instead.
func FromConfig(cfg *config.Config, fallbackUser, fallbackPass string) (*InMemoryUserStore, error) {
	s := NewInMemoryUserStore()
	for _, u := range cfg.Users {
		if u.Username == "" || u.PasswordHash == "" {
			continue
		}
		if err := s.AddUserHash(u.Username, []byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("invalid user %q in config: %w", u.Username, err)
		}
	}
	if len(s.hashes) == 0 {
		if err := s.AddUserPlain(fallbackUser, fallbackPass); err != nil {
			return nil, fmt.Errorf("fallback user: %w", err)
		}
	}
	return s, nil
}

func (s *InMemoryUserStore) HasUser(username string) bool {
	_, ok := s.hashes[username]
	return ok
}

func validUsername(username string) error {
	if username == "" {
		return errors.New("username empty")
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username %q contains unsupported characters", username)
	}
	return nil
}

func (s *InMemoryUserStore) AddUserPlain(username, password string) error {
	if err := validUsername(username); err != nil {
		return err
	}
	if password == "" {
		return errors.New("password empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.hashes[username] = hash
	return nil
}

func (s *InMemoryUserStore) AddUserHash(username string, bcryptHash []byte) error {
	if err := validUsername(username); err != nil {
		return err
	}
	if _, err := bcrypt.Cost(bcryptHash); err != nil {
		return fmt.Errorf("not a bcrypt hash: %w", err)
	}
	s.hashes[username] = bcryptHash
	return nil
}

func (s *InMemoryUserStore) CheckPassword(username, plain string) bool {
	hash, ok := s.hashes[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}

func BasicAuthMiddleware(store UserStore, realm string, next http.Handler) http.Handler {
	if realm == "" {
		realm = "Restricted"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !store.HasUser(username) || !store.CheckPassword(username, password) {
			unauthorized(w, realm)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), username)))
	})
}

func unauthorized(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", "Basic realm=\""+realm+"\"")
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

type contextKey string

const userKey contextKey = "auth.user"

func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userKey, username)
}

func UsernameFromRequest(r *http.Request) (string, bool) {
	s, ok := r.Context().Value(userKey).(string)
	return s, ok && s != ""
}
