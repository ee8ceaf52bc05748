package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "binwatch"

	// DefaultTTL is used when no session lifetime is configured.
	DefaultTTL = 30 * 24 * time.Hour
)

// ErrRevoked is returned for tokens that were logged out.
var ErrRevoked = errors.New("session revoked")

// SessionService issues and verifies signed session tokens. Tokens are HS256
// JWTs keyed from the login password, so changing the password ends every
// session. Logged-out token IDs are remembered until they expire.
type SessionService struct {
	key []byte
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewSessionService(password string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	sum := sha256.Sum256([]byte("binwatch session key\x00" + password))
	return &SessionService{
		key:     sum[:],
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// TTL returns how long issued tokens stay valid.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a new session token.
func (s *SessionService) Issue() (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expires, nil
}

// Verify checks the token signature, issuer and expiry, and that it was not revoked.
func (s *SessionService) Verify(token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[claims.ID]; ok {
		return ErrRevoked
	}
	return nil
}

// Revoke invalidates a token before its expiry. Invalid tokens are ignored.
func (s *SessionService) Revoke(token string) {
	claims, err := s.parse(token)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time
}

func (s *SessionService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	if claims.ID == "" {
		return nil, errors.New("invalid session: missing id")
	}
	return claims, nil
}
