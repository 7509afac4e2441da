package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/noah-isme/sma-classroom-api/internal/models"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
)

type tokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// JWTStrategy resolves identities from bearer tokens sent in the
// Authorization header or, failing that, in a cookie.
type JWTStrategy struct {
	verifier   tokenVerifier
	cookieName string
}

// NewJWTStrategy constructs a JWTStrategy. An empty cookieName disables the cookie fallback.
func NewJWTStrategy(verifier tokenVerifier, cookieName string) *JWTStrategy {
	return &JWTStrategy{verifier: verifier, cookieName: cookieName}
}

// Resolve extracts and verifies the caller's token.
func (s *JWTStrategy) Resolve(ctx context.Context, r *http.Request) (*models.Identity, error) {
	token, err := s.extract(r)
	if err != nil {
		return nil, err
	}
	return s.verifier.Verify(ctx, token)
}

func (s *JWTStrategy) extract(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if s.cookieName != "" {
		if cookie, err := r.Cookie(s.cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrUnauthorized, "missing credentials")
}
