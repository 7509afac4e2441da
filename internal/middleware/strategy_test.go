package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom-api/internal/models"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
)

type fakeVerifier struct {
	tokens map[string]*models.Identity
	seen   string
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	f.seen = token
	if identity, ok := f.tokens[token]; ok {
		return identity, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func TestJWTStrategyReadsBearerHeader(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]*models.Identity{"good": withRole(models.RoleTeacher)}}
	strategy := NewJWTStrategy(verifier, "access_token")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	identity, err := strategy.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, identity.Role)
	assert.Equal(t, "good", verifier.seen)
}

func TestJWTStrategyFallsBackToCookie(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]*models.Identity{"cookie-token": withRole(models.RoleStudent)}}
	strategy := NewJWTStrategy(verifier, "access_token")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
	identity, err := strategy.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, identity.Role)
}

func TestJWTStrategyRejectsMalformedCredentials(t *testing.T) {
	strategy := NewJWTStrategy(&fakeVerifier{}, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := strategy.Resolve(context.Background(), req)
	assert.Equal(t, "missing credentials", appErrors.FromError(err).Message)

	req.Header.Set("Authorization", "Basic abc")
	_, err = strategy.Resolve(context.Background(), req)
	assert.Equal(t, "invalid authorization header", appErrors.FromError(err).Message)

	req.Header.Set("Authorization", "Bearer unknown")
	_, err = strategy.Resolve(context.Background(), req)
	assert.Error(t, err)
}

func TestGuardReportsStrategyReason(t *testing.T) {
	guard := NewStudentGuard(NewJWTStrategy(&fakeVerifier{}, ""))

	decision := guard.Authorize(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, StateRejected, decision.State)
	assert.Equal(t, "missing credentials", decision.Rejection.Reason)
}
