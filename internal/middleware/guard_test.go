package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
)

func identityStrategy(identity *models.Identity, err error) Strategy {
	return StrategyFunc(func(ctx context.Context, r *http.Request) (*models.Identity, error) {
		return identity, err
	})
}

func withRole(role models.UserRole) *models.Identity {
	return &models.Identity{SubjectID: "u-1", Role: role, Claims: map[string]any{"role": string(role)}}
}

type recordedDecision struct {
	guard   string
	outcome string
}

type fakeGuardMetrics struct {
	mu        sync.Mutex
	decisions []recordedDecision
}

func (m *fakeGuardMetrics) RecordGuardDecision(guard, outcome string, resolve time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, recordedDecision{guard: guard, outcome: outcome})
}

func TestGuardResolutionFailureAsymmetry(t *testing.T) {
	failing := identityStrategy(nil, errors.New("no credentials"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	admin := NewAdminGuard(failing).Authorize(context.Background(), req)
	require.Equal(t, StateRejected, admin.State)
	assert.Equal(t, RejectForbidden, admin.Rejection.Kind)
	assert.Equal(t, http.StatusForbidden, admin.Rejection.Status())

	student := NewStudentGuard(failing).Authorize(context.Background(), req)
	require.Equal(t, StateRejected, student.State)
	assert.Equal(t, RejectUnauthorized, student.Rejection.Kind)
	assert.Equal(t, http.StatusUnauthorized, student.Rejection.Status())

	nilIdentity := NewStudentGuard(identityStrategy(nil, nil)).Authorize(context.Background(), req)
	assert.Equal(t, RejectUnauthorized, nilIdentity.Rejection.Kind)
}

func TestGuardRolePredicate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	teacher := NewAdminGuard(identityStrategy(withRole(models.RoleTeacher), nil)).Authorize(context.Background(), req)
	require.Equal(t, StateRejected, teacher.State)
	assert.Equal(t, RejectForbidden, teacher.Rejection.Kind)

	admin := NewAdminGuard(identityStrategy(withRole(models.RoleAdmin), nil)).Authorize(context.Background(), req)
	require.Equal(t, StateAuthorized, admin.State)
	assert.Equal(t, models.RoleAdmin, admin.Identity.Role)
	assert.Nil(t, admin.Rejection)

	adminAsStudent := NewStudentGuard(identityStrategy(withRole(models.RoleAdmin), nil)).Authorize(context.Background(), req)
	assert.Equal(t, RejectForbidden, adminAsStudent.Rejection.Kind)

	staff := NewRoleGuard("staff", identityStrategy(withRole(models.RoleTeacher), nil), []models.UserRole{models.RoleTeacher, models.RoleAdmin})
	assert.Equal(t, StateAuthorized, staff.Authorize(context.Background(), req).State)
}

func TestGuardResolveTimeout(t *testing.T) {
	slow := StrategyFunc(func(ctx context.Context, r *http.Request) (*models.Identity, error) {
		time.Sleep(200 * time.Millisecond)
		return withRole(models.RoleStudent), nil
	})
	guard := NewStudentGuard(slow, WithResolveTimeout(20*time.Millisecond))

	start := time.Now()
	decision := guard.Authorize(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Less(t, time.Since(start), 150*time.Millisecond)
	require.Equal(t, StateRejected, decision.State)
	assert.Equal(t, RejectUnauthorized, decision.Rejection.Kind)
	assert.Equal(t, "identity resolution timed out", decision.Rejection.Reason)
}

func TestGuardIdentityIsNotSharedWithStrategy(t *testing.T) {
	source := withRole(models.RoleAdmin)
	decision := NewAdminGuard(identityStrategy(source, nil)).Authorize(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, StateAuthorized, decision.State)

	decision.Identity.Claims["role"] = "STUDENT"
	assert.Equal(t, "ADMIN", source.Claims["role"])
}

func TestGuardMiddlewareShortCircuits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := &fakeGuardMetrics{}
	guard := NewAdminGuard(identityStrategy(withRole(models.RoleTeacher), nil), WithGuardMetrics(metrics))

	reached := false
	router := gin.New()
	router.GET("/admin", guard.Middleware(), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "FORBIDDEN", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "TEACHER")
	assert.Equal(t, []recordedDecision{{guard: "admin", outcome: "forbidden"}}, metrics.decisions)
}

func TestGuardMiddlewareAttachesReadOnlyIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	guard := NewStudentGuard(identityStrategy(withRole(models.RoleStudent), nil))

	router := gin.New()
	router.GET("/me", guard.Middleware(), func(c *gin.Context) {
		first, ok := IdentityFromContext(c)
		require.True(t, ok)
		first.Role = models.RoleAdmin
		second, _ := IdentityFromContext(c)
		c.String(http.StatusOK, string(second.Role))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "STUDENT", strings.TrimSpace(rec.Body.String()))
}

func TestIdentityFromContextMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := IdentityFromContext(c)
	assert.False(t, ok)
}
