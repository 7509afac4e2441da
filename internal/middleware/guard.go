package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom-api/internal/models"
	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the authorized identity.
const ContextIdentityKey = "currentIdentity"

const defaultResolveTimeout = 3 * time.Second

// State is a guard's position in its per-request lifecycle.
type State string

const (
	StateUnauthenticated State = "UNAUTHENTICATED"
	StateResolving       State = "RESOLVING"
	StateAuthorized      State = "AUTHORIZED"
	StateRejected        State = "REJECTED"
)

// RejectionKind selects the HTTP status class of a rejection.
type RejectionKind string

const (
	RejectUnauthorized RejectionKind = "UNAUTHORIZED"
	RejectForbidden    RejectionKind = "FORBIDDEN"
)

// Rejection is the terminal outcome of a failed guard.
type Rejection struct {
	Kind   RejectionKind `json:"kind"`
	Reason string        `json:"reason"`
}

// Status maps the rejection to its HTTP status code.
func (r Rejection) Status() int {
	if r.Kind == RejectForbidden {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

// AppError converts the rejection into the API error envelope.
func (r Rejection) AppError() *appErrors.Error {
	if r.Kind == RejectForbidden {
		return appErrors.Clone(appErrors.ErrForbidden, r.Reason)
	}
	return appErrors.Clone(appErrors.ErrUnauthorized, r.Reason)
}

// Decision is the result of running a guard against one request.
type Decision struct {
	State     State
	Identity  *models.Identity
	Rejection *Rejection
}

// Strategy resolves the caller identity from request credentials. It may block.
type Strategy interface {
	Resolve(ctx context.Context, r *http.Request) (*models.Identity, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, r *http.Request) (*models.Identity, error)

// Resolve calls f.
func (f StrategyFunc) Resolve(ctx context.Context, r *http.Request) (*models.Identity, error) {
	return f(ctx, r)
}

// RolePredicate decides whether a resolved identity may pass.
type RolePredicate func(identity *models.Identity) bool

// RoleIn allows identities whose role is one of roles.
func RoleIn(roles ...models.UserRole) RolePredicate {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(identity *models.Identity) bool {
		_, ok := allowed[identity.Role]
		return ok
	}
}

type guardMetrics interface {
	RecordGuardDecision(guard, outcome string, resolve time.Duration)
}

// Guard authorizes requests with a strategy and a role predicate.
type Guard struct {
	Name             string
	Strategy         Strategy
	Allow            RolePredicate
	OnResolveFailure RejectionKind
	Timeout          time.Duration

	logger  *zap.Logger
	metrics guardMetrics
}

// GuardOption customises a guard.
type GuardOption func(*Guard)

// WithGuardLogger sets the logger used for rejections.
func WithGuardLogger(logger *zap.Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithGuardMetrics records every decision.
func WithGuardMetrics(metrics guardMetrics) GuardOption {
	return func(g *Guard) { g.metrics = metrics }
}

// WithResolveTimeout bounds identity resolution.
func WithResolveTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d > 0 {
			g.Timeout = d
		}
	}
}

// NewGuard builds a guard from explicit parts.
func NewGuard(name string, strategy Strategy, allow RolePredicate, onResolveFailure RejectionKind, opts ...GuardOption) *Guard {
	g := &Guard{
		Name:             name,
		Strategy:         strategy,
		Allow:            allow,
		OnResolveFailure: onResolveFailure,
		Timeout:          defaultResolveTimeout,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewAdminGuard admits ADMIN callers. Unlike the other guards it reports
// resolution failures as Forbidden.
func NewAdminGuard(strategy Strategy, opts ...GuardOption) *Guard {
	return NewGuard("admin", strategy, RoleIn(models.RoleAdmin), RejectForbidden, opts...)
}

// NewStudentGuard admits STUDENT callers and reports resolution failures as Unauthorized.
func NewStudentGuard(strategy Strategy, opts ...GuardOption) *Guard {
	return NewGuard("student", strategy, RoleIn(models.RoleStudent), RejectUnauthorized, opts...)
}

// NewRoleGuard admits any of roles and reports resolution failures as Unauthorized.
func NewRoleGuard(name string, strategy Strategy, roles []models.UserRole, opts ...GuardOption) *Guard {
	return NewGuard(name, strategy, RoleIn(roles...), RejectUnauthorized, opts...)
}

// Authorize runs the guard against r.
func (g *Guard) Authorize(ctx context.Context, r *http.Request) Decision {
	start := time.Now()
	decision := g.authorize(ctx, r)
	if g.metrics != nil {
		g.metrics.RecordGuardDecision(g.Name, outcome(decision), time.Since(start))
	}
	return decision
}

func (g *Guard) authorize(ctx context.Context, r *http.Request) Decision {
	if g.Strategy == nil {
		return g.reject(g.OnResolveFailure, "no identity strategy configured")
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}
	resolveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	identity, err := g.resolve(resolveCtx, r)
	if err != nil {
		return g.reject(g.OnResolveFailure, resolveReason(err))
	}
	if identity == nil {
		return g.reject(g.OnResolveFailure, "no identity resolved")
	}

	if g.Allow == nil || !g.Allow(identity) {
		return g.reject(RejectForbidden, "role "+string(identity.Role)+" is not permitted")
	}

	return Decision{State: StateAuthorized, Identity: identity.Clone()}
}

// resolve waits for the strategy or the deadline, whichever comes first.
func (g *Guard) resolve(ctx context.Context, r *http.Request) (*models.Identity, error) {
	type result struct {
		identity *models.Identity
		err      error
	}
	done := make(chan result, 1)
	go func() {
		identity, err := g.Strategy.Resolve(ctx, r)
		done <- result{identity: identity, err: err}
	}()

	select {
	case res := <-done:
		return res.identity, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *Guard) reject(kind RejectionKind, reason string) Decision {
	return Decision{State: StateRejected, Rejection: &Rejection{Kind: kind, Reason: reason}}
}

// Middleware aborts the chain on rejection and stores the identity otherwise.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := g.Authorize(c.Request.Context(), c.Request)
		if decision.State != StateAuthorized {
			g.logger.Info("guard rejected request",
				zap.String("guard", g.Name),
				zap.String("kind", string(decision.Rejection.Kind)),
				zap.String("reason", decision.Rejection.Reason),
				zap.String("path", c.FullPath()),
			)
			response.Abort(c, decision.Rejection.AppError())
			return
		}

		c.Set(ContextIdentityKey, decision.Identity)
		c.Next()
	}
}

// IdentityFromContext returns a copy of the identity a guard attached to the request.
func IdentityFromContext(c *gin.Context) (*models.Identity, bool) {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*models.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity.Clone(), true
}

func outcome(d Decision) string {
	if d.State == StateAuthorized {
		return "authorized"
	}
	if d.Rejection != nil && d.Rejection.Kind == RejectForbidden {
		return "forbidden"
	}
	return "unauthorized"
}

func resolveReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "identity resolution timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "identity could not be resolved"
}
