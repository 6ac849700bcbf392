package service

import (
	"time"

	"github.com/fairyhunter13/cart-offer-service/internal/metrics"
	"github.com/fairyhunter13/cart-offer-service/internal/model"
	"github.com/fairyhunter13/cart-offer-service/internal/ratelimit"
)

// PermissionTable maps each role to the operations it may perform.
// Anything absent from the table is denied.
type PermissionTable map[model.Role]map[model.Operation]bool

// DefaultPermissions is the production role table.
func DefaultPermissions() PermissionTable {
	return PermissionTable{
		model.RoleAdmin: {
			model.OperationAddOffer:   true,
			model.OperationListOffers: true,
		},
		model.RoleCustomer: {
			model.OperationApplyOffer: true,
		},
		model.RoleGuest: {},
	}
}

// Allows reports whether role may perform op.
func (p PermissionTable) Allows(role model.Role, op model.Operation) bool {
	return p[role][op]
}

// RateLimiter admits or rejects a request for a client key.
type RateLimiter interface {
	Allow(key string) ratelimit.Decision
}

// RateLimitedError carries the retry hint of a rejected request.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return ErrRateLimited.Error()
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

// AccessGate authenticates the role, checks the permission table and, for
// throttled operations, the caller's rate budget. It holds no per-request state.
type AccessGate struct {
	permissions PermissionTable
	limiter     RateLimiter
	throttled   map[model.Operation]bool
}

// NewAccessGate creates an AccessGate. Only apply-offer is rate limited.
func NewAccessGate(permissions PermissionTable, limiter RateLimiter) *AccessGate {
	return &AccessGate{
		permissions: permissions,
		limiter:     limiter,
		throttled:   map[model.Operation]bool{model.OperationApplyOffer: true},
	}
}

// CheckAdd guards add-offer.
func (g *AccessGate) CheckAdd(role model.Role) error {
	return g.Check(role, model.OperationAddOffer, "")
}

// CheckApply guards apply-offer, consuming one unit of clientID's budget.
func (g *AccessGate) CheckApply(role model.Role, clientID string) error {
	return g.Check(role, model.OperationApplyOffer, clientID)
}

// CheckList guards list-offers.
func (g *AccessGate) CheckList(role model.Role) error {
	return g.Check(role, model.OperationListOffers, "")
}

// Check runs authentication, authorization and rate limiting in that order.
// Rejected callers do not consume rate budget.
func (g *AccessGate) Check(role model.Role, op model.Operation, clientID string) error {
	if !role.Authenticated() {
		metrics.AccessDenied.WithLabelValues(string(op), "unauthenticated").Inc()
		return ErrAuthenticationMissing
	}
	if !g.permissions.Allows(role, op) {
		metrics.AccessDenied.WithLabelValues(string(op), "forbidden").Inc()
		return ErrAuthorizationDenied
	}
	if g.throttled[op] && g.limiter != nil {
		if d := g.limiter.Allow(clientID); !d.Allowed {
			metrics.AccessDenied.WithLabelValues(string(op), "rate_limited").Inc()
			return &RateLimitedError{RetryAfter: d.RetryAfter}
		}
	}
	return nil
}
