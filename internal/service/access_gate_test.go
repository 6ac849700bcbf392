package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cart-offer-service/internal/model"
	"github.com/fairyhunter13/cart-offer-service/internal/ratelimit"
)

// mockLimiter records keys and answers from allowFn.
type mockLimiter struct {
	keys    []string
	allowFn func(key string) ratelimit.Decision
}

func (m *mockLimiter) Allow(key string) ratelimit.Decision {
	m.keys = append(m.keys, key)
	if m.allowFn != nil {
		return m.allowFn(key)
	}
	return ratelimit.Decision{Allowed: true}
}

func TestAccessGate_PermissionMatrix(t *testing.T) {
	gate := NewAccessGate(DefaultPermissions(), &mockLimiter{})

	testCases := []struct {
		role     model.Role
		op       model.Operation
		expected error
	}{
		{model.RoleAdmin, model.OperationAddOffer, nil},
		{model.RoleAdmin, model.OperationListOffers, nil},
		{model.RoleAdmin, model.OperationApplyOffer, ErrAuthorizationDenied},
		{model.RoleCustomer, model.OperationApplyOffer, nil},
		{model.RoleCustomer, model.OperationAddOffer, ErrAuthorizationDenied},
		{model.RoleCustomer, model.OperationListOffers, ErrAuthorizationDenied},
		{model.RoleGuest, model.OperationAddOffer, ErrAuthorizationDenied},
		{model.RoleGuest, model.OperationApplyOffer, ErrAuthorizationDenied},
		{model.RoleUnauthorized, model.OperationAddOffer, ErrAuthenticationMissing},
		{model.RoleUnauthorized, model.OperationApplyOffer, ErrAuthenticationMissing},
		{model.Role(""), model.OperationAddOffer, ErrAuthenticationMissing},
		{model.Role("root"), model.OperationApplyOffer, ErrAuthenticationMissing},
	}

	for _, tc := range testCases {
		t.Run(string(tc.role)+"_"+string(tc.op), func(t *testing.T) {
			err := gate.Check(tc.role, tc.op, "client")
			if tc.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tc.expected), "got %v, want %v", err, tc.expected)
			}
		})
	}
}

func TestAccessGate_CustomTable(t *testing.T) {
	table := DefaultPermissions()
	require.ErrorIs(t, NewAccessGate(table, nil).CheckList(model.RoleCustomer), ErrAuthorizationDenied)

	table[model.RoleCustomer][model.OperationListOffers] = true
	gate := NewAccessGate(table, nil)

	assert.NoError(t, gate.CheckList(model.RoleCustomer))
	assert.NoError(t, gate.CheckApply(model.RoleCustomer, "c"), "nil limiter disables throttling")
}

func TestAccessGate_RateLimitsApplyOnly(t *testing.T) {
	limiter := &mockLimiter{allowFn: func(key string) ratelimit.Decision {
		return ratelimit.Decision{Allowed: false, RetryAfter: 300 * time.Millisecond}
	}}
	gate := NewAccessGate(DefaultPermissions(), limiter)

	assert.NoError(t, gate.CheckAdd(model.RoleAdmin), "add-offer is not throttled")
	assert.NoError(t, gate.CheckList(model.RoleAdmin), "list-offers is not throttled")

	err := gate.CheckApply(model.RoleCustomer, "client-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))

	var rl *RateLimitedError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 300*time.Millisecond, rl.RetryAfter)
	assert.Equal(t, []string{"client-1"}, limiter.keys)
}

func TestAccessGate_RejectedCallersDoNotConsumeBudget(t *testing.T) {
	limiter := &mockLimiter{}
	gate := NewAccessGate(DefaultPermissions(), limiter)

	_ = gate.CheckApply(model.RoleGuest, "client-1")
	_ = gate.CheckApply(model.RoleUnauthorized, "client-1")

	assert.Empty(t, limiter.keys)
}

func TestAccessGate_BurstEventuallyRateLimited(t *testing.T) {
	gate := NewAccessGate(DefaultPermissions(), ratelimit.New(10, time.Second))

	limited := 0
	for i := 0; i < 20; i++ {
		if err := gate.CheckApply(model.RoleCustomer, "burst"); errors.Is(err, ErrRateLimited) {
			limited++
		}
	}
	assert.Greater(t, limited, 0, "a burst beyond the budget must see at least one rejection")
}
