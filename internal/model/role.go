package model

import "strings"

// Role is the caller role carried in the user_role header.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCustomer     Role = "customer"
	RoleGuest        Role = "guest"
	RoleUnauthorized Role = "unauthorized"
)

// ParseRole maps a header value to a role. ok is false for empty or
// unrecognized values.
func ParseRole(raw string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleAdmin, RoleCustomer, RoleGuest, RoleUnauthorized:
		return r, true
	default:
		return "", false
	}
}

// Authenticated reports whether the role identifies an authenticated caller.
func (r Role) Authenticated() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleGuest:
		return true
	default:
		return false
	}
}

// Operation is a protected engine entry point.
type Operation string

const (
	OperationAddOffer   Operation = "add_offer"
	OperationApplyOffer Operation = "apply_offer"
	OperationListOffers Operation = "list_offers"
)
