package auth

import "github.com/google/uuid"

// Capability gates run strictly after Policy.Evaluate has accepted a token.
// They consume the resolved account, never the raw token.

// SameSubject rejects when the authenticated account is not the one named
// in the request path. The rejection is the same whether or not the target
// account exists.
func SameSubject(authenticated, requested uuid.UUID) error {
	if authenticated != requested {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin rejects accounts without the administrator flag.
func RequireAdmin(account *Account) error {
	if account == nil || !account.IsAdmin {
		return ErrForbidden
	}
	return nil
}
