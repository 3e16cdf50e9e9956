package auth

import (
	"context"
	"fmt"
	"time"
)

// Policy decides whether verified claims are still good: not predating the
// account's watermark, not revoked, and belonging to an existing account.
// Store failures surface as wrapped errors, never as a security rejection.
type Policy struct {
	Revocations RevocationStore
	Watermarks  WatermarkStore
	Accounts    AccountSource
}

// Evaluate runs the checks cheapest-first: the watermark catches the common
// password-change case before the revocation lookup, and the full account
// fetch comes last. On success the resolved account is returned.
func (p *Policy) Evaluate(ctx context.Context, claims Claims, now time.Time) (*Account, error) {
	watermark, err := p.Watermarks.Get(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("watermark lookup: %w", err)
	}
	// iat carries second precision, the watermark sub-second.
	if claims.IssuedAt.Before(watermark.Truncate(time.Second)) {
		return nil, ErrStale
	}

	revoked, err := p.Revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}

	account, err := p.Accounts.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		return nil, ErrUnknownSubject
	}
	return account, nil
}
