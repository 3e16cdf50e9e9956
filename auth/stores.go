package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account is the resolved subject of an accepted token. It is the only view
// of a user this package needs; the full record stays in models.
type Account struct {
	ID       uuid.UUID
	Username string
	Email    string
	IsAdmin  bool
}

// RevocationStore is a durable set of revoked token ids. Entries are never
// mutated; they may be pruned once older than the refresh lifetime, since an
// expired token is already rejected by the codec.
type RevocationStore interface {
	// Revoke records the token id. It is idempotent: revoking an already
	// revoked id is not an error. first reports whether this call inserted
	// the entry, which is what makes rotation single-use under races.
	Revoke(ctx context.Context, tokenID uuid.UUID, now time.Time) (first bool, err error)
	IsRevoked(ctx context.Context, tokenID uuid.UUID) (bool, error)
}

// WatermarkStore holds each account's tokens_valid_from cutoff. Tokens
// issued before it are void regardless of the revocation store.
type WatermarkStore interface {
	// Bump advances the cutoff to max(current, now); it never regresses,
	// so concurrent security events converge to the latest timestamp.
	Bump(ctx context.Context, accountID uuid.UUID, now time.Time) error
	// Get returns the cutoff, or the zero time when the account is absent.
	Get(ctx context.Context, accountID uuid.UUID) (time.Time, error)
}

// AccountSource resolves token subjects. A missing account is (nil, nil),
// not an error: the policy owns the unknown-subject rejection.
type AccountSource interface {
	FindByID(ctx context.Context, accountID uuid.UUID) (*Account, error)
}
