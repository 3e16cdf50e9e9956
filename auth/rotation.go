package auth

import (
	"context"
	"fmt"
	"time"
)

// Rotator exchanges a valid refresh token for a brand-new pair while
// invalidating the presented one.
type Rotator struct {
	Codec       *Codec
	Policy      *Policy
	Issuer      *Issuer
	Revocations RevocationStore
}

// Rotate validates the presented refresh token, revokes its id and issues a
// fresh pair. The revoke happens before the issue: under concurrent replays
// of the same token only the caller that wins the insert gets a new pair,
// the loser sees ErrRevoked. A crash between the two steps costs the client
// a re-login and nothing else.
func (r *Rotator) Rotate(ctx context.Context, artifact string, now time.Time) (*Pair, *Account, error) {
	claims, err := r.Codec.Verify(artifact, now)
	if err != nil {
		return nil, nil, err
	}
	if claims.Class != ClassRefresh {
		return nil, nil, ErrWrongClass
	}

	account, err := r.Policy.Evaluate(ctx, claims, now)
	if err != nil {
		return nil, nil, err
	}

	first, err := r.Revocations.Revoke(ctx, claims.TokenID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !first {
		return nil, nil, ErrRevoked
	}

	pair, err := r.Issuer.IssuePair(account.ID, now)
	if err != nil {
		return nil, nil, err
	}
	return pair, account, nil
}
