package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPolicyAcceptsFreshToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	now := time.Now().UTC()

	_, claims, err := env.codec.Issue(env.subject, ClassAccess, now)
	require.NoError(t, err)

	account, err := env.policy.Evaluate(context.Background(), claims, now)
	require.NoError(t, err)
	require.Equal(t, env.subject, account.ID)
	require.Equal(t, "taro", account.Username)
}

func TestPolicyWatermarkStaleness(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Second)

	_, before, err := env.codec.Issue(env.subject, ClassRefresh, t0.Add(-time.Second))
	require.NoError(t, err)
	_, at, err := env.codec.Issue(env.subject, ClassRefresh, t0)
	require.NoError(t, err)
	_, after, err := env.codec.Issue(env.subject, ClassRefresh, t0.Add(time.Second))
	require.NoError(t, err)

	// Password change at t0.
	require.NoError(t, env.watermarks.Bump(ctx, env.subject, t0))

	eval := t0.Add(time.Second)
	_, err = env.policy.Evaluate(ctx, before, eval)
	require.ErrorIs(t, err, ErrStale)

	// Tokens issued at or after the bump stay valid.
	_, err = env.policy.Evaluate(ctx, at, eval)
	require.NoError(t, err)
	_, err = env.policy.Evaluate(ctx, after, eval)
	require.NoError(t, err)
}

func TestPolicyWatermarkNeverRegresses(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	t0 := time.Now().UTC()

	// Security events arriving out of order converge on the latest cutoff.
	require.NoError(t, env.watermarks.Bump(ctx, env.subject, t0.Add(time.Minute)))
	require.NoError(t, env.watermarks.Bump(ctx, env.subject, t0))

	mark, err := env.watermarks.Get(ctx, env.subject)
	require.NoError(t, err)
	require.True(t, mark.Equal(t0.Add(time.Minute)))
}

func TestPolicyRejectsRevokedToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	now := time.Now().UTC()

	_, claims, err := env.codec.Issue(env.subject, ClassRefresh, now)
	require.NoError(t, err)

	first, err := env.revocations.Revoke(ctx, claims.TokenID, now)
	require.NoError(t, err)
	require.True(t, first)

	_, err = env.policy.Evaluate(ctx, claims, now)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestRevokeIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	now := time.Now().UTC()
	jti := uuid.New()

	first, err := env.revocations.Revoke(ctx, jti, now)
	require.NoError(t, err)
	require.True(t, first)

	again, err := env.revocations.Revoke(ctx, jti, now.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, again)

	revoked, err := env.revocations.IsRevoked(ctx, jti)
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestPolicyRejectsUnknownSubject(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	now := time.Now().UTC()

	_, claims, err := env.codec.Issue(env.subject, ClassAccess, now)
	require.NoError(t, err)

	// Account deletion: outstanding tokens must start failing.
	env.accounts.remove(env.subject)

	_, err = env.policy.Evaluate(ctx, claims, now)
	require.ErrorIs(t, err, ErrUnknownSubject)
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, uuid.UUID, time.Time) (bool, error) {
	return false, errors.New("connection reset")
}

func (failingRevocations) IsRevoked(context.Context, uuid.UUID) (bool, error) {
	return false, errors.New("connection reset")
}

func TestPolicyStoreFailureIsNotASecurityRejection(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.policy.Revocations = failingRevocations{}
	now := time.Now().UTC()

	_, claims, err := env.codec.Issue(env.subject, ClassAccess, now)
	require.NoError(t, err)

	_, err = env.policy.Evaluate(context.Background(), claims, now)
	require.Error(t, err)
	for _, kind := range []error{ErrMalformed, ErrExpired, ErrRevoked, ErrStale, ErrUnknownSubject, ErrWrongClass, ErrForbidden} {
		require.False(t, errors.Is(err, kind))
	}
}
