package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssuePairSharesSubjectNotTokenID(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	now := time.Now().UTC()

	pair, err := env.issuer.IssuePair(env.subject, now)
	require.NoError(t, err)

	require.Equal(t, env.subject, pair.AccessClaims.Subject)
	require.Equal(t, env.subject, pair.RefreshClaims.Subject)
	require.Equal(t, ClassAccess, pair.AccessClaims.Class)
	require.Equal(t, ClassRefresh, pair.RefreshClaims.Class)
	require.NotEqual(t, pair.AccessClaims.TokenID, pair.RefreshClaims.TokenID)
}

func TestFreshPairPassesPolicy(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	now := time.Now().UTC()

	pair, err := env.issuer.IssuePair(env.subject, now)
	require.NoError(t, err)

	for _, artifact := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := env.codec.Verify(artifact, now)
		require.NoError(t, err)
		_, err = env.policy.Evaluate(ctx, claims, now)
		require.NoError(t, err)
	}
}
