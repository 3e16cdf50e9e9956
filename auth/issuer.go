package auth

import (
	"time"

	"github.com/google/uuid"
)

// Pair is one access token and one refresh token bound to the same subject.
// The two never share a token id.
type Pair struct {
	AccessToken   string
	RefreshToken  string
	AccessClaims  Claims
	RefreshClaims Claims
}

// Issuer mints token pairs at login and at the end of a rotation.
type Issuer struct {
	Codec *Codec
}

func (i *Issuer) IssuePair(subject uuid.UUID, now time.Time) (*Pair, error) {
	access, accessClaims, err := i.Codec.Issue(subject, ClassAccess, now)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := i.Codec.Issue(subject, ClassRefresh, now)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessClaims:  accessClaims,
		RefreshClaims: refreshClaims,
	}, nil
}
