package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenClass string

const (
	ClassAccess  TokenClass = "access"
	ClassRefresh TokenClass = "refresh"
)

// Claims is the verified content of a token: who it belongs to, its unique
// id (the revocation key), its class and its validity window.
type Claims struct {
	Subject   uuid.UUID
	TokenID   uuid.UUID
	Class     TokenClass
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Class string `json:"cls"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a single shared HS256 secret.
// It knows nothing about revocation; that is the Policy's job.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (c *Codec) TTL(class TokenClass) time.Duration {
	if class == ClassRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue mints a signed token for subject with a fresh token id,
// iat=now and exp=now+TTL(class).
func (c *Codec) Issue(subject uuid.UUID, class TokenClass, now time.Time) (string, Claims, error) {
	jti := uuid.New()
	claims := jwtClaims{
		Class: string(class),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(class))),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, Claims{
		Subject:   subject,
		TokenID:   jti,
		Class:     class,
		IssuedAt:  now.Truncate(time.Second),
		ExpiresAt: now.Add(c.TTL(class)).Truncate(time.Second),
	}, nil
}

// Verify checks the signature and the expiry against now. Tampered or
// structurally invalid tokens yield ErrMalformed, past-expiry tokens
// ErrExpired.
func (c *Codec) Verify(artifact string, now time.Time) (Claims, error) {
	parsed := &jwtClaims{}
	token, err := jwt.ParseWithClaims(artifact, parsed,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrMalformed
	}
	if !token.Valid {
		return Claims{}, ErrMalformed
	}

	subject, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	jti, err := uuid.Parse(parsed.ID)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	class := TokenClass(parsed.Class)
	if class != ClassAccess && class != ClassRefresh {
		return Claims{}, ErrMalformed
	}
	if parsed.IssuedAt == nil {
		return Claims{}, ErrMalformed
	}

	return Claims{
		Subject:   subject,
		TokenID:   jti,
		Class:     class,
		IssuedAt:  parsed.IssuedAt.Time,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
