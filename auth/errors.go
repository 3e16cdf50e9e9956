package auth

import "errors"

// Rejection kinds returned by the codec, the policy, the rotation protocol
// and the capability gates. The HTTP layer maps these to status codes and
// error_code strings; nothing in this package ever collapses them into a
// generic failure.
var (
	ErrMalformed      = errors.New("token is malformed or has an invalid signature")
	ErrExpired        = errors.New("token has expired")
	ErrRevoked        = errors.New("token has been revoked")
	ErrStale          = errors.New("token predates the account's tokens_valid_from")
	ErrUnknownSubject = errors.New("token subject does not exist")
	ErrWrongClass     = errors.New("wrong token class for this operation")
	ErrForbidden      = errors.New("forbidden")
)
