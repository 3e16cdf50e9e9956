package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kazmori/sneakstore/auth"
)

// AbortWithAuthError is the single place the auth error taxonomy becomes
// HTTP. Every kind keeps its own stable error_code; only the forbidden
// message is deliberately generic, so a 403 never confirms that a target
// resource exists.
func AbortWithAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message":    "The token has expired.",
			"error_code": "TOKEN_EXPIRED",
		})
	case errors.Is(err, auth.ErrRevoked):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message":    "The token has been revoked.",
			"error_code": "TOKEN_REVOKED",
		})
	case errors.Is(err, auth.ErrStale):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message":    "The token predates the account's last security event.",
			"error_code": "TOKEN_STALE",
		})
	case errors.Is(err, auth.ErrWrongClass):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message":    "Wrong token type for this endpoint.",
			"error_code": "WRONG_TOKEN_TYPE",
		})
	case errors.Is(err, auth.ErrMalformed):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message":    "Signature verification failed. The token is invalid.",
			"error_code": "INVALID_TOKEN",
		})
	case errors.Is(err, auth.ErrUnknownSubject):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"message":    "User not found.",
			"error_code": "USER_NOT_FOUND",
		})
	case errors.Is(err, auth.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message":    "Forbidden: You are not authorized to perform this action",
			"error_code": "FORBIDDEN",
		})
	default:
		// Store or infrastructure failure, not a security rejection.
		log.Println("auth check failed:", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message":    "An unexpected internal server error occurred.",
			"error_code": "INTERNAL_SERVER_ERROR",
		})
	}
}
