package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kazmori/sneakstore/auth"
)

const accountKey = "account"

// Authenticate verifies the bearer token and runs it through the revocation
// policy. On acceptance the resolved account is bound to the request
// context for the gates and handlers downstream.
func Authenticate(codec *auth.Codec, policy *auth.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":    "Request does not contain an access token.",
				"error_code": "AUTHORIZATION_REQUIRED",
			})
			return
		}

		now := time.Now().UTC()
		claims, err := codec.Verify(strings.TrimPrefix(header, "Bearer "), now)
		if err != nil {
			AbortWithAuthError(c, err)
			return
		}
		if claims.Class != auth.ClassAccess {
			AbortWithAuthError(c, auth.ErrWrongClass)
			return
		}

		account, err := policy.Evaluate(c.Request.Context(), claims, now)
		if err != nil {
			AbortWithAuthError(c, err)
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// RequireSameUser gates routes with a /:id path segment to the
// authenticated account itself. Whether the path id exists is not leaked.
func RequireSameUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := AccountFromContext(c)
		pathID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message":    "Invalid user id in URL.",
				"error_code": "BAD_REQUEST",
			})
			return
		}
		if err := auth.SameSubject(account.ID, pathID); err != nil {
			AbortWithAuthError(c, err)
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireAdmin(AccountFromContext(c)); err != nil {
			AbortWithAuthError(c, err)
			return
		}
		c.Next()
	}
}

// AccountFromContext returns the account bound by Authenticate, or nil on
// routes that did not pass through it.
func AccountFromContext(c *gin.Context) *auth.Account {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil
	}
	account, _ := v.(*auth.Account)
	return account
}
