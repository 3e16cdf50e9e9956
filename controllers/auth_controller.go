package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/kazmori/sneakstore/auth"
	"github.com/kazmori/sneakstore/database"
	"github.com/kazmori/sneakstore/dto"
	"github.com/kazmori/sneakstore/middleware"
	"github.com/kazmori/sneakstore/models"
	"github.com/kazmori/sneakstore/utils"
)

// POST /api/users/login
func Login(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Input validation failed.", "error_code": "VALIDATION_ERROR", "details": err.Error()})
			return
		}

		var user models.User
		usersCol := database.OpenCollection("users")
		if err := usersCol.FindOne(c.Request.Context(), bson.M{"email": body.Email}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password", "error_code": "INVALID_CREDENTIALS"})
			return
		}
		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password", "error_code": "INVALID_CREDENTIALS"})
			return
		}

		subject, err := uuid.Parse(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Corrupt account record.", "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		pair, err := issuer.IssuePair(subject, time.Now().UTC())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue tokens.", "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		utils.SetRefreshCookie(c, pair.RefreshToken, utils.RefreshTTL())
		c.JSON(http.StatusOK, gin.H{
			"user_data":    user,
			"access_token": pair.AccessToken,
		})
	}
}

// POST /api/users/refresh
//
// The rotation endpoint: the presented refresh token is revoked before the
// new pair is minted, so a replayed token loses the race and gets
// TOKEN_REVOKED instead of a second session.
func Refresh(rotator *auth.Rotator) gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact, err := c.Cookie(utils.RefreshCookieName)
		if err != nil || artifact == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Request does not contain a refresh token.", "error_code": "AUTHORIZATION_REQUIRED"})
			return
		}

		pair, account, err := rotator.Rotate(c.Request.Context(), artifact, time.Now().UTC())
		if err != nil {
			middleware.AbortWithAuthError(c, err)
			return
		}

		var user models.User
		usersCol := database.OpenCollection("users")
		if err := usersCol.FindOne(c.Request.Context(), bson.M{"_id": account.ID.String()}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found.", "error_code": "USER_NOT_FOUND"})
			return
		}

		utils.SetRefreshCookie(c, pair.RefreshToken, utils.RefreshTTL())
		c.JSON(http.StatusOK, gin.H{
			"user_data":    user,
			"access_token": pair.AccessToken,
		})
	}
}

// POST /api/users/logout
func Logout(codec *auth.Codec, revocations auth.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact, err := c.Cookie(utils.RefreshCookieName)

		// The cookie goes away no matter how the rest plays out.
		utils.ClearRefreshCookie(c)

		if err != nil || artifact == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Request does not contain a refresh token.", "error_code": "AUTHORIZATION_REQUIRED"})
			return
		}

		now := time.Now().UTC()
		claims, err := codec.Verify(artifact, now)
		if err != nil {
			middleware.AbortWithAuthError(c, err)
			return
		}
		if claims.Class != auth.ClassRefresh {
			middleware.AbortWithAuthError(c, auth.ErrWrongClass)
			return
		}

		// Idempotent: logging out twice with the same token is fine.
		if _, err := revocations.Revoke(c.Request.Context(), claims.TokenID, now); err != nil {
			middleware.AbortWithAuthError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out."})
	}
}
