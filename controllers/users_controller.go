package controllers

import (
	"fmt"
	"net/http"
	"strings"
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

// POST /api/users
func Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterUserDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Input validation failed.", "error_code": "VALIDATION_ERROR", "details": err.Error()})
			return
		}

		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		email := strings.ToLower(strings.TrimSpace(body.Email))
		username := strings.TrimSpace(body.Username)

		count, err := usersCol.CountDocuments(ctx, bson.M{
			"$or": bson.A{bson.M{"username": username}, bson.M{"email": email}},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"message": "Username or email already exists", "error_code": "RESOURCE_ALREADY_EXISTS"})
			return
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to hash password", "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		now := time.Now().UTC()
		user := models.User{
			ID:              uuid.New().String(),
			Username:        username,
			Email:           email,
			PasswordHash:    hash,
			IsAdmin:         false,
			TokensValidFrom: now,
			CreatedAt:       now,
		}

		if _, err := usersCol.InsertOne(ctx, user); err != nil {
			// The unique indexes close the check-then-insert race.
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"message": "Username or email already exists", "error_code": "RESOURCE_ALREADY_EXISTS"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		c.Header("Location", fmt.Sprintf("/api/users/%s", user.ID))
		c.JSON(http.StatusCreated, user)
	}
}

// GET /api/users/:id
func GetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		usersCol := database.OpenCollection("users")

		var user models.User
		if err := usersCol.FindOne(c.Request.Context(), bson.M{"_id": c.Param("id")}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found.", "error_code": "RESOURCE_NOT_FOUND"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// PATCH /api/users/:id/username
func ChangeUsername() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeUsernameDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Input validation failed.", "error_code": "VALIDATION_ERROR", "details": err.Error()})
			return
		}

		ctx := c.Request.Context()
		userID := c.Param("id")
		username := strings.TrimSpace(body.Username)
		usersCol := database.OpenCollection("users")

		count, err := usersCol.CountDocuments(ctx, bson.M{
			"username": username,
			"_id":      bson.M{"$ne": userID},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"message": "Username already exists", "error_code": "USERNAME_ALREADY_EXISTS"})
			return
		}

		if _, err := usersCol.UpdateByID(ctx, userID, bson.M{"$set": bson.M{"username": username}}); err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"message": "Username already exists", "error_code": "USERNAME_ALREADY_EXISTS"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found.", "error_code": "RESOURCE_NOT_FOUND"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_data": user})
	}
}

// PATCH /api/users/:id/password
//
// A successful change bumps the account watermark: every token issued
// before this instant, on any device, is void from here on.
func ChangePassword(watermarks auth.WatermarkStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangePasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Input validation failed.", "error_code": "VALIDATION_ERROR", "details": err.Error()})
			return
		}

		ctx := c.Request.Context()
		account := middleware.AccountFromContext(c)
		usersCol := database.OpenCollection("users")

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": account.ID.String()}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found.", "error_code": "RESOURCE_NOT_FOUND"})
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.OldPassword); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Old password is not correct", "error_code": "INVALID_CREDENTIALS"})
			return
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to hash password", "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		now := time.Now().UTC()
		if _, err := usersCol.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{"passwordHash": hash}}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}
		if err := watermarks.Bump(ctx, account.ID, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		utils.ClearRefreshCookie(c)
		c.Status(http.StatusNoContent)
	}
}

// DELETE /api/users/:id
func DeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		res, err := usersCol.DeleteOne(ctx, bson.M{"_id": c.Param("id")})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found.", "error_code": "RESOURCE_NOT_FOUND"})
			return
		}

		// Outstanding tokens for the account now fail the policy's
		// existence check; no per-token cleanup is needed.
		utils.ClearRefreshCookie(c)
		c.Status(http.StatusNoContent)
	}
}
