package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/kazmori/sneakstore/database"
	"github.com/kazmori/sneakstore/dto"
	"github.com/kazmori/sneakstore/models"
	"github.com/kazmori/sneakstore/utils"
)

// GET /api/sneakers
func GetSneakers() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := database.OpenCollection("sneakers")

		q := strings.TrimSpace(c.Query("q"))
		page := utils.ParseIntDefault(c.Query("page"), 1)
		perPage := utils.ParseIntDefault(c.Query("per_page"), 6)
		if page < 1 {
			page = 1
		}
		if perPage < 1 {
			perPage = 6
		}
		if perPage > 100 {
			perPage = 100
		}
		skip := int64((page - 1) * perPage)

		filter := bson.M{}
		if q != "" {
			pattern := bson.M{"$regex": q, "$options": "i"}
			filter["$or"] = bson.A{
				bson.M{"name": pattern},
				bson.M{"description": pattern},
				bson.M{"category": pattern},
			}
		}

		findOpts := options.Find().
			SetSkip(skip).
			SetLimit(int64(perPage)).
			SetSort(bson.D{{Key: "_id", Value: -1}})

		cursor, err := col.Find(ctx, filter, findOpts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}
		defer cursor.Close(ctx)

		items := make([]models.Sneaker, 0)
		for cursor.Next(ctx) {
			var s models.Sneaker
			if err := cursor.Decode(&s); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
				return
			}
			items = append(items, s)
		}
		if err := cursor.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		total, err := col.CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		totalPages := (total + int64(perPage) - 1) / int64(perPage)
		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"meta": gin.H{
				"page":        page,
				"per_page":    perPage,
				"total_pages": totalPages,
				"total_items": total,
			},
		})
	}
}

// GET /api/sneakers/:id
func GetSneaker() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid sneaker id", "error_code": "BAD_REQUEST"})
			return
		}

		col := database.OpenCollection("sneakers")
		var sneaker models.Sneaker
		if err := col.FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&sneaker); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "The requested resource was not found.", "error_code": "RESOURCE_NOT_FOUND"})
			return
		}
		c.JSON(http.StatusOK, sneaker)
	}
}

// POST /api/sneakers
func CreateSneaker(gcs *storage.Client, bucket string, v *utils.ImageValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateSneakerDTO
		if err := c.ShouldBind(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Input validation failed.", "error_code": "VALIDATION_ERROR", "details": err.Error()})
			return
		}

		ctx := c.Request.Context()
		imageURL := ""

		// A form with an image key but no chosen file carries an empty
		// filename; treat that the same as no image at all.
		if fh, err := c.FormFile("image"); err == nil && fh.Filename != "" {
			contentType, err := v.ValidateImage(fh)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "error_code": "IMAGE_VALIDATION_ERROR"})
				return
			}
			imageURL, err = utils.UploadSneakerImage(ctx, gcs, bucket, body.Name, fh, contentType)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "FILE_SYSTEM_ERROR"})
				return
			}
		}

		now := time.Now().UTC()
		sneaker := models.Sneaker{
			ID:          bson.NewObjectID(),
			Name:        body.Name,
			Description: body.Description,
			Category:    models.Category(body.Category),
			Price:       body.Price,
			Stock:       body.Stock,
			Featured:    body.Featured,
			ImageURL:    imageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		col := database.OpenCollection("sneakers")
		if _, err := col.InsertOne(ctx, sneaker); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		c.Header("Location", "/api/sneakers/"+sneaker.ID.Hex())
		c.JSON(http.StatusCreated, sneaker)
	}
}

// PATCH /api/sneakers/:id
func UpdateSneaker(gcs *storage.Client, bucket string, v *utils.ImageValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid sneaker id", "error_code": "BAD_REQUEST"})
			return
		}

		var body dto.UpdateSneakerDTO
		if err := c.ShouldBind(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Input validation failed.", "error_code": "VALIDATION_ERROR", "details": err.Error()})
			return
		}

		ctx := c.Request.Context()
		col := database.OpenCollection("sneakers")

		var sneaker models.Sneaker
		if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&sneaker); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "The requested resource was not found.", "error_code": "RESOURCE_NOT_FOUND"})
			return
		}

		set := bson.M{}
		if body.Name != nil {
			set["name"] = *body.Name
		}
		if body.Description != nil {
			set["description"] = *body.Description
		}
		if body.Category != nil {
			set["category"] = *body.Category
		}
		if body.Price != nil {
			set["price"] = *body.Price
		}
		if body.Stock != nil {
			set["stock"] = *body.Stock
		}
		if body.Featured != nil {
			set["featured"] = *body.Featured
		}

		// Old object names are collected before the write and deleted only
		// after the document update succeeds.
		oldImageURL := ""

		if fh, err := c.FormFile("image"); err == nil && fh.Filename != "" {
			contentType, err := v.ValidateImage(fh)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "error_code": "IMAGE_VALIDATION_ERROR"})
				return
			}
			name := sneaker.Name
			if body.Name != nil {
				name = *body.Name
			}
			newURL, err := utils.UploadSneakerImage(ctx, gcs, bucket, name, fh, contentType)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "FILE_SYSTEM_ERROR"})
				return
			}
			oldImageURL = sneaker.ImageURL
			set["imageUrl"] = newURL
		} else if body.DeleteImage {
			oldImageURL = sneaker.ImageURL
			set["imageUrl"] = ""
		}

		if len(set) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "no updates provided", "error_code": "BAD_REQUEST"})
			return
		}
		set["updatedAt"] = time.Now().UTC()

		if _, err := col.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		if oldImageURL != "" {
			if err := utils.DeleteSneakerImage(ctx, gcs, bucket, oldImageURL); err != nil {
				log.Println("delete old sneaker image:", err)
			}
		}

		if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&sneaker); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}
		c.JSON(http.StatusOK, sneaker)
	}
}

// DELETE /api/sneakers/:id
func DeleteSneaker(gcs *storage.Client, bucket string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid sneaker id", "error_code": "BAD_REQUEST"})
			return
		}

		ctx := c.Request.Context()
		col := database.OpenCollection("sneakers")

		var sneaker models.Sneaker
		if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&sneaker); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "The requested resource was not found.", "error_code": "RESOURCE_NOT_FOUND"})
			return
		}

		if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "error_code": "INTERNAL_SERVER_ERROR"})
			return
		}

		if sneaker.ImageURL != "" {
			if err := utils.DeleteSneakerImage(ctx, gcs, bucket, sneaker.ImageURL); err != nil {
				log.Println("delete sneaker image:", err)
			}
		}

		c.Status(http.StatusNoContent)
	}
}
