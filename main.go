package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/kazmori/sneakstore/auth"
	"github.com/kazmori/sneakstore/controllers"
	"github.com/kazmori/sneakstore/database"
	"github.com/kazmori/sneakstore/middleware"
	"github.com/kazmori/sneakstore/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	ctx := context.Background()

	if err := database.EnsureIndexes(ctx, utils.RefreshTTL()); err != nil {
		log.Fatal("ensure indexes: ", err)
	}
	if err := utils.SeedAdminUser(ctx, database.OpenCollection("users")); err != nil {
		log.Fatal(err)
	}

	// Token lifecycle core: one codec, one policy, explicit store deps.
	codec := auth.NewCodec(utils.JWTSecret(), utils.AccessTTL(), utils.RefreshTTL())
	revocations := database.NewRevocationStore()
	watermarks := database.NewWatermarkStore()
	accounts := database.NewAccountStore()

	policy := &auth.Policy{Revocations: revocations, Watermarks: watermarks, Accounts: accounts}
	issuer := &auth.Issuer{Codec: codec}
	rotator := &auth.Rotator{Codec: codec, Policy: policy, Issuer: issuer, Revocations: revocations}

	gcsClient, gcsBucket, err := utils.NewGCSClient(ctx)
	if err != nil {
		log.Fatal("gcs client: ", err)
	}
	imageValidator := utils.NewImageValidator()

	r := gin.New()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Printf("Allowed origins: %v", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authn := middleware.Authenticate(codec, policy)

	users := r.Group("/api/users")
	{
		users.POST("", controllers.Register())
		users.POST("/login", controllers.Login(issuer))
		users.POST("/refresh", controllers.Refresh(rotator))
		users.POST("/logout", controllers.Logout(codec, revocations))

		users.GET("/:id", authn, middleware.RequireSameUser(), controllers.GetUser())
		users.PATCH("/:id/username", authn, middleware.RequireSameUser(), controllers.ChangeUsername())
		users.PATCH("/:id/password", authn, middleware.RequireSameUser(), controllers.ChangePassword(watermarks))
		users.DELETE("/:id", authn, middleware.RequireSameUser(), controllers.DeleteUser())
	}

	sneakers := r.Group("/api/sneakers")
	{
		sneakers.GET("", controllers.GetSneakers())
		sneakers.GET("/:id", authn, controllers.GetSneaker())

		sneakers.POST("", authn, middleware.RequireAdmin(), controllers.CreateSneaker(gcsClient, gcsBucket, imageValidator))
		sneakers.PATCH("/:id", authn, middleware.RequireAdmin(), controllers.UpdateSneaker(gcsClient, gcsBucket, imageValidator))
		sneakers.DELETE("/:id", authn, middleware.RequireAdmin(), controllers.DeleteSneaker(gcsClient, gcsBucket))
	}

	// Server will listen on 0.0.0.0:8080 unless PORT overrides it
	r.Run()
}
