package routes

import (
	"net/http"
	"time"

	identityRepo "darisni/database/repository/identity"
	"darisni/handlers"
	"darisni/middleware"
	"darisni/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates the handlers and repositories route registration needs.
type HandlerBundle struct {
	Registration *handlers.RegistrationHandler
	Profile      *handlers.ProfileHandler
	IdentityRepo identityRepo.IdentityRepository
}

// RegisterRegistrationRoutes registers the sign-up wizard endpoints.
func RegisterRegistrationRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/registration")
	{
		api.POST("/drafts", hb.Registration.CreateDraftHandler)
		api.GET("/drafts/:id", hb.Registration.GetDraftHandler)
		api.PUT("/drafts/:id/role", hb.Registration.SelectRoleHandler)
		api.POST("/drafts/:id/steps", hb.Registration.AdvanceStepHandler)
		api.POST("/drafts/:id/retreat", hb.Registration.RetreatStepHandler)
		api.POST("/drafts/:id/files/:field", hb.Registration.StageFileHandler)
		api.DELETE("/drafts/:id/files/:field", hb.Registration.UnstageFileHandler)
		api.POST("/drafts/:id/probe", hb.Registration.ProbeHandler)
		api.POST("/drafts/:id/submit", hb.Registration.SubmitHandler)
		api.POST("/drafts/:id/verify", hb.Registration.VerifyPasscodeHandler)
		api.POST("/drafts/:id/resend", hb.Registration.ResendPasscodeHandler)
	}
}

// RegisterProfileRoutes registers the sign-in and profile viewer endpoints.
func RegisterProfileRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/signin", hb.Profile.SignInHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.IdentityRepo))
		protected.GET("/profile", hb.Profile.GetProfileHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRegistrationRoutes(r, hb)
	RegisterProfileRoutes(r, hb)
	RegisterHealthRoute(r)
}
