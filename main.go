// File: darisni/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"darisni/config"
	"darisni/database"
	identityRepoPkg "darisni/database/repository/identity"
	profileRepoPkg "darisni/database/repository/profile"
	"darisni/handlers"
	"darisni/middleware"
	"darisni/routes"
	"darisni/services/auth"
	"darisni/services/email"
	"darisni/services/registration"
	"darisni/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	var emailService email.EmailService
	if config.IsProduction() {
		emailService = email.NewSendgridService()
	} else {
		emailService = email.NewConsoleService()
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	profileRepo := profileRepoPkg.NewMongoProfileRepo()
	identityRepo := identityRepoPkg.NewMongoIdentityRepo()

	// services.
	draftTTL := time.Duration(config.AppConfig.DraftTTLMinutes) * time.Minute
	registrationService := &registration.DefaultRegistrationService{
		Drafts:        registration.NewRedisDraftStore(utils.GetDraftCacheClient(), draftTTL),
		Profiles:      profileRepo,
		Identities:    identityRepo,
		Storage:       cloudinaryStorageService,
		Email:         emailService,
		Passcodes:     registration.RedisPasscodeStore{},
		StagingDir:    config.AppConfig.StagingDir,
		DocumentKey:   viper.GetString("cloudinary.adminKey"),
		ProbeDebounce: time.Duration(config.AppConfig.ProbeDebounceMS) * time.Millisecond,
	}
	authService := &auth.DefaultAuthService{Identities: identityRepo}

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Registration: handlers.NewRegistrationHandler(registrationService),
		Profile:      handlers.NewProfileHandler(authService, profileRepo, cloudinaryStorageService),
		IdentityRepo: identityRepo,
	}

	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetDraftCacheClient(), utils.GetOTPCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
