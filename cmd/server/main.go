package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"course-portal/internal/auth"
	"course-portal/internal/config"
	apphttp "course-portal/internal/http"
	"course-portal/internal/repository/sqlite"
	"course-portal/internal/service"
	"course-portal/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	} else {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	stores := sqlite.NewStores(db)
	if err := stores.Init(ctx); err != nil {
		logger.Fatalf("init repositories: %v", err)
	}

	tokens, err := auth.NewTokens(auth.Config{
		Secret:     cfg.Auth.JWTSecret,
		Issuer:     "course-portal",
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	})
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)

	var pictureStore storage.Service
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not configured, profile picture uploads disabled")
	} else {
		s3Store, err := storage.NewS3FromConfig(ctx, storage.S3Config{
			Bucket:   cfg.Storage.Bucket,
			Region:   cfg.Storage.Region,
			Endpoint: cfg.Storage.Endpoint,
			Profile:  cfg.AWS.Profile,
		})
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}
		logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
		pictureStore = s3Store
	}
	pictures := service.NewProfilePictures(pictureStore, cfg.Storage.KeyPrefix, cfg.ProfilePicURLTTL(), logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(apphttp.Services{
		Auth:        service.NewAuthService(stores.Users, hasher, tokens, logger),
		Users:       service.NewUserService(stores.Users, hasher, tokens, pictures, logger),
		Courses:     service.NewCourseService(stores.Courses),
		Enrollments: service.NewEnrollmentService(stores.Enrollments, stores.Courses, logger),
		Dashboard:   service.NewDashboardService(stores.Users, stores.Courses, stores.Enrollments, logger),
	}, cfg.CORS.AllowOrigin, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
