// Package main runs the volunteer portal HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voluntariado/portal/config"
	"github.com/voluntariado/portal/internal/activities"
	"github.com/voluntariado/portal/internal/auth"
	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/internal/locations"
	"github.com/voluntariado/portal/internal/middleware"
	"github.com/voluntariado/portal/internal/organizations"
	"github.com/voluntariado/portal/internal/profile"
	"github.com/voluntariado/portal/internal/registrations"
	"github.com/voluntariado/portal/internal/views"
	"github.com/voluntariado/portal/pkg/response"
	"github.com/voluntariado/portal/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	var store storage.Store
	var sweepStores []views.Sweepable
	switch cfg.Storage.Driver {
	case "memory":
		store = storage.NewMemory()
		logger.Warn("using in-memory session storage; sessions are lost on restart")
	case "bolt":
		db, err := storage.NewBolt(cfg.Storage.BoltPath, logger)
		if err != nil {
			logger.Fatal("bolt", zap.Error(err))
		}
		defer db.Close()
		store = db
		sweepStores = append(sweepStores, db)
	default:
		rdb, err := storage.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		store = rdb
	}

	api := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout(), logger)

	// Per-view state
	cascades := views.NewRegistry[*locations.Cascade]("cascades", logger)
	reconcilers := views.NewRegistry[*registrations.Reconciler]("enrollments", logger)
	sweepables := append([]views.Sweepable{cascades, reconcilers}, sweepStores...)
	sweeper, err := views.NewSweeper(cfg.Views.SweepCron, cfg.Views.IdleTTL(), logger, sweepables...)
	if err != nil {
		logger.Fatal("view sweeper", zap.Error(err))
	}

	// Auth
	authRepo := auth.NewRepository(api)
	authHandler := auth.NewHandler(authRepo, logger)

	// Organizations
	orgRepo := organizations.NewRepository(api)
	orgHandler := organizations.NewHandler(orgRepo, logger)

	// Reference data and location cascades
	locationRepo := locations.NewRepository(api, store, cfg.Reference.TTL(), logger)
	locationHandler := locations.NewHandler(locationRepo, cascades, logger)

	// Enrollment
	registrationRepo := registrations.NewRepository(api)
	registrationHandler := registrations.NewHandler(registrationRepo, reconcilers, logger)

	// Profile
	profileHandler := profile.NewHandler(profile.NewRepository(api), logger)

	// Activity administration
	activityHandler := activities.NewHandler(activities.NewRepository(api), locationRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(i18n.Middleware(cfg.I18n.DefaultLang))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Reference lists are not session-bound.
	locationHandler.RegisterReference(router.Group("/reference"))

	app := router.Group("")
	app.Use(middleware.Session(middleware.SessionOptions{
		Store:      store,
		Authn:      authRepo,
		Orgs:       orgRepo,
		Views:      []middleware.ViewDropper{cascades, reconcilers},
		CookieName: cfg.Session.CookieName,
		IdleTTL:    cfg.Session.IdleTTL(),
		Secure:     cfg.Session.Secure,
		Logger:     logger,
	}))
	{
		authHandler.Register(app.Group("/auth"))
		locationHandler.RegisterForms(app.Group("/forms"))
		registrationHandler.Register(app.Group("/events"))

		protected := app.Group("", middleware.RequireAuth())
		orgHandler.RegisterMember(protected.Group("/organizations"))
		profileHandler.Register(protected.Group("/profile"))

		admin := protected.Group("/admin/:orgId", organizations.RequireAdmin("orgId"))
		orgHandler.RegisterAdmin(admin)
		activityHandler.Register(admin.Group("/activities"))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	sweeper.Start()

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Backend.URL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	sweeper.Stop()
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
