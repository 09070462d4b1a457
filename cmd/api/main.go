package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/recaudopro/recaudo-api/internal/config"
	"github.com/recaudopro/recaudo-api/internal/domain/auth"
	"github.com/recaudopro/recaudo-api/internal/domain/client"
	"github.com/recaudopro/recaudo-api/internal/domain/collection"
	"github.com/recaudopro/recaudo-api/internal/domain/credit"
	"github.com/recaudopro/recaudo-api/internal/domain/dashboard"
	"github.com/recaudopro/recaudo-api/internal/domain/livefeed"
	"github.com/recaudopro/recaudo-api/internal/domain/report"
	"github.com/recaudopro/recaudo-api/internal/domain/user"
	"github.com/recaudopro/recaudo-api/internal/middleware"
	"github.com/recaudopro/recaudo-api/internal/pkg/database"
	"github.com/recaudopro/recaudo-api/internal/pkg/jwt"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
	"github.com/recaudopro/recaudo-api/internal/pkg/mail"
	"github.com/recaudopro/recaudo-api/internal/pkg/requestseq"
	pkgresponse "github.com/recaudopro/recaudo-api/internal/pkg/response"
	"github.com/recaudopro/recaudo-api/internal/pkg/storage"
)

const localExportsURL = "/files"

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	// Amounts go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting RecaudoPro API")

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if cfg.MigrateOnStart {
		if err := database.MigrateUp(db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	redisClient := connectRedis(ctx, cfg)
	if redisClient != nil {
		defer database.CloseRedis(redisClient)
	}

	loc := cfg.Location()
	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	authMiddleware := middleware.Auth(jwtService)
	seq := requestseq.New(redisClient)
	archive := exportArchive(ctx, cfg)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	clientRepo := client.NewRepository(db)
	creditRepo := credit.NewRepository(db)
	collectionRepo := collection.NewRepository(db)
	identityRepo := auth.NewIdentityRepository(db)

	// ---------- Live feed ----------
	hub := livefeed.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	tokens := auth.NewTokenStore(redisClient)
	authService := auth.NewService(identityRepo, userRepo, jwtService, tokens)
	resetService := auth.NewPasswordResetService(identityRepo, userRepo, tokens, newMailer(cfg), cfg.FrontendURL)
	userService := user.NewService(userRepo)
	clientService := client.NewService(clientRepo, cfg.DefaultPhoneRegion)
	creditService := credit.NewService(creditRepo, clientRepo)
	collectionService := collection.NewService(collectionRepo, creditRepo, hub)
	engine := report.NewEngine(userRepo, clientRepo, creditRepo, collectionRepo)
	aggregator := dashboard.NewAggregator(creditRepo, collectionRepo, loc)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService, resetService)
	userHandler := user.NewHandler(userService, authService)
	clientHandler := client.NewHandler(clientService, loc)
	creditHandler := credit.NewHandler(creditService, loc)
	collectionHandler := collection.NewHandler(collectionService, loc)
	reportHandler := report.NewHandler(engine, seq, archive, loc)
	dashboardHandler := dashboard.NewHandler(aggregator, seq, loc)
	feedHandler := livefeed.NewHandler(hub, cfg.AllowedOrigins)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint stays outside Compress
	r.Mount("/ws", feedHandler.Routes(authMiddleware))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	if cfg.ExportStorage == "local" {
		r.Handle(localExportsURL+"/*", http.StripPrefix(localExportsURL, http.FileServer(http.Dir(cfg.ExportLocalPath))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		mountAPI(r, apiHandlers{
			auth:        authHandler,
			users:       userHandler,
			clients:     clientHandler,
			credits:     creditHandler,
			collections: collectionHandler,
			reports:     reportHandler,
			dashboard:   dashboardHandler,
		}, authMiddleware)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// apiHandlers groups the routers mounted under /api/v1.
type apiHandlers struct {
	auth        *auth.Handler
	users       *user.Handler
	clients     *client.Handler
	credits     *credit.Handler
	collections *collection.Handler
	reports     *report.Handler
	dashboard   *dashboard.Handler
}

func mountAPI(r chi.Router, h apiHandlers, authMiddleware func(http.Handler) http.Handler) {
	r.Mount("/auth", h.auth.Routes(authMiddleware))
	r.Mount("/users", h.users.Routes(authMiddleware))
	r.Mount("/clients", h.clients.Routes(authMiddleware))
	r.Mount("/credits", h.credits.Routes(authMiddleware))
	r.Mount("/collections", h.collections.Routes(authMiddleware))
	r.Mount("/reports", h.reports.Routes(authMiddleware))
	r.Mount("/dashboard", dashboard.Routes(h.dashboard, authMiddleware))
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// token store, request sequencing and live feed then run in-process.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		log.Info().Msg("Redis disabled")
		return nil
	}
	rdb, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process state")
		return nil
	}
	return rdb
}

func exportArchive(ctx context.Context, cfg *config.Config) storage.Storage {
	switch cfg.ExportStorage {
	case "r2":
		st, err := storage.NewR2Storage(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 storage")
		}
		return st
	case "local":
		st, err := storage.NewLocalStorage(cfg.ExportLocalPath, localExportsURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
		return st
	default:
		return nil
	}
}

func newMailer(cfg *config.Config) mail.Sender {
	if !cfg.MailEnabled() {
		log.Warn().Msg("SMTP not configured, password reset mails are only logged")
		return mail.LogSender{}
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}
