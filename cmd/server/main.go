package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tgbridge/relay-server-go/internal/auth"
	"github.com/tgbridge/relay-server-go/internal/config"
	"github.com/tgbridge/relay-server-go/internal/database"
	"github.com/tgbridge/relay-server-go/internal/handler"
	"github.com/tgbridge/relay-server-go/internal/middleware"
	"github.com/tgbridge/relay-server-go/internal/repository"
	"github.com/tgbridge/relay-server-go/internal/service"
	"github.com/tgbridge/relay-server-go/internal/telegram"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	bot, err := telegram.NewBot(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telegram bot")
	}

	accountRepo := repository.NewAccountRepository(db.DB)
	tokenRepo := repository.NewTokenRepository(db)
	messageRepo := repository.NewMessageRepository(db.DB)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL())

	accountService := service.NewAccountService(accountRepo, tokenManager)
	tokenService := service.NewTokenService(accountRepo, tokenRepo, cfg.PairingTokenTTL())
	bindingService := service.NewBindingService(tokenRepo, accountRepo, bot)
	relayService := service.NewRelayService(accountRepo, tokenRepo, messageRepo, bot)

	authMiddleware := middleware.NewAuthMiddleware(tokenManager)

	authHandler := handler.NewAuthHandler(accountService)
	telegramHandler := handler.NewTelegramHandler(tokenService, relayService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Mount("/", authHandler.Routes())
	})

	r.Route("/api/telegram", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Mount("/", telegramHandler.Routes())
	})

	botCtx, stopBot := context.WithCancel(context.Background())
	go func() {
		if err := bot.Run(botCtx, bindingService); err != nil {
			log.Fatal().Err(err).Msg("telegram bot error")
		}
	}()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	stopBot()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
