package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/config"
	"github.com/quizgen/quizgen-backend/internal/database"
	"github.com/quizgen/quizgen-backend/internal/generator"
	"github.com/quizgen/quizgen-backend/internal/handler"
	"github.com/quizgen/quizgen-backend/internal/logger"
	"github.com/quizgen/quizgen-backend/internal/middleware"
	"github.com/quizgen/quizgen-backend/internal/repository"
	"github.com/quizgen/quizgen-backend/internal/router"
	"github.com/quizgen/quizgen-backend/internal/service"
	"github.com/quizgen/quizgen-backend/internal/validator"
	"github.com/quizgen/quizgen-backend/internal/worker"
)

const janitorInterval = time.Minute

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("generator_mode", cfg.GeneratorMode).
		Dur("generation_timeout", cfg.GenerationTimeout).
		Msg("Starting QuizGen Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	apiKeyRepo := repository.NewAPIKeyRepository(rdb)
	dialogs := repository.NewDialogPublisher(rdb)
	attemptQueue := repository.NewAttemptQueue(rdb)
	attemptRepo := repository.NewAttemptRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	gen := generator.New(cfg.GeneratorMode, cfg.GeneratorBaseURL, log)
	keyService := service.NewAPIKeyService(apiKeyRepo, log)
	attemptService := service.NewAttemptService(attemptQueue, attemptRepo, log)
	sessionService := service.NewSessionService(
		gen, keyService, dialogs, attemptService,
		cfg.GenerationTimeout, cfg.SessionIdleTTL, log,
	)
	exportService := service.NewExportService(sessionService, cfg.ExportFontPath, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(sessionService, log),
		Export:  handler.NewExportHandler(exportService),
		APIKey:  handler.NewAPIKeyHandler(keyService),
		Attempt: handler.NewAttemptHandler(attemptService),
		WS:      handler.NewWSHandler(sessionService, dialogs, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(pool, rdb, sessionService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	attemptWorker := worker.NewAttemptWorker(rdb, attemptRepo, attemptQueue, log)
	generateLimiter := middleware.NewRateLimiter(cfg.GenerateRatePerMin, time.Minute)

	for _, run := range []func(context.Context){
		attemptWorker.Start,
		func(ctx context.Context) { sessionService.StartJanitor(ctx, janitorInterval) },
		generateLimiter.StartCleanup,
	} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(workerCtx)
		}(run)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, router.Deps{
		SessionExists:   sessionService.Exists,
		GenerateLimiter: generateLimiter,
	}, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	// WriteTimeout stays above the two generation attempts of one request.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2*cfg.GenerationTimeout + 30*time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers; the attempt worker flushes its batch before returning.
	workerCancel()
	wg.Wait()

	log.Info().Int("live_sessions", sessionService.Count()).Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
