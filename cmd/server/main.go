package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/pv-site-manager/internal/config"
	"github.com/iliyamo/pv-site-manager/internal/database"
	"github.com/iliyamo/pv-site-manager/internal/handler"
	"github.com/iliyamo/pv-site-manager/internal/jobs"
	"github.com/iliyamo/pv-site-manager/internal/logger"
	"github.com/iliyamo/pv-site-manager/internal/ocr"
	"github.com/iliyamo/pv-site-manager/internal/queue"
	"github.com/iliyamo/pv-site-manager/internal/repository"
	"github.com/iliyamo/pv-site-manager/internal/router"
	"github.com/iliyamo/pv-site-manager/internal/security"
	"github.com/iliyamo/pv-site-manager/internal/service"
	"github.com/iliyamo/pv-site-manager/internal/storage"
)

func main() {
	// A missing .env is fine; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	lg := logger.New(cfg.Env)

	db, err := database.Open(cfg.DB)
	if err != nil {
		lg.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		lg.Fatal().Err(err).Msg("migrate schema")
	}

	blobs, err := newBlobStore(ctx, cfg.Storage)
	if err != nil {
		lg.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("init blob storage")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		lg.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable; rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}

	var pub service.EventPublisher = queue.NopPublisher{}
	if cfg.Events.Enabled {
		pub = queue.NewPublisher(cfg.Events.RabbitMQURL, cfg.Events.Queue)
		consumer := &queue.Consumer{
			URL:    cfg.Events.RabbitMQURL,
			Queue:  cfg.Events.Queue,
			LogDir: cfg.Events.LogDir,
			Log:    lg.With().Str("component", "event-consumer").Logger(),
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	}

	users := repository.NewUserRepo(db)
	logs := repository.NewLogRepo(db)
	materials := repository.NewMaterialRepo(db)
	kpis := repository.NewProgressRepo(db)
	docs := repository.NewDocumentRepo(db)

	paging := service.Paging{Default: cfg.Pagination.DefaultLimit, Max: cfg.Pagination.MaxLimit}
	argon := security.Argon2Params{
		Time:    cfg.Auth.Argon2Time,
		Memory:  cfg.Auth.Argon2Memory,
		Threads: cfg.Auth.Argon2Threads,
		KeyLen:  security.DefaultArgon2Params.KeyLen,
		SaltLen: security.DefaultArgon2Params.SaltLen,
	}
	tokens := security.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, users)
	extractor := ocr.NewPipeline(ocr.NewRecognizer(cfg.OCR.TesseractPath, cfg.OCR.Language))

	authSvc := service.NewAuthService(users, tokens, argon)
	logSvc := service.NewLogService(logs, paging)
	materialSvc := service.NewMaterialService(materials, extractor, paging, pub, lg)
	progressSvc := service.NewProgressService(kpis, paging)
	documentSvc := service.NewDocumentService(docs, logs, materials, blobs, paging, pub, lg)

	e := router.New(router.Handlers{
		Health:    handler.NewHealthHandler(db),
		Auth:      handler.NewAuthHandler(authSvc),
		Logs:      handler.NewLogHandler(logSvc),
		Materials: handler.NewMaterialHandler(materialSvc),
		Progress:  handler.NewProgressHandler(progressSvc),
		Documents: handler.NewDocumentHandler(documentSvc),
	}, router.Options{
		Verifier:  tokens,
		Redis:     rdb,
		RateLimit: cfg.RateLimit,
		Cache:     cfg.Cache,
		Log:       lg,
	})

	var sched *jobs.Scheduler
	if cfg.Events.Enabled {
		sched = jobs.NewScheduler(cfg.DigestSchedule, progressSvc, pub, lg.With().Str("component", "scheduler").Logger())
		if err := sched.Start(); err != nil {
			lg.Fatal().Err(err).Str("spec", cfg.DigestSchedule).Msg("start scheduler")
		}
	}

	addr := ":" + cfg.Port
	go func() {
		lg.Info().Str("addr", addr).Str("env", cfg.Env).Str("db", cfg.DB.Driver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("http server")
		}
	}()

	waitForShutdown(ctx, e, sched, db, lg)
}

func newBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, error) {
	if cfg.Backend != "minio" {
		return storage.NewLocalStore(cfg.Root), nil
	}
	store, err := storage.NewObjectStore(cfg)
	if err != nil {
		return nil, err
	}
	bctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(bctx); err != nil {
		return nil, err
	}
	return store, nil
}

func waitForShutdown(ctx context.Context, e *echo.Echo, sched *jobs.Scheduler, db *sql.DB, lg zerolog.Logger) {
	<-ctx.Done()
	lg.Info().Msg("shutting down")

	if sched != nil {
		sched.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("http shutdown")
	}
	if err := db.Close(); err != nil {
		lg.Warn().Err(err).Msg("close database")
	}
}
