package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"doctranslate-backend/internal/documents"
	"doctranslate-backend/internal/extract"
	"doctranslate-backend/internal/llm"
	"doctranslate-backend/internal/llm/gemini"
	"doctranslate-backend/internal/llm/openai"
	"doctranslate-backend/internal/ocr"
	"doctranslate-backend/internal/processing"
	"doctranslate-backend/internal/services/health"
	"doctranslate-backend/internal/shared/cache"
	"doctranslate-backend/internal/shared/config"
	"doctranslate-backend/internal/shared/server"
	"doctranslate-backend/internal/shared/storage/db"
	"doctranslate-backend/internal/shared/storage/object"
	localstore "doctranslate-backend/internal/shared/storage/object/local"
	s3store "doctranslate-backend/internal/shared/storage/object/s3"
	"doctranslate-backend/internal/shared/telemetry"
	"doctranslate-backend/internal/summarize"
	"doctranslate-backend/internal/translate"
)

// memoryCacheSize bounds the in-process artifact cache used in front of
// Postgres when Redis is not configured.
const memoryCacheSize = 5000

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Cache             cache.Client
	Store             object.ObjectStore
	Repo              documents.Repo
	Translator        *translate.Service
	DocumentsService  *documents.Service
	ProcessingService *processing.Service
	DocumentsHandler  *documents.Handler
	ProcessHandler    *processing.Handler
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, DB: sqlDB}

	if err := app.wire(ctx); err != nil {
		if cerr := app.Close(); cerr != nil {
			telemetry.Warn("bootstrap.close_failed", map[string]any{"error": cerr})
		}
		return nil, err
	}

	checks := map[string]health.Check{}
	if app.DB != nil {
		checks["database"] = app.DB.PingContext
	}
	if pinger, ok := app.Cache.(interface{ Ping(context.Context) error }); ok {
		checks["cache"] = pinger.Ping
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		DocumentHandler: app.DocumentsHandler,
		ProcessHandler:  app.ProcessHandler,
		Health:          health.NewService(checks),
		TranslationLive: app.Translator.Live(),
	})

	return app, nil
}

// wire builds everything that depends on the database handle.
func (a *App) wire(ctx context.Context) error {
	store, err := buildStore(ctx, a.Config)
	if err != nil {
		return err
	}
	a.Store = store
	return buildServices(ctx, a)
}

// Close releases connections held by the app.
func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

var openDB = buildDB

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildCache returns the artifact cache for a Postgres-backed repo. The
// in-memory repo needs none.
func buildCache(ctx context.Context, cfg config.Config) (cache.Client, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return cache.NewMemoryClient(memoryCacheSize), nil
	}
	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_cache", map[string]any{"reason": "redis unavailable", "error": err})
			return cache.NewMemoryClient(memoryCacheSize), nil
		}
		return nil, err
	}
	return client, nil
}

// BuildTranslator selects the translation provider from cfg.
func BuildTranslator(ctx context.Context, cfg config.Config) (*translate.Service, error) {
	var provider llm.Translator
	switch cfg.TranslationProvider {
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.TranslationModel, cfg.TranslationTimeout)
		if err != nil {
			return nil, err
		}
		provider = client
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.TranslationModel)
		if err != nil {
			return nil, err
		}
		provider = client
	}
	return translate.NewService(provider, cfg.TranslationTimeout)
}

// BuildExtractor returns an Extractor with OCR when OCR_URL is set.
func BuildExtractor(cfg config.Config) (*extract.Extractor, error) {
	if strings.TrimSpace(cfg.OCRURL) == "" {
		return extract.New(nil), nil
	}
	engine, err := ocr.NewHTTPClient(cfg.OCRURL, cfg.OCRTimeout)
	if err != nil {
		return nil, err
	}
	return extract.New(engine), nil
}

func buildServices(ctx context.Context, app *App) error {
	var repo documents.Repo
	if app.DB != nil {
		client, err := buildCache(ctx, app.Config)
		if err != nil {
			return err
		}
		app.Cache = client
		repo = documents.NewCachedRepo(&documents.PGRepo{DB: app.DB}, client, app.Config.CacheTTL)
	} else {
		repo = documents.NewMemoryRepo()
	}

	extractor, err := BuildExtractor(app.Config)
	if err != nil {
		return err
	}
	translator, err := BuildTranslator(ctx, app.Config)
	if err != nil {
		return err
	}

	docSvc := &documents.Service{
		Repo:           repo,
		Store:          app.Store,
		Extractor:      extractor,
		MaxUploadBytes: app.Config.MaxUploadBytes,
	}
	procSvc := processing.NewService(repo, translator, summarize.Extractive{})

	app.Repo = repo
	app.Translator = translator
	app.DocumentsService = docSvc
	app.ProcessingService = procSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.ProcessHandler = processing.NewHandler(procSvc)

	if app.DocumentsHandler == nil || app.ProcessHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
