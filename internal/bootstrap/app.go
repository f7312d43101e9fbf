package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docstore-backend/internal/docs"
	"docstore-backend/internal/ingestion"
	"docstore-backend/internal/search"
	"docstore-backend/internal/services/health"
	"docstore-backend/internal/shared/config"
	"docstore-backend/internal/shared/server"
	"docstore-backend/internal/shared/storage/db"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Index            search.Index
	DocsRepo         docs.Repo
	DocsService      *docs.Service
	DocsHandler      *docs.Handler
	IngestionHandler *ingestion.Handler
	Health           *health.Service
}

// Build prepares shared dependencies and wires the router. When no store is
// configured in a dev-like environment, in-memory implementations are used.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	index, err := buildIndex(ctx, cfg)
	if err != nil {
		if sqlDB != nil {
			sqlDB.Close()
		}
		return nil, err
	}

	var docsRepo docs.Repo
	if sqlDB != nil {
		docsRepo = &docs.PGRepo{DB: sqlDB}
	} else {
		docsRepo = docs.NewMemoryRepo()
	}

	docsSvc := &docs.Service{Repo: docsRepo, Index: index}
	docsHandler := docs.NewHandler(docsSvc)
	ingestionHandler := ingestion.NewHandler(docsSvc, ingestion.NewDiskClient(&http.Client{Timeout: 60 * time.Second}))
	healthSvc := health.NewService(sqlDB, index)

	app := &App{
		Config:           cfg,
		DB:               sqlDB,
		Index:            index,
		DocsRepo:         docsRepo,
		DocsService:      docsSvc,
		DocsHandler:      docsHandler,
		IngestionHandler: ingestionHandler,
		Health:           healthSvc,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Docs:      docsHandler,
		Ingestion: ingestionHandler,
		Health:    healthSvc,
	})

	return app, nil
}

// Close releases store connections.
func (a *App) Close() {
	if a.Index != nil {
		a.Index.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: no database configured; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildIndex(ctx context.Context, cfg config.Config) (search.Index, error) {
	if strings.TrimSpace(cfg.SearchAddr) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: no search index configured; using in-memory index")
			return search.NewMemoryIndex(), nil
		}
		return nil, fmt.Errorf("SEARCH_HOST is required")
	}

	index, err := search.NewRedisIndex(cfg.SearchAddr, cfg.SearchPassword)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: search connect failed; using in-memory index: %v", err)
			return search.NewMemoryIndex(), nil
		}
		return nil, err
	}

	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := index.EnsureIndex(ensureCtx); err != nil {
		index.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: ensure index failed; using in-memory index: %v", err)
			return search.NewMemoryIndex(), nil
		}
		return nil, err
	}

	return index, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
