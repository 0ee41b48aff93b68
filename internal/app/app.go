package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/common"
	"github.com/ternarybob/fiscus/internal/handlers"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/services/chunking"
	"github.com/ternarybob/fiscus/internal/services/embeddings"
	"github.com/ternarybob/fiscus/internal/services/metrics"
	"github.com/ternarybob/fiscus/internal/services/qa"
	"github.com/ternarybob/fiscus/internal/services/resolver"
	"github.com/ternarybob/fiscus/internal/services/vectorindex"
	"github.com/ternarybob/fiscus/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Pipeline services
	ChunkerService   interfaces.ChunkerService
	EmbeddingService interfaces.EmbeddingService
	VectorIndex      interfaces.VectorIndex
	ResolverService  interfaces.ResolverService
	Calculator       *metrics.Calculator
	QAService        interfaces.QAService

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	QAHandler       *handlers.QAHandler
	VariableHandler *handlers.VariableHandler

	snapshotCron *cron.Cron
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	app.loadKnowledgeBase()

	if cfg.Processing.SnapshotEnabled {
		if err := app.startSnapshotJob(); err != nil {
			return nil, fmt.Errorf("failed to start snapshot job: %w", err)
		}
	}

	logger.Info().
		Str("embedding_provider", app.EmbeddingService.ModelName()).
		Int("dimension", app.EmbeddingService.Dimension()).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes the RAG pipeline in dependency order:
// chunker and embedder feed the vector index, the QA service orchestrates
// all three, and the resolver/calculator pair is independent of retrieval.
func (a *App) initServices() error {
	cfg := a.Config

	a.ChunkerService = chunking.NewService(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, a.Logger)

	provider := a.embeddingProvider()
	a.EmbeddingService = embeddings.NewService(provider, cfg.Embeddings.RateLimit, cfg.Embeddings.Burst, a.Logger)

	a.VectorIndex = vectorindex.New(cfg.Embeddings.Dimension, a.Logger)

	a.ResolverService = resolver.NewService(a.Logger)
	a.Calculator = metrics.NewCalculator(a.Logger)

	a.QAService = qa.NewService(
		a.ChunkerService,
		a.EmbeddingService,
		a.VectorIndex,
		cfg.RAG.TopK,
		cfg.RAG.MinSimilarity,
		cfg.RAG.HistoryLimit,
		cfg.Processing.IngestWorkers,
		a.Logger,
	)

	return nil
}

func (a *App) embeddingProvider() interfaces.EmbeddingProvider {
	name := a.Config.Embeddings.Provider
	if name != "hashing" {
		a.Logger.Warn().
			Str("provider", name).
			Msg("Unknown embedding provider, falling back to hashing")
	}
	return embeddings.NewHashingProvider(a.Config.Embeddings.Dimension)
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.QAHandler = handlers.NewQAHandler(a.QAService, a.StorageManager, a.Calculator, a.Config, a.Logger)
	a.VariableHandler = handlers.NewVariableHandler(a.ResolverService, a.Calculator, a.StorageManager, a.Logger)
}

// loadKnowledgeBase restores persisted index artifacts from disk. A missing
// or corrupt snapshot is not fatal; the service starts with an empty index.
func (a *App) loadKnowledgeBase() {
	basePath := a.Config.RAG.KnowledgeBasePath
	if basePath == "" {
		return
	}

	if _, err := os.Stat(basePath + ".index"); os.IsNotExist(err) {
		a.Logger.Info().
			Str("path", basePath).
			Msg("No knowledge base snapshot found, starting empty")
		return
	}

	if err := a.QAService.LoadKnowledgeBase(basePath); err != nil {
		a.Logger.Warn().
			Err(err).
			Str("path", basePath).
			Msg("Failed to load knowledge base, starting empty")
		return
	}

	stats := a.QAService.Stats()
	a.Logger.Info().
		Str("path", basePath).
		Int("chunks", stats.TotalChunks).
		Msg("Knowledge base loaded")
}

// startSnapshotJob schedules periodic knowledge base snapshots
func (a *App) startSnapshotJob() error {
	a.snapshotCron = cron.New()

	_, err := a.snapshotCron.AddFunc(a.Config.Processing.SnapshotSchedule, func() {
		if err := a.saveKnowledgeBase(); err != nil {
			a.Logger.Warn().Err(err).Msg("Scheduled knowledge base snapshot failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", a.Config.Processing.SnapshotSchedule, err)
	}

	a.snapshotCron.Start()
	a.Logger.Info().
		Str("schedule", a.Config.Processing.SnapshotSchedule).
		Msg("Knowledge base snapshot job started")

	return nil
}

func (a *App) saveKnowledgeBase() error {
	basePath := a.Config.RAG.KnowledgeBasePath
	if basePath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(basePath), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return a.QAService.SaveKnowledgeBase(basePath)
}

// Close shuts down the application, snapshotting the knowledge base first
func (a *App) Close(ctx context.Context) error {
	if a.snapshotCron != nil {
		cronCtx := a.snapshotCron.Stop()
		select {
		case <-cronCtx.Done():
		case <-ctx.Done():
			a.Logger.Warn().Msg("Timed out waiting for snapshot job to stop")
		}
	}

	if err := a.saveKnowledgeBase(); err != nil {
		a.Logger.Warn().Err(err).Msg("Final knowledge base snapshot failed")
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
