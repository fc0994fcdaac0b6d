// Package app wires the configured services together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/elee1766/grubguide/src/agent"
	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/catalog"
	"github.com/elee1766/grubguide/src/chat"
	"github.com/elee1766/grubguide/src/config"
	"github.com/elee1766/grubguide/src/executor"
	"github.com/elee1766/grubguide/src/grubagent"
	"github.com/elee1766/grubguide/src/grubagent/tools"
	"github.com/elee1766/grubguide/src/localmodel"
	"github.com/elee1766/grubguide/src/orclient"
	"github.com/elee1766/grubguide/src/policy"
	"github.com/elee1766/grubguide/src/server"
	"github.com/elee1766/grubguide/src/storage"
)

// App represents the main application with all services
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Catalog  catalog.Store
	Toolbox  *agent.DefaultToolbox
	Model    aisdk.ModelClient
	Executor *executor.Service
	Chat     *chat.Service

	// Store is set only for the sqlite driver
	Store *storage.DB

	fs      afero.Fs
	version string
}

// Options holds what New needs besides the configuration
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Fs serves seed and policy files. Defaults to the OS filesystem.
	Fs      afero.Fs
	Version string
	// Model replaces the configured engine when set.
	Model aisdk.ModelClient
}

// New creates a new App instance with all services initialized
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		fs:      fsys,
		version: opts.Version,
	}

	if err := a.openCatalog(ctx); err != nil {
		a.Close()
		return nil, err
	}

	evaluator, err := a.policyEngine(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	toolboxCfg := grubagent.ToolboxConfig{Catalog: a.Catalog, Logger: logger}
	if evaluator != nil {
		toolboxCfg.Policy = evaluator
	}
	a.Toolbox, err = grubagent.NewToolbox(toolboxCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build toolbox: %w", err)
	}

	a.Model = opts.Model
	if a.Model == nil {
		a.Model = a.newModel()
	}

	serviceCfg := executor.ServiceConfig{
		ModelClient:   a.Model,
		Toolbox:       a.Toolbox,
		MaxToolRounds: cfg.Chat.MaxToolRounds,
		Temperature:   cfg.Engine.Temperature,
		Logger:        logger,
	}
	if cfg.Engine.MaxTokens > 0 {
		maxTokens := cfg.Engine.MaxTokens
		serviceCfg.MaxTokens = &maxTokens
	}
	if cfg.Store.Audit && a.Store != nil {
		serviceCfg.Recorder = a.Store
	}
	a.Executor, err = executor.NewService(serviceCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	a.Chat, err = chat.NewService(chat.Config{
		Replier: a.Executor,
		Timeout: cfg.Chat.Timeout.Std(),
		Logger:  logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create chat service: %w", err)
	}

	return a, nil
}

// openCatalog opens the configured backend. An empty sqlite catalog is
// seeded from the seed file or the demo data.
func (a *App) openCatalog(ctx context.Context) error {
	store := a.Config.Store

	var seed *catalog.SeedData
	if store.SeedFile != "" {
		data, err := catalog.LoadSeedFile(a.fs, store.SeedFile)
		if err != nil {
			return err
		}
		seed = &data
	}

	switch store.Driver {
	case config.DriverSQLite:
		db, err := storage.Open(store.Path)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		a.Store = db
		a.Catalog = db

		empty, err := db.IsEmpty(ctx)
		if err != nil {
			return fmt.Errorf("failed to inspect catalog: %w", err)
		}
		if empty {
			data := catalog.DefaultSeed(time.Now())
			if seed != nil {
				data = *seed
			}
			if err := db.Seed(ctx, data); err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}
			a.Logger.Info("seeded catalog", "path", store.Path, "restaurants", len(data.Restaurants))
		}
	default:
		if seed != nil {
			a.Catalog = catalog.NewMemoryStoreWith(*seed)
		} else {
			a.Catalog = catalog.NewMemoryStore()
		}
	}
	return nil
}

func (a *App) policyEngine(ctx context.Context) (*policy.Engine, error) {
	cfg := a.Config.Policy
	if !cfg.Enabled {
		return nil, nil
	}

	opts := policy.Options{
		AllowedTools:     []string{tools.FindRestaurantsName, tools.GetReviewsName},
		MaxArgumentBytes: cfg.MaxArgumentBytes,
	}
	if cfg.RegoFile != "" {
		module, err := policy.LoadModule(a.fs, cfg.RegoFile)
		if err != nil {
			return nil, err
		}
		opts.Module = module
	}

	engine, err := policy.NewEngine(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to compile tool policy: %w", err)
	}
	return engine, nil
}

func (a *App) newModel() aisdk.ModelClient {
	engine := a.Config.Engine
	if engine.Provider == config.ProviderLocal {
		return localmodel.New(a.Logger)
	}

	apiKey := a.Config.ResolveAPIKey()
	if apiKey == "" {
		a.Logger.Warn("no API key configured, every reply will be an apology", "env_var", engine.APIKeyEnvVar)
	}
	return orclient.NewClient(orclient.Config{
		APIKey:   apiKey,
		BaseURL:  engine.BaseURL,
		Model:    engine.Model,
		Logger:   a.Logger,
		Timeout:  engine.Timeout.Std(),
		SiteURL:  engine.SiteURL,
		SiteName: engine.SiteName,
	})
}

// NewServer builds the HTTP server around the chat service
func (a *App) NewServer() (*server.Server, error) {
	srv := a.Config.Server
	return server.New(server.Config{
		Addr:            srv.Addr,
		AllowedOrigins:  srv.AllowedOrigins,
		BodyLimit:       srv.BodyLimit,
		ShutdownTimeout: srv.ShutdownTimeout.Std(),
		Version:         a.version,
		Logger:          a.Logger,
	}, a.Chat)
}

// SeedCatalog replaces the catalog with the file at path, or the demo
// data when path is empty.
func (a *App) SeedCatalog(ctx context.Context, path string) (catalog.SeedData, error) {
	data := catalog.DefaultSeed(time.Now())
	if path != "" {
		var err error
		data, err = catalog.LoadSeedFile(a.fs, path)
		if err != nil {
			return catalog.SeedData{}, err
		}
	}
	if err := a.Catalog.Seed(ctx, data); err != nil {
		return catalog.SeedData{}, fmt.Errorf("failed to seed catalog: %w", err)
	}
	return data, nil
}

// Close closes all resources held by the app
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
