package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/elee1766/grubguide/src/app"
)

// ServeCmd serves the chat API
type ServeCmd struct {
	Addr      string   `help:"Listen address, overrides server.addr"`
	Origin    []string `help:"Allowed browser origin; repeatable, overrides server.allowed_origins"`
	LogFormat string   `enum:"text,json" default:"text" help:"Log output format"`
}

func (s *ServeCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if len(s.Origin) > 0 {
		cfg.Server.AllowedOrigins = s.Origin
	}

	logFormat := s.LogFormat
	if cfg.Logging.Format == "json" {
		logFormat = "json"
	}
	logger := createCLILogger(cfg.Logging.Level, logFormat)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appInstance, err := app.New(runCtx, app.Options{
		Config:  cfg,
		Logger:  logger,
		Fs:      appFs(cli),
		Version: version,
	})
	if err != nil {
		return err
	}
	defer appInstance.Close()

	srv, err := appInstance.NewServer()
	if err != nil {
		return err
	}

	info := appInstance.Executor.ModelInfo()
	logger.Info("starting grubguide",
		"version", version,
		"addr", srv.Addr(),
		"engine", cfg.Engine.Provider,
		"model", info.ID,
		"store", cfg.Store.Driver,
		"policy", cfg.Policy.Enabled,
		"api_key", maskAPIKey(cfg.ResolveAPIKey()),
	)

	return srv.Run(runCtx)
}
