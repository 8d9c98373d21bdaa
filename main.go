package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoapi/config"
	"todoapi/config/database"
	"todoapi/internal/activity/repository"
	"todoapi/internal/activity/service"
	"todoapi/pkg/console"
	"todoapi/pkg/logger"
	"todoapi/router"
	"todoapi/socket"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	foundEnv := config.LoadDotEnv()

	cfg, err := config.Load(flag.NewFlagSet("todoapi", flag.ContinueOnError), args, os.Stdout)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case err != nil:
		console.Fail(os.Stderr, err.Error())
		return 2
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		console.Fail(os.Stderr, err.Error())
		return 2
	}
	defer logger.Sync()

	if !foundEnv {
		logger.Sugar.Debug("No .env file found, using environment variables from OS")
	}
	if cfg.ConfigFile != "" {
		logger.Sugar.Infof("Loaded config file %s", cfg.ConfigFile)
	}

	repo, cleanup, err := openRepository(cfg)
	if err != nil {
		logger.Sugar.Errorf("Could not open activity storage: %v", err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := socket.NewHub()
	go hub.Run(ctx)

	svc := service.NewActivityService(repo, hub)
	if _, err := svc.Load(); err != nil {
		logger.Sugar.Errorf("Could not load activities: %v", err)
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(svc, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Sugar.Errorf("Could not listen on %s: %v", srv.Addr, err)
		console.Fail(os.Stderr, err.Error())
		return 1
	}
	logger.Sugar.Infof("Listening on %s", ln.Addr())
	console.Ok(os.Stdout, "Running on http://localhost"+cfg.Addr()+router.Prefix+" (Ctrl+C to stop)")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Errorf("Server failed: %v", err)
			return 1
		}
	case <-ctx.Done():
		logger.Sugar.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
			return 1
		}
	}

	if err := svc.Flush(); err != nil {
		logger.Sugar.Errorf("Unsaved activities could not be written: %v", err)
		return 1
	}
	return 0
}

// openRepository picks PostgreSQL when a database URL is configured and the
// JSON file otherwise.
func openRepository(cfg *config.Config) (repository.ActivityRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Sugar.Infof("Using data file %s", cfg.DataFile)
		return repository.NewFileRepository(cfg.DataFile), func() {}, nil
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewPostgresRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, func() { db.Close() }, nil
}
