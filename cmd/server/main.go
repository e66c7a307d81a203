// @title Entity Blocking API
// @version 1.0
// @description API блокинга для поиска дубликатов: шинглы, обратный индекс и оценка пар внутри блоков.

// @contact.name API Support
// @contact.email support@example.com

// @license.name Internal Use Only

// @host localhost:9999
// @BasePath /
// @schemes http https

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"entityblock/database"
	"entityblock/internal/config"
	"entityblock/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := server.NewLogger(os.Stdout, cfg.SlogLevel())

	db, err := database.NewResultsDB(cfg.ResultsDatabasePath)
	if err != nil {
		return fmt.Errorf("open results database: %w", err)
	}
	defer db.Close()
	logger.Info("Results database ready", "path", cfg.ResultsDatabasePath)

	srv := server.NewServer(cfg, db, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}
