package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/0xADE/ade-dentry/internal/config"
	"github.com/0xADE/ade-dentry/internal/indexer"
	"github.com/0xADE/ade-dentry/internal/store"
	"github.com/0xADE/ade-dentry/server"
)

func main() {
	// Initialize configuration
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	log.SetLevel(cfg.LogLevel())
	log.SetPrefix("ade-dentryd")
	log.SetReportTimestamp(true)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the initial index
	idx := indexer.NewIndexer(cfg.Scanner())
	n := idx.Reindex(ctx)
	log.Info("indexed", "files", n, "categories", idx.Index().Len(), "roots", idx.Scanner().Roots())

	if cfg.Watch() {
		go func() {
			if err := idx.Watch(ctx); err != nil {
				log.Error("watcher failed", "err", err)
			}
		}()
	}

	// Create server
	srv, err := server.NewServer(cfg.UnixSocket(), idx, store.NewStore(cfg.UserDir()))
	if err != nil {
		log.Fatal("failed to create server", "socket", cfg.UnixSocket(), "err", err)
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Info("ade-dentryd started", "socket", cfg.UnixSocket())

	select {
	case sig := <-sigChan:
		log.Info("received signal", "signal", sig)
		cancel()
		if err := srv.Stop(); err != nil {
			log.Error("error stopping server", "err", err)
		}
	case err := <-serverErr:
		if err != nil {
			log.Fatal("server error", "err", err)
		}
	}

	log.Info("ade-dentryd stopped")
}
