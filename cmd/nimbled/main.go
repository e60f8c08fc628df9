package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nimble-agent/nimble/internal/api"
	"github.com/nimble-agent/nimble/internal/build"
	"github.com/nimble-agent/nimble/internal/config"
	"github.com/nimble-agent/nimble/internal/deploy"
	"github.com/nimble-agent/nimble/internal/engine"
	"github.com/nimble-agent/nimble/internal/models"
	"github.com/nimble-agent/nimble/internal/paths"
	"github.com/nimble-agent/nimble/internal/queue"
	"github.com/nimble-agent/nimble/internal/store"
)

func main() {
	agentConfig := config.Load()
	logger := agentConfig.NewLogger()

	logger.Info("nimble agent starting",
		"port", agentConfig.Port,
		"data_dir", agentConfig.DataDir,
		"dev_mode", agentConfig.DevMode,
		"log_format", agentConfig.LogFormat,
	)

	workspace := paths.New(agentConfig.DataDir)

	// The store cannot be opened lazily: every request and every worker
	// needs it, so a failure here is fatal at startup.
	dataStore, err := store.Open(workspace.DatabaseFile(), logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer dataStore.Close()

	engineClient, err := engine.NewClient(logger)
	if err != nil {
		log.Fatalf("failed to connect to container engine: %v", err)
	}
	defer engineClient.Close()

	buildQueue := queue.New[models.BuildJob](agentConfig.BuildQueueCapacity)
	deployQueue := queue.New[models.DeployJob](agentConfig.DeployQueueCapacity)

	buildWorker := build.NewWorker(dataStore, workspace, engineClient, deployQueue, logger)
	deployWorker := deploy.NewWorker(dataStore, engineClient, logger)

	go buildWorker.Run(buildQueue)
	go deployWorker.Run(deployQueue)

	router := api.NewRouter(api.Dependencies{
		Logger:     logger,
		Store:      dataStore,
		Paths:      workspace,
		BuildQueue: buildQueue,
	})

	server := &http.Server{
		Addr:         ":" + agentConfig.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownChannel := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			shutdownChannel <- err
		}
		close(shutdownChannel)
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("startup complete, agent ready to serve", "port", agentConfig.Port)

	select {
	case sig := <-signalChannel:
		logger.Info("shutdown signal received", "signal", sig)
	case err := <-shutdownChannel:
		if err != nil {
			log.Fatalf("http server failed: %v", err)
		}
	}

	// Closing the queues stops new submissions and ends each worker's
	// consume loop once its queue is drained. main does not wait for the
	// workers: a job still running when the HTTP server has shut down is
	// cut off when the process exits.
	buildQueue.Close()
	deployQueue.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("server shut down cleanly")
	}
}
