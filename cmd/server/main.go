package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papersum/internal/api"
	"papersum/internal/config"
	"papersum/internal/llm"
	"papersum/internal/pipeline"
	"papersum/internal/refine"
	"papersum/internal/store"
	"papersum/internal/token"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("")
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	openaiClient, err := llm.NewOpenAIClient(llm.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		log.Error("init llm client", "error", err)
		os.Exit(1)
	}

	codec, err := token.ForModel(cfg.Model)
	if err != nil {
		log.Error("load tokenizer", "error", err)
		os.Exit(1)
	}

	summaryStore, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Error("open summary store", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	summarizer := pipeline.NewSummarizer(openaiClient, codec, log, pipeline.Config{
		Budget:      cfg.ChunkBudget(),
		Overlap:     cfg.ChunkOverlap,
		MaxWorkers:  cfg.MaxWorkers,
		MaxKeywords: cfg.MaxKeywords,
	})

	// Initialize HTTP server.
	srv := api.NewServer(summarizer, refine.NewRefiner(openaiClient), openaiClient, summaryStore, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		summaryStore.Close()
	}()

	log.Info("starting papersum", "port", cfg.Port, "model", cfg.Model)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
