package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	openai "github.com/sashabaranov/go-openai"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/dvelkov/invoice-expert/internal/batch"
	"github.com/dvelkov/invoice-expert/internal/config"
	"github.com/dvelkov/invoice-expert/internal/extract"
	httpapi "github.com/dvelkov/invoice-expert/internal/interfaces/http"
	"github.com/dvelkov/invoice-expert/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	// Local development credentials live in .env; missing file is fine.
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Invoice Expert",
		zap.String("model", cfg.AI.Model),
		zap.Int("port", cfg.Server.Port))

	clientCfg := openai.DefaultConfig(cfg.AI.APIKey)
	clientCfg.BaseURL = cfg.AI.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.AI.Timeout}
	client := openai.NewClientWithConfig(clientCfg)

	extractor := extract.NewExtractor(client, extract.Config{
		Model:      cfg.AI.Model,
		MaxPages:   cfg.AI.MaxPages,
		RetryDelay: cfg.AI.RetryDelay,
	}, logger)
	normalizer := extract.NewNormalizer(logger)
	orchestrator := batch.NewOrchestrator(extractor, normalizer, logger)

	server := httpapi.NewServer(
		httpapi.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		httpapi.Limits{
			MaxFiles:           cfg.Batch.MaxFiles,
			MaxFileSize:        cfg.Batch.MaxFileSize,
			DefaultStartNumber: cfg.Batch.DefaultStartNumber,
		},
		orchestrator,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}
