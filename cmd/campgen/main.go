package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/campgen/campgen/internal/catalog"
	"github.com/campgen/campgen/internal/config"
	"github.com/campgen/campgen/internal/gateway"
	"github.com/campgen/campgen/internal/llm"
	"github.com/campgen/campgen/internal/pipeline"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("campgen v%s\n", version)
	case "init":
		path := config.Path()
		if err := config.CreateFromExample(path); err != nil {
			slog.Error("fatal", "error", err)
			os.Exit(1)
		}
		fmt.Printf("config written to %s\n", path)
	case "serve":
		if err := serve(); err != nil {
			slog.Error("fatal", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Campgen - AI campaign generation gateway")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  campgen serve     Start the gateway server")
	fmt.Println("  campgen init      Write an example config file")
	fmt.Println("  campgen version   Show version info")
}

func serve() error {
	// Setup structured logging
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Load config
	cfgPath := config.ResolveConfigPath("")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", cfgPath, "error", err)
		cfg = config.DefaultConfig()
	}
	config.Set(cfg)

	slog.Info("campgen starting", "version", version, "provider", cfg.Generator.Provider, "model", cfg.Generator.Model)

	// Build the generation client from the configured provider
	providerName, provCfg, err := config.ResolveProvider(cfg)
	if err != nil {
		return err
	}
	client := llm.FromProvider(provCfg.ClientType(providerName), provCfg.APIKey, provCfg.BaseURL)

	gen := &pipeline.Generator{
		Client:      client,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
	}

	// Seed the entity registry from config
	registry := catalog.NewRegistry()
	for _, t := range cfg.Catalog.Preconnect.DataSources {
		if kind, ok := catalog.LookupDataSourceKind(catalog.DataSourceType(t)); ok {
			registry.ConnectDataSource(catalog.NewDataSource(kind))
		} else {
			slog.Warn("unknown preconnect data source type", "type", t)
		}
	}
	for _, t := range cfg.Catalog.Preconnect.Channels {
		if kind, ok := catalog.LookupChannelKind(catalog.ChannelType(t)); ok {
			registry.AddChannel(catalog.NewChannel(kind))
		} else {
			slog.Warn("unknown preconnect channel type", "type", t)
		}
	}

	// Start the lastSync refresher
	syncer := catalog.NewSyncer(registry)
	if err := syncer.Start(cfg.Catalog.SyncSchedule); err != nil {
		return fmt.Errorf("start catalog syncer: %w", err)
	}
	defer syncer.Stop()

	// Start gateway with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go config.Watch(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutdown signal received", "signal", sig)
		cancel()
	}()

	srv := gateway.NewServer(cfg, registry, gen)
	return srv.Start(ctx)
}
