package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/gcontacts/internal/cache"
	"github.com/iudanet/gcontacts/internal/client/api"
	"github.com/iudanet/gcontacts/internal/client/cli"
	"github.com/iudanet/gcontacts/internal/client/config"
	"github.com/iudanet/gcontacts/internal/client/iocli"
	"github.com/iudanet/gcontacts/internal/client/storage"
	"github.com/iudanet/gcontacts/internal/client/storage/boltdb"
	"github.com/iudanet/gcontacts/internal/client/storage/memory"
	"github.com/iudanet/gcontacts/internal/client/storage/sqlite"
	"github.com/iudanet/gcontacts/internal/client/sync"
	"github.com/iudanet/gcontacts/internal/crypto"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	stdio := iocli.NewStdio()

	cfg, args, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cli.PrintUsage(stdio)
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Show version and exit if requested
	if cfg.ShowVersion {
		printVersion()
		return 0
	}

	// Получаем команду
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Открываем локальное хранилище
	store, err := openStorage(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	deriver, err := crypto.NewKeyDeriver(crypto.Scheme(cfg.KDF))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger.Debug("Using key derivation scheme", "kdf", deriver.Scheme())

	contactsCache := cache.New(store, deriver, cache.WithLogger(logger))

	// Создаем API клиент
	apiClient := api.NewClient(cfg.BaseURL, cfg.APIKey, logger,
		api.WithPaging(cfg.PageSize, cfg.MaxPages),
		api.WithTimeout(cfg.HTTPTimeout))

	syncService := sync.NewService(apiClient, contactsCache, sync.Config{
		Threshold:    cfg.SyncThreshold,
		FetchTimeout: cfg.FetchTimeout,
	}, logger)

	c := cli.New(stdio, syncService, store, cli.Tokens{
		FromArgs: cfg.Token,
		FromFile: cfg.TokenFile,
		IDToken:  cfg.IDToken,
	})

	// Выполняем команду
	if err := c.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.New(ctx, cfg.DBPath, cfg.QuotaBytes)
	case config.BackendMemory:
		return memory.New(cfg.QuotaBytes), nil
	case config.BackendBolt:
		return boltdb.New(ctx, cfg.DBPath, cfg.QuotaBytes)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func printVersion() {
	fmt.Printf("gcontacts\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
