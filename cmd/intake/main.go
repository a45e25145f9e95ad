package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/fystack/address-intake/internal/intake"
	"github.com/fystack/address-intake/pkg/allowlist"
	"github.com/fystack/address-intake/pkg/common/config"
	"github.com/fystack/address-intake/pkg/common/enum"
	"github.com/fystack/address-intake/pkg/common/logger"
	"github.com/fystack/address-intake/pkg/infra"
	"github.com/fystack/address-intake/pkg/kvstore"
	"github.com/fystack/address-intake/pkg/model"
	"github.com/fystack/address-intake/pkg/retry"
	"github.com/fystack/address-intake/pkg/store/confirmedstore"
	"gorm.io/gorm"
)

type CLI struct {
	Serve  ServeCmd  `cmd:"" help:"Run the address intake HTTP service."`
	Import ImportCmd `cmd:"" help:"Import a newline-delimited address file into the allowlist table."`
	KVLoad KVLoadCmd `cmd:"" name:"kv-load" help:"Load allowlist addresses from DB into the KV store."`
}

type ServeCmd struct {
	ConfigPath string `help:"Path to config file." default:"configs/config.yaml" name:"config"`
	Debug      bool   `help:"Enable debug logs."                                 name:"debug"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("intake"),
		kong.Description("Wallet address intake service & allowlist tooling."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		os.Exit(1)
	}
}

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger.Init(&logger.Options{Level: level, TimeFormat: time.RFC3339})
}

func (c *ServeCmd) Run() error {
	initLogger(c.Debug)

	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		logger.Fatal("Load config failed", "err", err)
	}

	ctx := context.Background()

	db := openDatabase(cfg, false)
	kv := openKVStore(cfg)
	redisClient := openRedis(cfg)

	list, err := allowlist.New(cfg.Allowlist, db, kv, redisClient)
	if err != nil {
		logger.Fatal("Create allowlist failed", "err", err)
	}
	if err := allowlist.Initialize(ctx, list); err != nil {
		logger.Fatal("Initialize allowlist filter failed", "err", err)
	}

	store, err := confirmedstore.NewFromConfig(cfg.Store, db, kv)
	if err != nil {
		logger.Fatal("Create confirmed store failed", "err", err)
	}

	service := intake.NewService(list, store)
	server := startHTTPServer(cfg.Port, cfg.Version, service)

	logger.Info("Intake service is running... Press Ctrl+C to stop")
	waitForShutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "err", err)
	}

	if err := store.Close(); err != nil {
		logger.Error("Close confirmed store failed", "err", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("Intake service stopped")
	return nil
}

// openDatabase connects when a DSN is configured; required forces a
// connection (import and kv-load cannot run without one). Startup is the
// only place connections are retried; the request path never is.
func openDatabase(cfg *config.Config, required bool) *gorm.DB {
	if cfg.Database.URL == "" {
		if required {
			logger.Fatal("Database URL is required for this command")
		}
		return nil
	}

	var db *gorm.DB
	err := retry.Constant(func() error {
		var connErr error
		db, connErr = infra.NewDBConnection(cfg.Database.URL, cfg.Environment)
		return connErr
	}, 2*time.Second, 5)
	if err != nil {
		logger.Fatal("Create db connection failed", "err", err)
	}

	if err := db.AutoMigrate(&model.AllowlistEntry{}, &model.ConfirmedAddress{}); err != nil {
		logger.Fatal("Migrate schema failed", "err", err)
	}
	return db
}

func openKVStore(cfg *config.Config) infra.KVStore {
	needed := cfg.Store.Backend == enum.StoreBackendKV ||
		cfg.Allowlist.Source == enum.AllowlistSourceKV
	if !needed {
		return nil
	}

	kv, err := kvstore.NewFromConfig(cfg.KVStore)
	if err != nil {
		logger.Fatal("Create KV store failed", "err", err)
	}
	return kv
}

func openRedis(cfg *config.Config) infra.RedisClient {
	if cfg.Allowlist.Bloom.Backend != enum.BloomBackendRedis {
		return nil
	}

	client, err := infra.NewRedisClient(cfg.Redis.URL, cfg.Redis.Password, cfg.Environment)
	if err != nil {
		logger.Fatal("Create redis client failed", "err", err)
	}
	return client
}

func waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
