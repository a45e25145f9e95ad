package main

import (
	"context"

	"github.com/fystack/address-intake/pkg/common/config"
	"github.com/fystack/address-intake/pkg/common/constant"
	"github.com/fystack/address-intake/pkg/common/logger"
	"github.com/fystack/address-intake/pkg/kvstore"
	"github.com/fystack/address-intake/pkg/model"
	"github.com/fystack/address-intake/pkg/repository"
)

type KVLoadCmd struct {
	ConfigPath string `help:"Path to config file."    default:"configs/config.yaml" name:"config"`
	BatchSize  int    `help:"DB batch size per page." default:"1000"                name:"batch"`
	Debug      bool   `help:"Enable debug logs."                                    name:"debug"`
}

// Run mirrors the allowlist table into the configured KV store under
// allowlist/<address> keys so the kv allowlist source can answer
// membership without the database.
func (c *KVLoadCmd) Run() error {
	initLogger(c.Debug)
	ctx := context.Background()

	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		logger.Fatal("Load config failed", "err", err)
	}

	db := openDatabase(cfg, true)

	store, err := kvstore.NewFromConfig(cfg.KVStore)
	if err != nil {
		logger.Fatal("Create KV store failed", "err", err)
	}
	defer store.Close()

	repo := repository.NewRepository[model.AllowlistEntry](db)
	batch := c.BatchSize
	if batch <= 0 {
		batch = 1000
	}

	var offset int
	totalWritten := 0
	for {
		rows, err := repo.Find(ctx, repository.FindOptions{
			Select: []string{"address"},
			Order:  repository.Order{"id": repository.OrderTypeAsc},
			Limit:  uint(batch),
			Offset: uint(offset),
		})
		if err != nil {
			logger.Fatal("DB query failed", "err", err)
		}
		if len(rows) == 0 {
			break
		}

		for _, entry := range rows {
			key := constant.AllowlistKeyPrefix + "/" + entry.Address
			if err := store.Set(key, "ok"); err != nil {
				logger.Fatal("KV set failed", "key", key, "err", err)
			}
		}
		offset += len(rows)
		totalWritten += len(rows)
		logger.Info("Backfilled batch", "written", len(rows), "offset", offset)
	}

	logger.Info("Backfill complete", "total_written", totalWritten)
	return nil
}
