package allowlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fystack/address-intake/pkg/common/logger"
	"github.com/fystack/address-intake/pkg/infra"
	"github.com/fystack/address-intake/pkg/model"
	"github.com/fystack/address-intake/pkg/repository"
	"github.com/samber/lo"
)

// redisFilter keeps the bloom filter in Redis via the RedisBloom module's
// BF.* commands so multiple instances share one filter.
type redisFilter struct {
	mu          sync.RWMutex
	redisClient infra.RedisClient
	repo        repository.Repository[model.AllowlistEntry]
	batchSize   int
	key         string
	ctx         context.Context
	errorRate   float64
	capacity    int
}

type RedisFilterConfig struct {
	RedisClient infra.RedisClient
	Repo        repository.Repository[model.AllowlistEntry]
	BatchSize   int
	KeyPrefix   string
	ErrorRate   float64
	Capacity    int
}

func NewRedisFilter(cfg RedisFilterConfig) Filter {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "allowlist_bloom"
	}
	errorRate := cfg.ErrorRate
	if errorRate <= 0 {
		errorRate = 0.01
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 10000
	}

	return &redisFilter{
		redisClient: cfg.RedisClient,
		repo:        cfg.Repo,
		batchSize:   cfg.BatchSize,
		key:         fmt.Sprintf("%s:allowlist", keyPrefix),
		ctx:         context.Background(),
		errorRate:   errorRate,
		capacity:    capacity,
	}
}

func (rf *redisFilter) Initialize(ctx context.Context) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	client := rf.redisClient.GetClient()

	// Drop any stale filter before reserving a fresh one
	exists, err := client.Do(ctx, "EXISTS", rf.key).Int()
	if err != nil {
		return fmt.Errorf("failed to check existence of key %s: %w", rf.key, err)
	}
	if exists == 1 {
		_ = rf.redisClient.Del(rf.key)
	}

	_, err = client.Do(ctx, "BF.RESERVE", rf.key, rf.errorRate, rf.capacity).Result()
	if err != nil {
		return fmt.Errorf("failed to create bloom filter: %w", err)
	}

	if rf.repo == nil {
		return errors.New("allowlist repository was not provided in config")
	}

	offset := 0
	limit := rf.batchSize
	if limit <= 0 {
		limit = 1000
	}
	total := 0

	for {
		entries, err := rf.repo.Find(ctx, repository.FindOptions{
			Select: []string{"address"},
			Order:  repository.Order{"id": repository.OrderTypeAsc},
			Limit:  uint(limit),
			Offset: uint(offset),
		})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			break
		}

		addresses := lo.Map(entries, func(e *model.AllowlistEntry, _ int) string {
			return e.Address
		})

		if err := rf.addBatchToBloom(ctx, addresses); err != nil {
			return err
		}

		offset += limit
		total += len(addresses)
	}

	logger.Info("Redis bloom filter initialized", "total", total)
	return nil
}

func (rf *redisFilter) addBatchToBloom(ctx context.Context, addresses []string) error {
	client := rf.redisClient.GetClient()
	args := make([]any, 0, len(addresses)+2)
	args = append(args, "BF.MADD", rf.key)
	for _, addr := range addresses {
		args = append(args, addr)
	}
	_, err := client.Do(ctx, args...).Result()
	return err
}

func (rf *redisFilter) Add(address string) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	client := rf.redisClient.GetClient()
	_, err := client.Do(rf.ctx, "BF.ADD", rf.key, address).Result()
	if err != nil {
		logger.Error("Failed to add address to redis bloom filter", "error", err)
	}
}

func (rf *redisFilter) AddBatch(addresses []string) {
	if len(addresses) == 0 {
		return
	}
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if err := rf.addBatchToBloom(rf.ctx, addresses); err != nil {
		logger.Error("Failed to add batch to redis bloom filter", "error", err)
	}
}

func (rf *redisFilter) Contains(address string) (bool, error) {
	rf.mu.RLock()
	defer rf.mu.RUnlock()

	client := rf.redisClient.GetClient()
	result, err := client.Do(rf.ctx, "BF.EXISTS", rf.key, address).Bool()
	if err != nil {
		// An unreachable filter must not read as an authoritative miss.
		return false, fmt.Errorf("redis bloom filter check: %w", err)
	}
	return result, nil
}

func (rf *redisFilter) Stats() map[string]any {
	logger.Info("Redis bloom filter stats not supported yet")
	return nil
}
