package allowlist

import (
	"context"
	"math"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fystack/address-intake/pkg/common/logger"
	"github.com/fystack/address-intake/pkg/model"
	"github.com/fystack/address-intake/pkg/repository"
	"github.com/samber/lo"
)

// Filter fronts the allowlist store. A negative answer is authoritative;
// a positive answer may be a false positive and must fall through to the
// backing store. A filter that cannot answer reports the error so the
// caller can surface an infrastructure failure instead of a false miss.
type Filter interface {
	// Initialize fully resets the filter from database state.
	Initialize(ctx context.Context) error

	// Add inserts a single address into the filter.
	Add(address string)

	// AddBatch inserts multiple addresses into the filter.
	AddBatch(addresses []string)

	// Contains checks if a given address may exist in the filter.
	Contains(address string) (bool, error)

	// Stats returns filter metadata for diagnostics.
	Stats() map[string]any
}

// InMemoryFilterConfig holds dependencies and configuration for the in-memory filter.
type InMemoryFilterConfig struct {
	Repo              repository.Repository[model.AllowlistEntry] // Repository for loading addresses from DB
	ExpectedItems     uint                                        // Estimated number of allowlisted addresses
	FalsePositiveRate float64                                     // Desired false positive rate
	BatchSize         int                                         // Batch size for paginated DB fetches
}

type inMemoryFilter struct {
	mu           sync.RWMutex
	filter       *bloom.BloomFilter
	addressCount uint
	config       InMemoryFilterConfig
}

// NewInMemoryFilter creates a bloom filter sized from the provided config.
func NewInMemoryFilter(cfg InMemoryFilterConfig) Filter {
	m, k := bloom.EstimateParameters(cfg.ExpectedItems, cfg.FalsePositiveRate)
	return &inMemoryFilter{
		filter: bloom.New(m, k),
		config: cfg,
	}
}

func (f *inMemoryFilter) Initialize(ctx context.Context) error {
	f.mu.Lock()
	f.filter.ClearAll()
	f.addressCount = 0
	f.mu.Unlock()

	offset := 0
	limit := f.config.BatchSize
	if limit <= 0 {
		limit = 1000
	}
	total := 0

	for {
		entries, err := f.config.Repo.Find(ctx, repository.FindOptions{
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
		f.AddBatch(addresses)

		offset += limit
		total += len(addresses)
	}

	logger.Info("In-memory bloom filter initialized", "total", total)
	return nil
}

func (f *inMemoryFilter) Add(address string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.Add([]byte(address))
	f.addressCount++
}

func (f *inMemoryFilter) AddBatch(addresses []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, address := range addresses {
		f.filter.Add([]byte(address))
		f.addressCount++
	}
}

func (f *inMemoryFilter) Contains(address string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.Test([]byte(address)), nil
}

func (f *inMemoryFilter) Stats() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()

	fillRatio := f.approximatedFillRatio()
	return map[string]any{
		"addressCount":               f.addressCount,
		"bitsCount":                  f.filter.Cap(),
		"hashFunctions":              f.filter.K(),
		"approximateFillRatio":       fillRatio,
		"estimatedFalsePositiveRate": f.estimateFalsePositiveRate(),
	}
}

func (f *inMemoryFilter) approximatedFillRatio() float64 {
	bitset := f.filter.BitSet()
	totalBits := bitset.Len()
	if totalBits == 0 {
		return 0
	}
	return float64(bitset.Count()) / float64(totalBits)
}

func (f *inMemoryFilter) estimateFalsePositiveRate() float64 {
	n := float64(f.addressCount)
	m := float64(f.filter.Cap())
	k := float64(f.filter.K())
	if m == 0 || k == 0 {
		return 0.0
	}
	return math.Pow(1-math.Exp(-k*n/m), k)
}
