package allowlist

import (
	"context"
	"fmt"

	"github.com/fystack/address-intake/pkg/model"
	"github.com/fystack/address-intake/pkg/repository"
)

type dbAllowlist struct {
	repo   repository.Repository[model.AllowlistEntry]
	filter Filter
}

// NewDBAllowlist backs membership with the allowlist_entries table,
// optionally fronted by a bloom filter. filter may be nil.
func NewDBAllowlist(repo repository.Repository[model.AllowlistEntry], filter Filter) Allowlist {
	return &dbAllowlist{repo: repo, filter: filter}
}

func (a *dbAllowlist) Contains(ctx context.Context, address string) (bool, error) {
	// A bloom "no" is authoritative; a "yes" may be a false positive,
	// so fall through to the table.
	if a.filter != nil {
		maybe, err := a.filter.Contains(address)
		if err != nil {
			return false, fmt.Errorf("bloom filter check: %w", err)
		}
		if !maybe {
			return false, nil
		}
	}

	count, err := a.repo.Count(ctx, repository.FindOptions{
		Where: repository.WhereType{"address": address},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *dbAllowlist) Count(ctx context.Context) (int64, error) {
	return a.repo.Count(ctx, repository.FindOptions{})
}
