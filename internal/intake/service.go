// Package intake implements the address intake service: validate a raw
// submission, normalize it, check the allowlist, and record confirmation
// exactly once.
package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/fystack/address-intake/pkg/address"
	"github.com/fystack/address-intake/pkg/allowlist"
	"github.com/fystack/address-intake/pkg/store/confirmedstore"
)

var (
	// ErrInvalidFormat rejects submissions that are not well-formed addresses.
	ErrInvalidFormat = errors.New("invalid wallet address format")
	// ErrNotAllowlisted rejects well-formed addresses absent from the allowlist.
	ErrNotAllowlisted = errors.New("address is not allowlisted")
)

type Result struct {
	Address  string
	Verified bool
	Inserted bool
}

type Stats struct {
	AllowlistCount int64
	ConfirmedCount int64
}

type Service struct {
	allowlist allowlist.Allowlist
	confirmed confirmedstore.Store
}

func NewService(list allowlist.Allowlist, confirmed confirmedstore.Store) *Service {
	return &Service{
		allowlist: list,
		confirmed: confirmed,
	}
}

// Submit runs the intake contract on a raw submission. Each call is
// independent and stateless; the only cross-request concern, two
// simultaneous submissions of the same address, is resolved by the store's
// insert-if-absent semantics.
func (s *Service) Submit(ctx context.Context, raw string) (Result, error) {
	if err := address.Validate(raw); err != nil {
		return Result{}, ErrInvalidFormat
	}

	normalized := address.Normalize(raw)

	ok, err := s.allowlist.Contains(ctx, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("allowlist lookup: %w", err)
	}
	if !ok {
		return Result{Address: normalized}, ErrNotAllowlisted
	}

	inserted, err := s.confirmed.Insert(ctx, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("record confirmation: %w", err)
	}

	return Result{
		Address:  normalized,
		Verified: true,
		Inserted: inserted,
	}, nil
}

// Stats reports allowlist and confirmed set sizes for the diagnostics endpoint.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	allowed, err := s.allowlist.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("allowlist count: %w", err)
	}
	confirmed, err := s.confirmed.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("confirmed count: %w", err)
	}
	return Stats{
		AllowlistCount: allowed,
		ConfirmedCount: confirmed,
	}, nil
}
