package allowlist

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/fystack/address-intake/pkg/address"
	"github.com/fystack/address-intake/pkg/common/logger"
)

type staticAllowlist struct {
	addresses map[string]struct{}
}

// NewStatic builds an in-memory allowlist from already-normalized addresses.
func NewStatic(addresses []string) Allowlist {
	set := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		set[address.Normalize(addr)] = struct{}{}
	}
	return &staticAllowlist{addresses: set}
}

// LoadStaticFile reads a newline-delimited address file into an in-memory
// allowlist. Blank lines and lines starting with # are ignored; lines that
// fail format validation are skipped with a warning.
func LoadStaticFile(path string) (Allowlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set := make(map[string]struct{})
	skipped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !address.Valid(line) {
			logger.Warn("Skipping invalid allowlist entry", "line", line)
			skipped++
			continue
		}
		set[address.Normalize(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	logger.Info("Static allowlist loaded", "path", path, "entries", len(set), "skipped", skipped)
	return &staticAllowlist{addresses: set}, nil
}

func (a *staticAllowlist) Contains(ctx context.Context, addr string) (bool, error) {
	_, ok := a.addresses[addr]
	return ok, nil
}

func (a *staticAllowlist) Count(ctx context.Context) (int64, error) {
	return int64(len(a.addresses)), nil
}
