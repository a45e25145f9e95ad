package main

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/fystack/address-intake/pkg/address"
	"github.com/fystack/address-intake/pkg/common/config"
	"github.com/fystack/address-intake/pkg/common/logger"
	"github.com/fystack/address-intake/pkg/model"
	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

type ImportCmd struct {
	File       string `arg:"" help:"Newline-delimited address file."`
	ConfigPath string `help:"Path to config file."     default:"configs/config.yaml" name:"config"`
	BatchSize  int    `help:"DB batch size per insert." default:"500"                name:"batch"`
	Debug      bool   `help:"Enable debug logs."                                     name:"debug"`
}

func (c *ImportCmd) Run() error {
	initLogger(c.Debug)

	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		logger.Fatal("Load config failed", "err", err)
	}

	f, err := os.Open(c.File)
	if err != nil {
		logger.Fatal("Open address file failed", "file", c.File, "err", err)
	}
	addresses, skipped, err := parseAddresses(f)
	f.Close()
	if err != nil {
		logger.Fatal("Parse address file failed", "err", err)
	}
	logger.Info("Parsed address file", "file", c.File, "valid", len(addresses), "skipped", skipped)

	// Keep a normalized CSV next to the input for auditing the batch.
	csvPath := c.File + ".csv"
	out, err := os.Create(csvPath)
	if err != nil {
		logger.Fatal("Create CSV failed", "path", csvPath, "err", err)
	}
	if err := writeAddressCSV(out, addresses); err != nil {
		out.Close()
		logger.Fatal("Write CSV failed", "path", csvPath, "err", err)
	}
	out.Close()
	logger.Info("Wrote normalized CSV", "path", csvPath)

	db := openDatabase(cfg, true)

	batch := c.BatchSize
	if batch <= 0 {
		batch = 500
	}

	total := 0
	for _, chunk := range lo.Chunk(addresses, batch) {
		entries := lo.Map(chunk, func(addr string, _ int) model.AllowlistEntry {
			return model.AllowlistEntry{Address: addr}
		})
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoNothing: true,
		}).Create(&entries)
		if res.Error != nil {
			logger.Fatal("Bulk insert failed", "err", res.Error)
		}
		total += int(res.RowsAffected)
		logger.Info("Inserted batch", "size", len(entries), "new", res.RowsAffected)
	}

	logger.Info("Import complete", "total_new", total, "total_parsed", len(addresses))
	return nil
}

// parseAddresses reads newline-delimited addresses, validates each line and
// dedupes on the normalized form, preserving first-seen order. Blank lines
// and # comments are ignored; invalid lines are counted and skipped.
func parseAddresses(r io.Reader) ([]string, int, error) {
	seen := make(map[string]struct{})
	var addresses []string
	skipped := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !address.Valid(line) {
			skipped++
			continue
		}
		normalized := address.Normalize(line)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		addresses = append(addresses, normalized)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return addresses, skipped, nil
}

func writeAddressCSV(w io.Writer, addresses []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"address"}); err != nil {
		return err
	}
	for _, addr := range addresses {
		if err := cw.Write([]string{addr}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
