package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"smartpark/ledger-service/internal/config"
	"smartpark/ledger-service/internal/ledger"
	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store/backend"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg := config.Load()
	var branchID, from, to, category, format string

	flagSet := pflag.NewFlagSet("ledger-report", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "snapshot store driver: sqlite, postgres or memory")
	flagSet.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "path to the SQLite snapshot database")
	flagSet.StringVar(&cfg.DatabaseURL, "dsn", cfg.DatabaseURL, "PostgreSQL connection string")
	flagSet.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "YAML seed file used when the store is empty")
	flagSet.StringVar(&branchID, "branch", models.AggregateBranchID, "branch id, or \"all\" for every branch")
	flagSet.StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	flagSet.StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	flagSet.StringVar(&category, "category", "", "only include this vehicle category")
	flagSet.StringVar(&format, "format", "summary", "output format: summary or csv")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}

	filter, err := buildFilter(from, to, category)
	if err != nil {
		return err
	}
	if format != "summary" && format != "csv" {
		return fmt.Errorf("unknown format %q", format)
	}

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	ctx := context.Background()
	st, err := backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	l, err := ledger.Open(ctx, st, seed, ledger.Options{ActivityLogLimit: cfg.ActivityLogLimit})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	scope := ledger.AggregateScope()
	if branchID != models.AggregateBranchID {
		if _, ok := l.Branch(branchID); !ok {
			return fmt.Errorf("unknown branch %q", branchID)
		}
		scope = ledger.BranchScope(branchID)
	}

	txns := l.Transactions(scope, filter)
	if format == "csv" {
		return ledger.WriteCSV(stdout, txns)
	}
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ledger.Summarize(txns))
}

func buildFilter(from, to, category string) (ledger.TransactionFilter, error) {
	var filter ledger.TransactionFilter
	for _, field := range []struct {
		name   string
		raw    string
		target *time.Time
	}{
		{name: "from", raw: from, target: &filter.From},
		{name: "to", raw: to, target: &filter.To},
	} {
		raw := strings.TrimSpace(field.raw)
		if raw == "" {
			continue
		}
		day, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return ledger.TransactionFilter{}, fmt.Errorf("--%s must be YYYY-MM-DD", field.name)
		}
		*field.target = day
	}
	filter.Category = strings.TrimSpace(category)
	if filter.Category != "" && !models.ValidCategory(filter.Category) {
		return ledger.TransactionFilter{}, fmt.Errorf("unknown category %q", filter.Category)
	}
	return filter, nil
}
