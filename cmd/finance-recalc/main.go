// finance-recalc recomputes the unified financial summary once and prints it
// as JSON. Useful for verifying that a deploy still produces the same numbers
// the live watcher shows.
//
// Usage:
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//     go run ./cmd/finance-recalc [-from 2026-01-01T00:00:00Z] [-to 2026-01-31T23:59:59Z]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/ryus3/friendly-byte-shout-02/models"
	"github.com/ryus3/friendly-byte-shout-02/models/reports"
)

func main() {
	from := flag.String("from", "", "window start (RFC3339, optional)")
	to := flag.String("to", "", "window end (RFC3339, optional)")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	snapshot, err := models.FetchFinancialSnapshot(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch records: %v\n", err)
		os.Exit(1)
	}

	summary := reports.CalculateFinancialSummary(snapshot, reports.ParseDateRange(*from, *to))

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal summary: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
