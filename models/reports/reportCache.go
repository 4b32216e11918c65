package reports

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/ryus3/friendly-byte-shout-02/models"
)

func summaryCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_SUMMARY_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func summaryCacheTTL() time.Duration {
	// Env: SUMMARY_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("SUMMARY_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

// summaryCacheKey is stable per window so identical requests share one entry.
// The model hooks invalidate FinancialSummary:* on any record change.
func summaryCacheKey(dateRange *DateRange) string {
	from, to := "all", "all"
	if dateRange != nil && dateRange.From != nil {
		from = dateRange.From.UTC().Format(time.RFC3339Nano)
	}
	if dateRange != nil && dateRange.To != nil {
		to = dateRange.To.UTC().Format(time.RFC3339Nano)
	}
	return "FinancialSummary:" + from + ":" + to
}

// GetFinancialSummary is the server-side call site: read the six collections,
// run the engine, respond. When the summary cache is enabled, a fresh entry
// short-circuits the fetch, and a best-effort Redis lock keeps concurrent
// cold-cache requests from recomputing in parallel. Redis being down only
// disables the caching, never the computation.
func GetFinancialSummary(ctx context.Context, dateRange *DateRange) (*FinancialSummary, error) {
	if !summaryCacheEnabled() {
		return fetchAndCalculate(ctx, dateRange)
	}

	key := summaryCacheKey(dateRange)
	var cached FinancialSummary
	if found, err := config.GetRedisObject(key, &cached); err == nil && found {
		return &cached, nil
	}

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "lock:"+key, 15*time.Second, nil)
		if err == nil {
			defer lock.Release(ctx)
			// Another request may have filled the cache while we waited.
			if found, err := config.GetRedisObject(key, &cached); err == nil && found {
				return &cached, nil
			}
		} else if err != redislock.ErrNotObtained {
			config.LogError(config.GetLogger(), "reportCache", "GetFinancialSummary", "obtain summary lock", key, err)
		}
	}

	summary, err := fetchAndCalculate(ctx, dateRange)
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(key, summary, summaryCacheTTL()); err != nil {
		config.LogError(config.GetLogger(), "reportCache", "GetFinancialSummary", "store summary cache", key, err)
	}
	return summary, nil
}

func fetchAndCalculate(ctx context.Context, dateRange *DateRange) (*FinancialSummary, error) {
	snapshot, err := models.FetchFinancialSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return CalculateFinancialSummary(snapshot, dateRange), nil
}
