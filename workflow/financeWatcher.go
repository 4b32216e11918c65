package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/ryus3/friendly-byte-shout-02/models"
	"github.com/ryus3/friendly-byte-shout-02/models/reports"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// FinanceWatcher is the interactive call site of the financial engine: it
// keeps a current FinancialSummary in memory and recomputes it on every
// change notification for the watched collections, plus on manual refresh.
//
// Semantics carried over from the behavior it replaces:
//   - every notification triggers a full refetch + recompute, no coalescing;
//   - overlapping refreshes race and the last writer wins;
//   - a failed refresh flips state to error but keeps the previous summary;
//   - product changes do NOT trigger a refresh (see WatchedCollections).

type WatcherState string

const (
	WatcherStateLoading WatcherState = "loading"
	WatcherStateReady   WatcherState = "ready"
	WatcherStateError   WatcherState = "error"
)

// WatchedCollections is the realtime subscription set. Products are
// deliberately absent: inventory edits historically never retriggered the
// interactive aggregate, and that asymmetry is preserved until a correctness
// review says otherwise.
var WatchedCollections = []string{
	models.CollectionOrders,
	models.CollectionProfits,
	models.CollectionExpenses,
	models.CollectionPurchases,
	models.CollectionSettings,
}

// SnapshotFetcher abstracts the six-way record read so tests can substitute
// in-memory snapshots.
type SnapshotFetcher func(ctx context.Context) (*models.FinancialSnapshot, error)

type WatcherStatus struct {
	State       WatcherState              `json:"state"`
	Error       string                    `json:"error,omitempty"`
	RefreshedAt *time.Time                `json:"refreshedAt,omitempty"`
	Summary     *reports.FinancialSummary `json:"summary,omitempty"`
}

type FinanceWatcher struct {
	fetch  SnapshotFetcher
	logger *logrus.Logger
	tracer trace.Tracer

	mu          sync.RWMutex
	dateRange   *reports.DateRange
	state       WatcherState
	lastErr     string
	summary     *reports.FinancialSummary
	refreshedAt time.Time
}

func NewFinanceWatcher(fetch SnapshotFetcher, logger *logrus.Logger) *FinanceWatcher {
	if fetch == nil {
		fetch = models.FetchFinancialSnapshot
	}
	return &FinanceWatcher{
		fetch:  fetch,
		logger: logger,
		tracer: otel.Tracer("finance-watcher"),
		state:  WatcherStateLoading,
	}
}

// SetDateRange switches the reporting window and recomputes under it.
func (w *FinanceWatcher) SetDateRange(ctx context.Context, dateRange *reports.DateRange) {
	w.mu.Lock()
	w.dateRange = dateRange
	w.mu.Unlock()
	w.Refresh(ctx)
}

// Refresh refetches the snapshot and recomputes the summary synchronously.
// Concurrent calls are allowed; whoever finishes last owns the state.
func (w *FinanceWatcher) Refresh(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "FinanceWatcher.Refresh")
	defer span.End()

	w.mu.Lock()
	w.state = WatcherStateLoading
	dateRange := w.dateRange
	w.mu.Unlock()

	snapshot, err := w.fetch(ctx)
	if err != nil {
		w.mu.Lock()
		w.state = WatcherStateError
		w.lastErr = err.Error()
		// Previous summary is kept: no partial aggregate is ever published.
		w.mu.Unlock()
		if w.logger != nil {
			config.LogError(w.logger, "financeWatcher", "Refresh", "fetch snapshot", nil, err)
		}
		return
	}

	summary := reports.CalculateFinancialSummary(snapshot, dateRange)
	if summary.SystemProfitFromEmployees.IsNegative() && w.logger != nil {
		w.logger.WithFields(logrus.Fields{
			"module":                    "financeWatcher",
			"systemProfitFromEmployees": summary.SystemProfitFromEmployees.String(),
		}).Warn("employee dues exceed computed employee profit; upstream data is inconsistent")
	}

	w.mu.Lock()
	w.state = WatcherStateReady
	w.lastErr = ""
	w.summary = summary
	w.refreshedAt = time.Now().UTC()
	w.mu.Unlock()
}

// Current returns the latest published status. The summary pointer is shared;
// consumers must treat it as read-only.
func (w *FinanceWatcher) Current() WatcherStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	status := WatcherStatus{
		State:   w.state,
		Error:   w.lastErr,
		Summary: w.summary,
	}
	if !w.refreshedAt.IsZero() {
		t := w.refreshedAt
		status.RefreshedAt = &t
	}
	return status
}

// Run performs the initial load, then refreshes on every change notification
// until the context is cancelled. The subscription is released on teardown.
func (w *FinanceWatcher) Run(ctx context.Context) {
	w.Refresh(ctx)

	pubsub := config.SubscribeChanges(ctx, WatchedCollections...)
	if pubsub == nil {
		if w.logger != nil {
			w.logger.WithFields(logrus.Fields{
				"module": "financeWatcher",
			}).Warn("redis not ready; finance watcher runs without realtime refresh")
		}
		<-ctx.Done()
		return
	}
	defer pubsub.Close()

	channel := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-channel:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.WithFields(logrus.Fields{
					"module":  "financeWatcher",
					"channel": msg.Channel,
				}).Debug("change notification; recomputing financial summary")
			}
			// One full recompute per notification, intentionally uncoalesced.
			go w.Refresh(ctx)
		}
	}
}
