// Package pipeline orchestrates one promotion run: ingest new accounts,
// promote matured ones out of the tracking store, distribute them across
// destination stores by ratio, then record and report the results.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/TurtIeSocks/account-manager/internal/distribute"
	"github.com/TurtIeSocks/account-manager/internal/domain/model"
	"github.com/TurtIeSocks/account-manager/internal/metrics"
	"github.com/TurtIeSocks/account-manager/internal/source"
	"github.com/TurtIeSocks/account-manager/internal/store"
	"github.com/TurtIeSocks/account-manager/internal/tracing"
)

// Destination pairs a destination store with its configured share of the
// matured pool. Order matters: ratios apply to the pool as it stands after
// earlier destinations took their cut, and the last destination absorbs
// whatever remains.
type Destination struct {
	Name  string
	Ratio float64
	Repo  store.AccountRepository
}

// StatsRecorder persists the run summary history.
type StatsRecorder interface {
	Append(rec model.RunStats) error
}

// Notifier delivers the run summary to an external webhook.
type Notifier interface {
	Send(ctx context.Context, stats model.RunStats, destinations []string, matured map[string]int64) error
}

// ReloadTrigger fires downstream reload URLs when inside the daily window.
type ReloadTrigger interface {
	Trigger(ctx context.Context) int
}

type Runner struct {
	source       source.Reader
	tracking     store.AccountRepository
	destinations []Destination
	stats        StatsRecorder
	notifier     Notifier
	reloader     ReloadTrigger
	logger       *slog.Logger
	now          func() time.Time
}

func New(
	src source.Reader,
	tracking store.AccountRepository,
	destinations []Destination,
	stats StatsRecorder,
	notifier Notifier,
	reloader ReloadTrigger,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		source:       src,
		tracking:     tracking,
		destinations: destinations,
		stats:        stats,
		notifier:     notifier,
		reloader:     reloader,
		logger:       logger.With("component", "pipeline"),
		now:          time.Now,
	}
}

// Run executes one pipeline pass and returns the recorded stats.
//
// A returned error means the run must abort with a failing status:
// source/ledger IO, tracking-store operations, and the stats write are
// fatal. Destination insert/count failures are isolated per destination,
// and webhook/reload failures are logged and dropped.
func (r *Runner) Run(ctx context.Context) (model.RunStats, error) {
	tracer := tracing.Tracer("pipeline")
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	rec := model.RunStats{
		RunID:     runID,
		Timestamp: r.now().UnixMilli(),
	}

	ctx, span := tracer.Start(ctx, "run")
	defer span.End()

	sctx, sourceSpan := tracer.Start(ctx, "source")
	res, err := r.source.Read(sctx)
	sourceSpan.End()
	if err != nil {
		return rec, err
	}
	if len(res.NewAccounts) > 0 {
		if err := r.tracking.InsertAccounts(ctx, res.NewAccounts); err != nil {
			return rec, err
		}
	}
	rec.NewAccounts = res.NewCount
	if res.NewCount > 0 {
		metrics.AccountsIngested.Add(float64(res.NewCount))
	}
	logger.Info("made new accounts", "count", rec.NewAccounts)

	pctx, promoteSpan := tracer.Start(ctx, "promote")
	matured, err := r.tracking.ListMatured(pctx)
	if err != nil {
		promoteSpan.End()
		return rec, err
	}
	rec.NewThirties = len(matured)
	logger.Info("accounts ready for use", "count", len(matured))

	// Consumed is marked before any distribution so a crash mid-run can
	// never re-promote the same accounts (at-most-once promotion).
	if len(matured) > 0 {
		if err := r.tracking.MarkConsumed(pctx, model.Usernames(matured)); err != nil {
			promoteSpan.End()
			return rec, err
		}
		metrics.AccountsPromoted.Add(float64(len(matured)))
	}
	promoteSpan.End()

	if len(matured) > 0 {
		dctx, distributeSpan := tracer.Start(ctx, "distribute")
		r.distribute(dctx, matured, &rec, logger)
		distributeSpan.End()
	}

	if err := r.stats.Append(rec); err != nil {
		return rec, err
	}

	rctx, reportSpan := tracer.Start(ctx, "report")
	r.report(rctx, rec, logger)
	reportSpan.End()

	return rec, nil
}

// distribute routes the matured pool to each destination. Inserts run
// concurrently; one destination's failure never blocks another's insert
// or the rest of the run.
func (r *Runner) distribute(ctx context.Context, matured []model.Account, rec *model.RunStats, logger *slog.Logger) {
	ratios := make([]float64, len(r.destinations))
	for i, d := range r.destinations {
		ratios[i] = d.Ratio
	}
	assigned := distribute.Assign(matured, ratios)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range r.destinations {
		accounts := assigned[i]
		if len(accounts) == 0 {
			continue
		}
		d := d
		g.Go(func() error {
			if err := d.Repo.InsertAccounts(gctx, accounts); err != nil {
				metrics.DestinationInsertErrors.WithLabelValues(d.Name).Inc()
				logger.Error("destination insert failed", "destination", d.Name, "count", len(accounts), "error", err)
				return nil
			}
			mu.Lock()
			rec.SetRouted(d.Name, len(accounts))
			mu.Unlock()
			metrics.AccountsRouted.WithLabelValues(d.Name).Add(float64(len(accounts)))
			logger.Info("inserted accounts", "destination", d.Name, "count", len(accounts))
			return nil
		})
	}
	// Insert failures are absorbed above, so Wait cannot fail.
	_ = g.Wait()
}

// report gathers cumulative matured counts per destination (concurrently,
// independent reads) and fires the webhook and reload triggers.
func (r *Runner) report(ctx context.Context, rec model.RunStats, logger *slog.Logger) {
	matured := make(map[string]int64, len(r.destinations))
	names := make([]string, len(r.destinations))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range r.destinations {
		names[i] = d.Name
		d := d
		g.Go(func() error {
			total, err := d.Repo.CountMatured(gctx)
			if err != nil {
				logger.Warn("destination count failed", "destination", d.Name, "error", err)
				return nil
			}
			mu.Lock()
			matured[d.Name] = total
			mu.Unlock()
			metrics.DestinationMatured.WithLabelValues(d.Name).Set(float64(total))
			return nil
		})
	}
	_ = g.Wait()

	if err := r.notifier.Send(ctx, rec, names, matured); err != nil {
		metrics.WebhookFailures.Inc()
		logger.Warn("webhook delivery failed", "error", err)
	}

	if fired := r.reloader.Trigger(ctx); fired > 0 {
		logger.Info("reload triggers fired", "count", fired)
	}
}
