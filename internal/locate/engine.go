package locate

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/camatlas/camatlas/internal/identity"
	"github.com/camatlas/camatlas/internal/model"
	"github.com/camatlas/camatlas/internal/store"
	"github.com/camatlas/camatlas/pkg/overpass"
)

// Querier executes a built Overpass query.
type Querier interface {
	Query(ctx context.Context, query string) ([]overpass.Element, error)
}

// Options configures an engine run.
type Options struct {
	Area        string               // country area code for queries
	Filters     []overpass.TagFilter // optional tag constraints per query
	MinResults  int                  // skip persisting operators with fewer cameras
	BatchSize   int                  // cameras per upsert batch
	TimeoutSecs int                  // server-side query budget
	DryRun      bool                 // query but don't persist
}

// Summary reports what a run did.
type Summary struct {
	Processed int      // operators queried and persisted
	Cameras   int      // camera records written (or would-be, in dry runs)
	Skipped   int      // operators with identities too short to query
	Failed    int      // operators whose query errored
	NoResults []string // operator IDs that returned zero cameras
}

// Engine sequences the per-operator pipeline across the operator list.
// Overpass calls are serialized behind the client's rate limiter; store
// writes for one operator may overlap the next operator's query.
type Engine struct {
	resolver *identity.Resolver
	querier  Querier
	store    store.Store
	opts     Options
}

// NewEngine creates a reconciliation engine.
func NewEngine(resolver *identity.Resolver, querier Querier, st store.Store, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	return &Engine{resolver: resolver, querier: querier, store: st, opts: opts}
}

// Run processes every operator in order. A failure on one operator is
// logged and counted, never fatal to the batch; the run always completes
// with a summary unless the context is cancelled.
func (e *Engine) Run(ctx context.Context, operators []model.Operator) (Summary, error) {
	log := zap.L().With(zap.String("component", "locate.engine"))

	var summary Summary

	// Persistence runs on a side goroutine pool so a slow batch write
	// doesn't hold up the next rate-limited query slot. Writes for distinct
	// operators are commutative: every record is an upsert by key.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)

	for i, op := range operators {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return summary, err
		}

		opLog := log.With(zap.String("operator", op.ID))

		ident := e.resolver.Resolve(op)
		if !ident.Queryable() {
			opLog.Info("skipping: identity too short to query",
				zap.String("identity", ident.Value))
			summary.Skipped++
			continue
		}

		opLog.Info("querying",
			zap.String("identity", ident.Value),
			zap.String("source", string(ident.Source)),
			zap.Int("position", i+1),
			zap.Int("total", len(operators)),
		)

		query := overpass.Build(overpass.QuerySpec{
			Brand:       ident.Value,
			Area:        e.opts.Area,
			Filters:     e.opts.Filters,
			TimeoutSecs: e.opts.TimeoutSecs,
		})

		elements, err := e.querier.Query(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				_ = g.Wait()
				return summary, ctx.Err()
			}
			opLog.Error("query failed, continuing", zap.Error(err))
			summary.Failed++
			continue
		}

		cameras := CamerasFromElements(elements, op.ID)
		opLog.Info("normalized results",
			zap.Int("elements", len(elements)),
			zap.Int("cameras", len(cameras)),
		)

		if len(cameras) == 0 {
			summary.NoResults = append(summary.NoResults, op.ID)
			continue
		}
		if len(cameras) < e.opts.MinResults {
			opLog.Info("below min-results threshold, not persisting",
				zap.Int("cameras", len(cameras)),
				zap.Int("min", e.opts.MinResults))
			continue
		}

		summary.Processed++
		summary.Cameras += len(cameras)

		if e.opts.DryRun {
			continue
		}

		g.Go(func() error {
			e.persist(gctx, opLog, op, cameras)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	log.Info("run complete",
		zap.Int("processed", summary.Processed),
		zap.Int("cameras", summary.Cameras),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("no_results", len(summary.NoResults)),
	)
	return summary, nil
}

// persist upserts one operator and its cameras in bounded batches. Batch
// failures are logged and the remaining batches still attempted.
func (e *Engine) persist(ctx context.Context, log *zap.Logger, op model.Operator, cameras []model.Camera) {
	if err := e.store.UpsertOperator(ctx, op); err != nil {
		log.Error("operator upsert failed", zap.Error(err))
	}

	for start := 0; start < len(cameras); start += e.opts.BatchSize {
		end := min(start+e.opts.BatchSize, len(cameras))
		batch := cameras[start:end]

		if _, err := e.store.UpsertCameras(ctx, batch); err != nil {
			log.Error("camera batch upsert failed",
				zap.Int("from", start),
				zap.Int("to", end),
				zap.Error(err))
			continue
		}
		log.Debug("camera batch written", zap.Int("from", start), zap.Int("to", end))
	}
}
