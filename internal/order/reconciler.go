package order

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/domain"
)

const reconcileConcurrency = 4

type ReconcilerConfig struct {
	Spec  string        // cron spec, e.g. "@every 1m"
	Grace time.Duration // how long an order may sit in a state before it is picked up
	Batch int
}

// Report counts what one reconciliation pass did.
type Report struct {
	Notified  int `json:"notified"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	GaveUp    int `json:"gaveUp"`
}

// Reconciler finishes orders whose placement stopped part way: it resends
// confirmations for orders left in created and completes orders left in
// notified.
type Reconciler struct {
	svc   *Service
	cfg   ReconcilerConfig
	sched *cron.Cron
	now   func() time.Time

	mu      sync.Mutex
	running bool
}

func NewReconciler(svc *Service, cfg ReconcilerConfig) *Reconciler {
	if cfg.Batch <= 0 {
		cfg.Batch = 50
	}
	return &Reconciler{svc: svc, cfg: cfg, now: time.Now}
}

// Start schedules RunOnce on the configured spec.
func (r *Reconciler) Start() error {
	r.sched = cron.New()
	_, err := r.sched.AddFunc(r.cfg.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		report, err := r.RunOnce(ctx)
		if err != nil {
			zap.L().Error("order reconciliation failed", zap.Error(err))
			return
		}
		if report != (Report{}) {
			zap.L().Info("order reconciliation pass",
				zap.Int("notified", report.Notified),
				zap.Int("completed", report.Completed),
				zap.Int("failed", report.Failed),
				zap.Int("gaveUp", report.GaveUp))
		}
	})
	if err != nil {
		return err
	}
	r.sched.Start()
	zap.L().Info("order reconciler scheduled", zap.String("spec", r.cfg.Spec))
	return nil
}

// Stop halts the schedule and returns a context that is done once a running
// pass has finished.
func (r *Reconciler) Stop() context.Context {
	if r.sched == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return r.sched.Stop()
}

// RunOnce performs a single pass. Concurrent calls are collapsed: a call made
// while a pass is in progress returns an empty report.
func (r *Reconciler) RunOnce(ctx context.Context) (Report, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return Report{}, nil
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	const op = "order.Reconcile"
	cutoff := r.now().Add(-r.cfg.Grace)
	var (
		report Report
		mu     sync.Mutex
	)
	count := func(f func(*Report)) {
		mu.Lock()
		f(&report)
		mu.Unlock()
	}

	created, err := r.svc.orders.ListStale(ctx, domain.StatusCreated, cutoff, r.cfg.Batch)
	if err != nil {
		return report, apperr.Wrap(apperr.KindPersistence, op, err)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)
	for _, o := range created {
		g.Go(func() error {
			if o.NotifyAttempts >= r.svc.opts.MaxNotifyAttempts {
				moved, err := r.svc.orders.Transition(gctx, o.OrderID, domain.StatusCreated, domain.StatusAbandoned)
				if err != nil {
					zap.L().Error("reconcile: failed to abandon order", zap.String("orderId", o.OrderID), zap.Error(err))
					count(func(rep *Report) { rep.Failed++ })
					return nil
				}
				if moved {
					zap.L().Warn("giving up on order confirmation",
						zap.String("orderId", o.OrderID),
						zap.Int("attempts", o.NotifyAttempts),
						zap.String("lastError", o.LastNotifyError))
					count(func(rep *Report) { rep.GaveUp++ })
				}
				return nil
			}
			catalog, err := r.svc.catalogFor(gctx, o)
			if err != nil {
				zap.L().Error("reconcile: failed to load products", zap.String("orderId", o.OrderID), zap.Error(err))
				count(func(rep *Report) { rep.Failed++ })
				return nil
			}
			if err := r.svc.notify(gctx, o, catalog); err != nil {
				count(func(rep *Report) { rep.Failed++ })
				return nil
			}
			count(func(rep *Report) { rep.Notified++ })
			if o.Status == domain.StatusNotified {
				r.svc.complete(gctx, o)
				if o.Status == domain.StatusComplete {
					count(func(rep *Report) { rep.Completed++ })
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	notified, err := r.svc.orders.ListStale(ctx, domain.StatusNotified, cutoff, r.cfg.Batch)
	if err != nil {
		return report, apperr.Wrap(apperr.KindPersistence, op, err)
	}
	for _, o := range notified {
		if ctx.Err() != nil {
			break
		}
		r.svc.complete(ctx, o)
		if o.Status == domain.StatusComplete {
			report.Completed++
		}
	}
	return report, nil
}

// catalogFor loads the products an order references. Missing products are
// left out; the confirmation then names them as unavailable.
func (s *Service) catalogFor(ctx context.Context, o *domain.Order) (map[string]*domain.Product, error) {
	ids := make([]string, len(o.ProductsOrdered))
	for i, line := range o.ProductsOrdered {
		ids[i] = line.ProductID
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]*domain.Product, len(found))
	for _, p := range found {
		catalog[p.ID.Hex()] = p
	}
	return catalog, nil
}
