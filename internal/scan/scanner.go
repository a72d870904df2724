// internal/scan/scanner.go
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/replenish/internal/alert"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/rs/zerolog/log"
)

// Predictor produces a reorder recommendation for one product.
// reorder.Calculator is the production implementation.
type Predictor interface {
	Predict(ctx context.Context, productID int64) (*domain.ReorderRecommendation, error)
}

// Config bounds a catalog scan. WorkerCount caps concurrent predictions so the
// forecast advisor's rate limits are respected; TaskTimeout bounds each
// product's whole pipeline.
type Config struct {
	WorkerCount int
	TaskTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WorkerCount: 4,
		TaskTimeout: 45 * time.Second,
	}
}

// Result is the outcome of one catalog scan.
type Result struct {
	Recommendations []*domain.ReorderRecommendation
	Alerts          []*domain.Alert
	Summary         *domain.AlertSummary
	Scanned         int
	Skipped         int
	Duration        time.Duration
}

// Scanner runs the per-product prediction pipeline across a catalog through a
// bounded worker pool. Each product is independent: a failed product is
// logged and skipped, never aborting the batch.
type Scanner struct {
	repo      repository.OrderRepository
	calc      Predictor
	generator *alert.Generator
	store     alert.Store
	notifier  alert.Notifier
	config    Config
}

func NewScanner(repo repository.OrderRepository, calc Predictor, generator *alert.Generator, store alert.Store, notifier alert.Notifier, config Config) *Scanner {
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = DefaultConfig().TaskTimeout
	}
	if notifier == nil {
		notifier = alert.NoopNotifier{}
	}

	return &Scanner{
		repo:      repo,
		calc:      calc,
		generator: generator,
		store:     store,
		notifier:  notifier,
		config:    config,
	}
}

// ScanAll scans every active product in the catalog.
func (s *Scanner) ScanAll(ctx context.Context) (*Result, error) {
	ids, err := s.repo.ListProductIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, ids)
}

// Scan runs predictions for the given products, stores and ranks the
// resulting alerts, and pushes urgent ones to the notifier.
func (s *Scanner) Scan(ctx context.Context, productIDs []int64) (*Result, error) {
	started := time.Now()

	jobs := make(chan int64, len(productIDs))
	var (
		mu      sync.Mutex
		recs    []*domain.ReorderRecommendation
		skipped int
		wg      sync.WaitGroup
	)

	for i := 0; i < s.config.WorkerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for productID := range jobs {
				rec, err := s.predictOne(ctx, productID)
				if err != nil {
					if domain.IsNotFound(err) || domain.IsNoData(err) {
						log.Warn().Err(err).Int64("product_id", productID).Int("worker", workerID).Msg("scan: product skipped")
						mu.Lock()
						skipped++
						mu.Unlock()
						continue
					}
					log.Error().Err(err).Int64("product_id", productID).Int("worker", workerID).Msg("scan: prediction failed")
					mu.Lock()
					skipped++
					mu.Unlock()
					continue
				}

				mu.Lock()
				recs = append(recs, rec)
				mu.Unlock()
			}
		}(i)
	}

	for _, id := range productIDs {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			return nil, err
		}
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	alerts := s.buildAlerts(ctx, recs)
	if len(alerts) > 0 && s.store != nil {
		if err := s.store.Save(ctx, alerts); err != nil {
			log.Error().Err(err).Msg("scan: saving alerts failed")
		}
	}

	s.notifier.Notify(ctx, alerts)

	return &Result{
		Recommendations: recs,
		Alerts:          alerts,
		Summary:         s.generator.Summarize(alerts),
		Scanned:         len(productIDs),
		Skipped:         skipped,
		Duration:        time.Since(started),
	}, nil
}

func (s *Scanner) predictOne(ctx context.Context, productID int64) (*domain.ReorderRecommendation, error) {
	taskCtx, cancel := context.WithTimeout(ctx, s.config.TaskTimeout)
	defer cancel()

	return s.calc.Predict(taskCtx, productID)
}

func (s *Scanner) buildAlerts(ctx context.Context, recs []*domain.ReorderRecommendation) []*domain.Alert {
	alerts := make([]*domain.Alert, 0, len(recs))
	for _, rec := range recs {
		unitCost := s.unitCost(ctx, rec.ProductID)
		if a := s.generator.FromRecommendation(rec, unitCost); a != nil {
			alerts = append(alerts, a)
		}
	}

	alert.SortByPriority(alerts)
	return alerts
}

func (s *Scanner) unitCost(ctx context.Context, productID int64) float64 {
	snap, err := s.repo.GetProductSnapshot(ctx, productID)
	if err != nil {
		return 0
	}
	return snap.UnitCost
}
