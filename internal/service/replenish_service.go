package service

import (
	"context"

	"github.com/andresuchdata/replenish/internal/alert"
	"github.com/andresuchdata/replenish/internal/analysis"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/reorder"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/andresuchdata/replenish/internal/scan"
	"github.com/rs/zerolog/log"
)

// ReplenishService is the application-facing facade over the analyzers, the
// reorder calculator, the batch scanner and the alert store.
type ReplenishService struct {
	repo      repository.OrderRepository
	leadTimes *analysis.LeadTimeAnalyzer
	sales     *analysis.SalesHistoryAnalyzer
	calc      *reorder.Calculator
	scanner   *scan.Scanner
	generator *alert.Generator
	store     alert.Store
}

func NewReplenishService(
	repo repository.OrderRepository,
	calc *reorder.Calculator,
	scanner *scan.Scanner,
	generator *alert.Generator,
	store alert.Store,
) *ReplenishService {
	if store == nil {
		store = alert.NewMemoryStore()
	}
	return &ReplenishService{
		repo:      repo,
		leadTimes: analysis.NewLeadTimeAnalyzer(repo),
		sales:     analysis.NewSalesHistoryAnalyzer(repo),
		calc:      calc,
		scanner:   scanner,
		generator: generator,
		store:     store,
	}
}

// GetRecommendation computes a fresh reorder recommendation for one product.
func (s *ReplenishService) GetRecommendation(ctx context.Context, productID int64) (*domain.ReorderRecommendation, error) {
	return s.calc.Predict(ctx, productID)
}

// GetLeadTimeProfile computes the supplier lead-time profile over
// monthsHistory months (0 = default window).
func (s *ReplenishService) GetLeadTimeProfile(ctx context.Context, supplierID int64, monthsHistory int) (*domain.LeadTimeProfile, error) {
	return s.leadTimes.Analyze(ctx, supplierID, monthsHistory)
}

// GetSalesProfile computes the product sales profile over monthsHistory
// months (0 = default window).
func (s *ReplenishService) GetSalesProfile(ctx context.Context, productID int64, monthsHistory int) (*domain.SalesProfile, error) {
	return s.sales.Analyze(ctx, productID, monthsHistory)
}

// Scan runs the batch pipeline over the given products, or the whole catalog
// when productIDs is empty.
func (s *ReplenishService) Scan(ctx context.Context, productIDs []int64) (*scan.Result, error) {
	if len(productIDs) == 0 {
		return s.scanner.ScanAll(ctx)
	}
	return s.scanner.Scan(ctx, productIDs)
}

// ListAlerts returns current alerts sorted by priority.
func (s *ReplenishService) ListAlerts(ctx context.Context, unresolvedOnly bool) ([]*domain.Alert, error) {
	return s.store.List(ctx, unresolvedOnly)
}

// AlertSummary aggregates the currently stored alerts.
func (s *ReplenishService) AlertSummary(ctx context.Context) (*domain.AlertSummary, error) {
	alerts, err := s.store.List(ctx, false)
	if err != nil {
		return nil, err
	}
	return s.generator.Summarize(alerts), nil
}

// ResolveAlert marks a single alert resolved.
func (s *ReplenishService) ResolveAlert(ctx context.Context, alertID string) error {
	return s.store.Resolve(ctx, alertID)
}

// OnPurchaseOrderCreated resolves every open alert for the product. Wire this
// to the business system's order-creation event.
func (s *ReplenishService) OnPurchaseOrderCreated(ctx context.Context, productID int64) error {
	n, err := s.store.ResolveByProduct(ctx, productID)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Int64("product_id", productID).Int("resolved", n).Msg("alerts resolved by purchase order")
	}
	return nil
}
