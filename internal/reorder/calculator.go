// internal/reorder/calculator.go
package reorder

import (
	"context"
	"math"
	"time"

	"github.com/andresuchdata/replenish/internal/analysis"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/forecast"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	// Defaults used when a supplier has no lead-time history. Failing the
	// whole prediction over missing supplier data would make new products
	// invisible to alerting, which is exactly when they need it most.
	defaultLeadTimeDays     = 7
	defaultReliabilityScore = 75
	defaultVariabilityScore = 0.7

	coverageDaysDefault = 14
	coverageDaysGrowing = 21

	confidenceFloor = 50
	confidenceCeil  = 100

	// maxDaysUntilStockout caps the depletion estimate so zero-demand
	// products stay representable in JSON instead of projecting to +Inf.
	maxDaysUntilStockout = 365

	// Sample sizes at which the confidence terms saturate.
	salesSampleSaturation    = 50
	supplierSampleSaturation = 20
)

// Calculator combines lead-time and sales analysis with the 7-day forecast
// into a reorder recommendation.
type Calculator struct {
	repo           repository.OrderRepository
	leadTimes      *analysis.LeadTimeAnalyzer
	sales          *analysis.SalesHistoryAnalyzer
	advisor        forecast.Advisor
	advisorTimeout time.Duration
	now            func() time.Time
}

// NewCalculator wires a calculator. advisor may be nil, in which case the
// deterministic fallback is always used.
func NewCalculator(repo repository.OrderRepository, advisor forecast.Advisor, advisorTimeout time.Duration) *Calculator {
	return &Calculator{
		repo:           repo,
		leadTimes:      analysis.NewLeadTimeAnalyzer(repo),
		sales:          analysis.NewSalesHistoryAnalyzer(repo),
		advisor:        advisor,
		advisorTimeout: advisorTimeout,
		now:            time.Now,
	}
}

// Predict produces the full reorder recommendation for one product.
// Unknown products return a domain.NotFoundError and products without sales
// history a domain.NoDataError; every other sub-failure degrades to a
// deterministic fallback.
func (c *Calculator) Predict(ctx context.Context, productID int64) (*domain.ReorderRecommendation, error) {
	snap, err := c.repo.GetProductSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}

	salesProfile, err := c.sales.Analyze(ctx, productID, 0)
	if err != nil {
		return nil, err
	}

	lt := c.leadTimeProfile(ctx, snap.PrimarySupplierID)

	today := c.now()
	daily := c.dailyForecast(ctx, snap, salesProfile, lt, today)

	daysUntilStockout := simulateDepletion(snap.CurrentStock, daily, salesProfile.AvgDailySales)
	urgency := classifyUrgency(daysUntilStockout, lt.MedianDays)

	safetyStock, reorderPoint, recommendedQty := reorderLevels(salesProfile, lt)

	orderDate := recommendedOrderDate(today, daysUntilStockout, lt.MedianDays, urgency)

	rec := &domain.ReorderRecommendation{
		ProductID:            productID,
		ProductName:          snap.Name,
		CurrentStock:         snap.CurrentStock,
		DaysUntilStockout:    daysUntilStockout,
		Urgency:              urgency,
		RecommendedQty:       recommendedQty,
		RecommendedOrderDate: orderDate,
		SafetyStock:          safetyStock,
		ReorderPoint:         reorderPoint,
		SupplierID:           snap.PrimarySupplierID,
		SupplierLeadTime:     lt.MedianDays,
		Forecast:             buildForecastSeries(snap.CurrentStock, daily, safetyStock, today),
		ConfidenceScore:      confidenceScore(salesProfile, lt),
		GeneratedAt:          today,
	}

	expl := c.explain(ctx, snap, salesProfile, lt, rec)
	rec.Reasoning = expl.Reasoning
	rec.RiskFactors = expl.RiskFactors

	return rec, nil
}

// leadTimeProfile returns the supplier's profile, or the documented default
// when no history is available.
func (c *Calculator) leadTimeProfile(ctx context.Context, supplierID int64) *domain.LeadTimeProfile {
	if supplierID != 0 {
		lt, err := c.leadTimes.Analyze(ctx, supplierID, 0)
		if err == nil {
			return lt
		}
		if !domain.IsNoData(err) {
			log.Warn().Err(err).Int64("supplier_id", supplierID).Msg("lead time analysis failed, using defaults")
		}
	}

	return &domain.LeadTimeProfile{
		SupplierID:       supplierID,
		MedianDays:       defaultLeadTimeDays,
		ReliabilityScore: defaultReliabilityScore,
		VariabilityScore: defaultVariabilityScore,
	}
}

func (c *Calculator) dailyForecast(ctx context.Context, snap *domain.ProductSnapshot, sp *domain.SalesProfile, lt *domain.LeadTimeProfile, today time.Time) []float64 {
	if c.advisor != nil {
		callCtx, cancel := c.advisorContext(ctx)
		defer cancel()

		values, err := c.advisor.Forecast7Days(callCtx, c.advisorRequest(snap, sp, lt, today, nil))
		if err == nil {
			return values
		}
		log.Warn().Err(err).Int64("product_id", snap.ProductID).Msg("advisor forecast unavailable, using statistical fallback")
	}

	return forecast.FallbackForecast(sp, today)
}

func (c *Calculator) explain(ctx context.Context, snap *domain.ProductSnapshot, sp *domain.SalesProfile, lt *domain.LeadTimeProfile, rec *domain.ReorderRecommendation) *forecast.Explanation {
	req := c.advisorRequest(snap, sp, lt, rec.GeneratedAt, rec)

	if c.advisor != nil {
		callCtx, cancel := c.advisorContext(ctx)
		defer cancel()

		expl, err := c.advisor.Explain(callCtx, req)
		if err == nil {
			// Advisor narratives keep the rule-based risks appended so a
			// terse model answer never hides a known risk.
			expl.RiskFactors = mergeRiskFactors(expl.RiskFactors, forecast.FallbackExplanation(req).RiskFactors)
			return expl
		}
		log.Warn().Err(err).Int64("product_id", snap.ProductID).Msg("advisor explanation unavailable, using template")
	}

	return forecast.FallbackExplanation(req)
}

func (c *Calculator) advisorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.advisorTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Calculator) advisorRequest(snap *domain.ProductSnapshot, sp *domain.SalesProfile, lt *domain.LeadTimeProfile, today time.Time, rec *domain.ReorderRecommendation) forecast.Request {
	req := forecast.Request{
		ProductName:      snap.Name,
		CurrentDate:      today.Format("2006-01-02"),
		AvgDailySales:    sp.AvgDailySales,
		AvgWeeklySales:   sp.AvgWeeklySales,
		Trend:            sp.Trend,
		TrendPercent:     sp.TrendPercent,
		Variability:      sp.Variability,
		WeekdayPattern:   sp.WeekdayPattern,
		PeakWeekday:      sp.PeakWeekday,
		LeadTimeDays:     lt.MedianDays,
		ReliabilityScore: lt.ReliabilityScore,
		CurrentStock:     snap.CurrentStock,
	}
	if rec != nil {
		req.DaysUntilStockout = rec.DaysUntilStockout
		req.Urgency = rec.Urgency
		req.RecommendedQty = rec.RecommendedQty
	}
	return req
}

// simulateDepletion walks the forecast day by day. When stock survives the
// whole horizon it extrapolates at the average daily rate, capped at
// maxDaysUntilStockout.
func simulateDepletion(currentStock float64, daily []float64, avgDaily float64) float64 {
	if currentStock <= 0 {
		return 0
	}

	running := currentStock
	for i, sales := range daily {
		running -= sales
		if running < 0 {
			return float64(i + 1)
		}
	}

	if avgDaily <= 0 {
		return maxDaysUntilStockout
	}

	days := currentStock / avgDaily
	if days > maxDaysUntilStockout {
		return maxDaysUntilStockout
	}
	return days
}

// classifyUrgency maps days-until-stockout onto the tier ladder. All
// comparisons are strict so boundary values land in the less urgent tier.
func classifyUrgency(days, leadTime float64) domain.Urgency {
	switch {
	case days <= 0 || days < 0.5*leadTime:
		return domain.UrgencyEmergency
	case days < leadTime:
		return domain.UrgencyCritical
	case days < 1.5*leadTime:
		return domain.UrgencyHigh
	case days < 2*leadTime:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// reorderLevels computes safety stock, reorder point and order quantity from
// the two profiles. Demand stddev is approximated as avgDaily × CV; growing or
// volatile products get the longer coverage window.
func reorderLevels(sp *domain.SalesProfile, lt *domain.LeadTimeProfile) (safetyStock, reorderPoint, qty int) {
	sigma := sp.AvgDailySales * sp.Variability
	safetyStock = int(math.Ceil(zScore(lt.ReliabilityScore) * sigma * math.Sqrt(lt.MedianDays)))
	reorderPoint = int(math.Ceil(sp.AvgDailySales*lt.MedianDays + float64(safetyStock)))

	coverage := coverageDaysDefault
	if sp.Trend == domain.TrendGrowing || sp.Trend == domain.TrendVolatile {
		coverage = coverageDaysGrowing
	}
	qty = int(math.Ceil(sp.AvgDailySales*float64(coverage) + float64(safetyStock)))

	return safetyStock, reorderPoint, qty
}

// zScore picks the service-level multiplier from the supplier reliability
// tier: more reliable suppliers need a smaller safety buffer.
func zScore(reliability float64) float64 {
	switch {
	case reliability > 85:
		return 1.65
	case reliability > 70:
		return 1.96
	default:
		return 2.33
	}
}

func recommendedOrderDate(today time.Time, days, leadTime float64, urgency domain.Urgency) time.Time {
	date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if urgency == domain.UrgencyEmergency || urgency == domain.UrgencyCritical {
		return date
	}

	offset := math.Max(0, days-leadTime-1)
	return date.AddDate(0, 0, int(offset))
}

// buildForecastSeries projects stock across the horizon. The stock-out risk
// ramps linearly from 0 at the safety-stock level down to 100 at zero stock.
func buildForecastSeries(currentStock float64, daily []float64, safetyStock int, today time.Time) []domain.ForecastDay {
	series := make([]domain.ForecastDay, len(daily))
	running := currentStock
	for i, sales := range daily {
		running -= sales
		series[i] = domain.ForecastDay{
			Date:            today.AddDate(0, 0, i+1),
			PredictedSales:  sales,
			PredictedStock:  running,
			StockoutRiskPct: stockoutRisk(running, safetyStock),
		}
	}
	return series
}

func stockoutRisk(stock float64, safetyStock int) float64 {
	if stock <= 0 {
		return 100
	}
	ss := float64(safetyStock)
	if ss <= 0 || stock >= ss {
		return 0
	}
	return (1 - stock/ss) * 100
}

// confidenceScore blends data stability and sample sufficiency into a 50-100
// score: four 25-point terms, then clamped.
func confidenceScore(sp *domain.SalesProfile, lt *domain.LeadTimeProfile) float64 {
	score := 25*(1-sp.Variability) +
		25*lt.VariabilityScore +
		25*math.Min(1, float64(sp.SampleSize)/salesSampleSaturation) +
		25*math.Min(1, float64(lt.SampleSize)/supplierSampleSaturation)

	return analysis.Clamp(score, confidenceFloor, confidenceCeil)
}

func mergeRiskFactors(primary, fallback []string) []string {
	seen := make(map[string]struct{}, len(primary))
	merged := make([]string, 0, len(primary)+len(fallback))
	for _, r := range primary {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range fallback {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		merged = append(merged, r)
	}
	return merged
}
