package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/repository"
)

const (
	// DefaultSalesWindowMonths is the rolling window for sales analysis.
	DefaultSalesWindowMonths = 3

	// trendWeeks is how many leading/trailing weekly totals the trend compares.
	trendWeeks = 4

	// volatileCV marks a weekly series as volatile regardless of trend.
	volatileCV = 0.5

	// trendThresholdPct separates growing/declining from stable.
	trendThresholdPct = 15.0
)

// SalesHistoryAnalyzer converts a product's delivered sale lines into a
// sales profile: trend, weekday seasonality and customer mix.
type SalesHistoryAnalyzer struct {
	repo repository.OrderRepository
	now  func() time.Time
}

func NewSalesHistoryAnalyzer(repo repository.OrderRepository) *SalesHistoryAnalyzer {
	return &SalesHistoryAnalyzer{repo: repo, now: time.Now}
}

// Analyze computes the sales profile for a product over the last monthsHistory
// months (0 uses the default window). It returns a domain.NoDataError when no
// delivered lines exist in the window.
func (a *SalesHistoryAnalyzer) Analyze(ctx context.Context, productID int64, monthsHistory int) (*domain.SalesProfile, error) {
	if monthsHistory <= 0 {
		monthsHistory = DefaultSalesWindowMonths
	}

	now := a.now()
	dateFrom := now.AddDate(0, -monthsHistory, 0)
	lines, err := a.repo.QuerySaleLines(ctx, productID, dateFrom)
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, &domain.NoDataError{
			Entity: "product",
			ID:     productID,
			Reason: "no delivered sale lines in window",
		}
	}

	weekly := bucketByWeek(lines)
	trend, trendPct, cv := classifyTrend(weekly)
	pattern, peak := weekdayPattern(lines)

	var totalQty, totalRevenue float64
	for _, l := range lines {
		totalQty += l.Quantity
		totalRevenue += l.Revenue
	}

	windowDays := now.Sub(dateFrom).Hours() / 24
	if windowDays < 1 {
		windowDays = 1
	}
	avgDaily := totalQty / windowDays

	distinct, recurring := customerMix(lines)

	return &domain.SalesProfile{
		ProductID:          productID,
		TotalQuantity:      totalQty,
		TotalRevenue:       totalRevenue,
		AvgDailySales:      avgDaily,
		AvgWeeklySales:     avgDaily * 7,
		AvgMonthlySales:    avgDaily * 30,
		Trend:              trend,
		TrendPercent:       trendPct,
		Variability:        cv,
		WeekdayPattern:     pattern,
		PeakWeekday:        peak,
		CustomerCount:      distinct,
		RecurringCustomers: recurring,
		WeeklySeries:       weekly,
		WindowMonths:       monthsHistory,
		SampleSize:         len(lines),
	}, nil
}

// weekStart returns the Monday 00:00 anchoring the ISO week of t.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

func bucketByWeek(lines []domain.SaleLineRecord) []domain.WeeklySales {
	type bucket struct {
		qty     float64
		revenue float64
		orders  map[int64]struct{}
	}

	buckets := make(map[time.Time]*bucket)
	for _, l := range lines {
		ws := weekStart(l.DeliveryDate)
		b, ok := buckets[ws]
		if !ok {
			b = &bucket{orders: make(map[int64]struct{})}
			buckets[ws] = b
		}
		b.qty += l.Quantity
		b.revenue += l.Revenue
		b.orders[l.OrderID] = struct{}{}
	}

	weekly := make([]domain.WeeklySales, 0, len(buckets))
	for ws, b := range buckets {
		weekly = append(weekly, domain.WeeklySales{
			WeekStart:  ws,
			Quantity:   b.qty,
			Revenue:    b.revenue,
			OrderCount: len(b.orders),
		})
	}
	sort.Slice(weekly, func(i, j int) bool {
		return weekly[i].WeekStart.Before(weekly[j].WeekStart)
	})

	return weekly
}

// classifyTrend compares the mean of the first trendWeeks weekly totals to the
// mean of the last trendWeeks. High overall variation wins over direction.
func classifyTrend(weekly []domain.WeeklySales) (domain.Trend, float64, float64) {
	totals := make([]float64, len(weekly))
	for i, w := range weekly {
		totals[i] = w.Quantity
	}

	cv := CoefficientOfVariation(totals)

	if len(totals) < trendWeeks {
		return domain.TrendStable, 0, cv
	}

	first := Mean(totals[:trendWeeks])
	last := Mean(totals[len(totals)-trendWeeks:])

	var changePct float64
	if first > 0 {
		changePct = (last - first) / first * 100
	}

	if cv > volatileCV {
		return domain.TrendVolatile, changePct, cv
	}

	switch {
	case changePct > trendThresholdPct:
		return domain.TrendGrowing, changePct, cv
	case changePct < -trendThresholdPct:
		return domain.TrendDeclining, changePct, cv
	default:
		return domain.TrendStable, changePct, cv
	}
}

// weekdayPattern returns the share of delivered quantity per weekday, summing
// to 100, and the peak weekday. Ties keep the default peak of Tuesday.
func weekdayPattern(lines []domain.SaleLineRecord) (map[string]float64, string) {
	byDay := make(map[string]float64, 7)
	var total float64
	for _, l := range lines {
		day := l.DeliveryDate.Weekday().String()
		byDay[day] += l.Quantity
		total += l.Quantity
	}

	pattern := make(map[string]float64, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if total > 0 {
			pattern[name] = byDay[name] / total * 100
		} else {
			pattern[name] = 0
		}
	}

	peak := time.Tuesday.String()
	best := pattern[peak]
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if pattern[name] > best {
			best = pattern[name]
			peak = name
		}
	}

	return pattern, peak
}

func customerMix(lines []domain.SaleLineRecord) (distinct, recurring int) {
	ordersByCustomer := make(map[int64]map[int64]struct{})
	for _, l := range lines {
		if _, ok := ordersByCustomer[l.CustomerID]; !ok {
			ordersByCustomer[l.CustomerID] = make(map[int64]struct{})
		}
		ordersByCustomer[l.CustomerID][l.OrderID] = struct{}{}
	}

	distinct = len(ordersByCustomer)
	for _, orders := range ordersByCustomer {
		if len(orders) >= 2 {
			recurring++
		}
	}

	return distinct, recurring
}
