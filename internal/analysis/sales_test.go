package analysis

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
)

func weeks(totals ...float64) []domain.WeeklySales {
	out := make([]domain.WeeklySales, len(totals))
	start := ts("2025-01-06") // a Monday
	for i, q := range totals {
		out[i] = domain.WeeklySales{WeekStart: start.AddDate(0, 0, 7*i), Quantity: q}
	}
	return out
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name      string
		totals    []float64
		wantTrend domain.Trend
		wantPct   float64
	}{
		{"GrowingTwentyPercent", []float64{100, 100, 100, 100, 120, 120, 120, 120}, domain.TrendGrowing, 20},
		{"DecliningTwentyPercent", []float64{100, 100, 100, 100, 80, 80, 80, 80}, domain.TrendDeclining, -20},
		{"StableFlat", []float64{100, 100, 100, 100, 100, 100, 100, 100}, domain.TrendStable, 0},
		{"StableWithinThreshold", []float64{100, 100, 100, 100, 110, 110, 110, 110}, domain.TrendStable, 10},
		{"TooFewWeeksDefaultsStable", []float64{10, 20, 30}, domain.TrendStable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend, pct, _ := classifyTrend(weeks(tt.totals...))
			if trend != tt.wantTrend {
				t.Errorf("trend = %v, want %v", trend, tt.wantTrend)
			}
			if math.Abs(pct-tt.wantPct) > 1e-9 {
				t.Errorf("pct = %v, want %v", pct, tt.wantPct)
			}
		})
	}
}

func TestClassifyTrendVolatileOverridesDirection(t *testing.T) {
	// Identical first/last means but huge swings: CV > 0.5 wins.
	trend, pct, cv := classifyTrend(weeks(10, 100, 10, 100, 10, 100, 10, 100))
	if trend != domain.TrendVolatile {
		t.Errorf("trend = %v, want volatile", trend)
	}
	if pct != 0 {
		t.Errorf("pct = %v, want 0", pct)
	}
	if cv <= 0.5 {
		t.Errorf("cv = %v, want > 0.5", cv)
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-01-06", "2025-01-06"}, // Monday maps to itself
		{"2025-01-08", "2025-01-06"}, // Wednesday
		{"2025-01-12", "2025-01-06"}, // Sunday belongs to the preceding Monday
		{"2025-01-13", "2025-01-13"}, // next Monday
	}

	for _, tt := range tests {
		if got := weekStart(ts(tt.date)); !got.Equal(ts(tt.want)) {
			t.Errorf("weekStart(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func line(date string, qty float64, customerID, orderID int64) domain.SaleLineRecord {
	return domain.SaleLineRecord{
		ProductID:    7,
		Quantity:     qty,
		Revenue:      qty * 2,
		CustomerID:   customerID,
		OrderID:      orderID,
		DeliveryDate: ts(date),
	}
}

func TestWeekdayPattern(t *testing.T) {
	lines := []domain.SaleLineRecord{
		line("2025-01-06", 60, 1, 1), // Monday
		line("2025-01-07", 20, 1, 2), // Tuesday
		line("2025-01-08", 20, 1, 3), // Wednesday
	}

	pattern, peak := weekdayPattern(lines)
	if peak != "Monday" {
		t.Errorf("peak = %s, want Monday", peak)
	}
	if math.Abs(pattern["Monday"]-60) > 1e-9 {
		t.Errorf("Monday share = %v, want 60", pattern["Monday"])
	}

	var sum float64
	for _, pct := range pattern {
		sum += pct
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("pattern sums to %v, want 100", sum)
	}
}

func TestWeekdayPatternTieBreaksToTuesday(t *testing.T) {
	// Equal volume every day: no strict maximum, Tuesday stays the peak.
	lines := make([]domain.SaleLineRecord, 0, 7)
	for i := 0; i < 7; i++ {
		lines = append(lines, line(ts("2025-01-06").AddDate(0, 0, i).Format("2006-01-02"), 10, 1, int64(i)))
	}

	_, peak := weekdayPattern(lines)
	if peak != "Tuesday" {
		t.Errorf("peak = %s, want Tuesday on a flat week", peak)
	}
}

func TestCustomerMix(t *testing.T) {
	lines := []domain.SaleLineRecord{
		line("2025-01-06", 5, 1, 10),
		line("2025-01-07", 5, 1, 11), // customer 1, second order
		line("2025-01-08", 5, 2, 12),
		line("2025-01-09", 5, 2, 12), // same order, still one order for customer 2
		line("2025-01-10", 5, 3, 13),
	}

	distinct, recurring := customerMix(lines)
	if distinct != 3 {
		t.Errorf("distinct = %d, want 3", distinct)
	}
	if recurring != 1 {
		t.Errorf("recurring = %d, want 1", recurring)
	}
}

func TestSalesAnalyzeProfile(t *testing.T) {
	// 13 full Monday-to-Sunday weeks of 10 units/day.
	var lines []domain.SaleLineRecord
	start := ts("2025-06-02") // Monday
	for i := 0; i < 91; i++ {
		date := start.AddDate(0, 0, i)
		lines = append(lines, line(date.Format("2006-01-02"), 10, int64(i%3), int64(i)))
	}

	repo := &fakeOrderRepo{lines: lines}
	a := NewSalesHistoryAnalyzer(repo)
	a.now = func() time.Time { return ts("2025-09-01") }

	profile, err := a.Analyze(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if profile.TotalQuantity != 910 {
		t.Errorf("TotalQuantity = %v, want 910", profile.TotalQuantity)
	}
	if profile.Trend != domain.TrendStable {
		t.Errorf("Trend = %v, want stable", profile.Trend)
	}
	if len(profile.WeeklySeries) != 13 {
		t.Errorf("weeks = %d, want 13", len(profile.WeeklySeries))
	}
	for _, w := range profile.WeeklySeries {
		if w.Quantity != 70 {
			t.Errorf("week %v quantity = %v, want 70", w.WeekStart, w.Quantity)
		}
	}

	// Window is Jun 1 -> Sep 1 = 92 days.
	wantDaily := 910.0 / 92
	if math.Abs(profile.AvgDailySales-wantDaily) > 1e-9 {
		t.Errorf("AvgDailySales = %v, want %v", profile.AvgDailySales, wantDaily)
	}
	if math.Abs(profile.AvgWeeklySales-wantDaily*7) > 1e-9 {
		t.Errorf("AvgWeeklySales = %v, want %v", profile.AvgWeeklySales, wantDaily*7)
	}

	if profile.CustomerCount != 3 || profile.RecurringCustomers != 3 {
		t.Errorf("customers = %d/%d, want 3/3", profile.CustomerCount, profile.RecurringCustomers)
	}
	if profile.SampleSize != 91 {
		t.Errorf("SampleSize = %d, want 91", profile.SampleSize)
	}
}

func TestSalesAnalyzeNoData(t *testing.T) {
	a := NewSalesHistoryAnalyzer(&fakeOrderRepo{})
	_, err := a.Analyze(context.Background(), 7, 0)
	if !domain.IsNoData(err) {
		t.Errorf("Analyze() error = %v, want NoDataError", err)
	}
}
