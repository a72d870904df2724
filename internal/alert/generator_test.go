package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
}

func newTestGenerator(ttl time.Duration) *Generator {
	g := NewGenerator(ttl)
	g.now = fixedNow
	return g
}

func rec(productID int64, urgency domain.Urgency, days float64) *domain.ReorderRecommendation {
	return &domain.ReorderRecommendation{
		ProductID:         productID,
		ProductName:       "Espresso Beans 1kg",
		Urgency:           urgency,
		DaysUntilStockout: days,
		RecommendedQty:    100,
		SupplierLeadTime:  7,
	}
}

func TestFromRecommendationClassification(t *testing.T) {
	g := newTestGenerator(0)

	tests := []struct {
		urgency      domain.Urgency
		wantSeverity domain.Severity
		wantType     domain.AlertType
		wantAction   domain.Action
	}{
		{domain.UrgencyEmergency, domain.SeverityEmergency, domain.AlertStockoutImminent, domain.ActionOrderNow},
		{domain.UrgencyCritical, domain.SeverityCritical, domain.AlertStockoutImminent, domain.ActionOrderToday},
		{domain.UrgencyHigh, domain.SeverityCritical, domain.AlertLowStock, domain.ActionOrderThisWeek},
		{domain.UrgencyMedium, domain.SeverityWarning, domain.AlertLowStock, domain.ActionMonitor},
	}

	for _, tt := range tests {
		t.Run(string(tt.urgency), func(t *testing.T) {
			a := g.FromRecommendation(rec(1, tt.urgency, 5), 12.5)
			require.NotNil(t, a)
			assert.NotEmpty(t, a.ID)
			assert.Equal(t, tt.wantSeverity, a.Severity)
			assert.Equal(t, tt.wantType, a.Type)
			assert.Equal(t, tt.wantAction, a.RecommendedAction)
			assert.Equal(t, 12.5, a.UnitCost)
			assert.Equal(t, fixedNow(), a.CreatedAt)
			assert.Equal(t, fixedNow().Add(DefaultTTL), a.ExpiresAt)
		})
	}
}

func TestFromRecommendationSkipsLowUrgency(t *testing.T) {
	g := newTestGenerator(0)
	assert.Nil(t, g.FromRecommendation(rec(1, domain.UrgencyLow, 30), 12.5))
}

func TestFromRecommendationCustomTTL(t *testing.T) {
	g := newTestGenerator(2 * time.Hour)
	a := g.FromRecommendation(rec(1, domain.UrgencyCritical, 4), 0)
	require.NotNil(t, a)
	assert.Equal(t, fixedNow().Add(2*time.Hour), a.ExpiresAt)
}

func TestPriority(t *testing.T) {
	const leadTime = 7.0

	tests := []struct {
		name     string
		severity domain.Severity
		days     float64
		want     int
	}{
		// Inside the lead time the bump applies, floored at 1.
		{"EmergencyOutOfStock", domain.SeverityEmergency, 0, 1},
		{"EmergencyTwoDays", domain.SeverityEmergency, 2, 1},
		{"CriticalOneDay", domain.SeverityCritical, 1, 1},
		{"CriticalSixDays", domain.SeverityCritical, 6, 6},
		{"CriticalNineDays", domain.SeverityCritical, 9, 19},
		{"WarningTenDays", domain.SeverityWarning, 10, 40},
		{"WarningCapsDayTerm", domain.SeverityWarning, 50, 50},
		{"NegativeDaysClampToZero", domain.SeverityEmergency, -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Priority(tt.severity, tt.days, leadTime))
		})
	}
}

func TestSortByPrioritySeverityWinsTies(t *testing.T) {
	g := newTestGenerator(0)

	// With a 7 day lead time the emergency at 2 days and the critical at
	// 1 day both land on priority 1. Severity must still order them.
	emergency := g.FromRecommendation(rec(1, domain.UrgencyEmergency, 2), 0)
	critical := g.FromRecommendation(rec(2, domain.UrgencyCritical, 1), 0)
	warning := g.FromRecommendation(rec(3, domain.UrgencyMedium, 10), 0)

	alerts := []*domain.Alert{warning, critical, emergency}
	SortByPriority(alerts)

	assert.Equal(t, []*domain.Alert{emergency, critical, warning}, alerts)
}

func TestSummarize(t *testing.T) {
	g := newTestGenerator(0)

	alerts := []*domain.Alert{
		{ProductID: 1, Severity: domain.SeverityEmergency, Priority: 1, RecommendedQty: 100, UnitCost: 2},
		{ProductID: 2, Severity: domain.SeverityCritical, Priority: 6, RecommendedQty: 50, UnitCost: 4},
		{ProductID: 3, Severity: domain.SeverityCritical, Priority: 12, RecommendedQty: 10},
		{ProductID: 4, Severity: domain.SeverityWarning, Priority: 35, RecommendedQty: 20, UnitCost: 1, Resolved: true},
		{ProductID: 5, Severity: domain.SeverityWarning, Priority: 40, RecommendedQty: 5, UnitCost: 3},
		{ProductID: 6, Severity: domain.SeverityWarning, Priority: 42, RecommendedQty: 5, UnitCost: 3},
		{ProductID: 7, Severity: domain.SeverityWarning, Priority: 44, RecommendedQty: 5, UnitCost: 3},
	}

	s := g.Summarize(alerts)

	assert.Equal(t, 7, s.TotalAlerts)
	assert.Equal(t, 1, s.CountsBySeverity[domain.SeverityEmergency])
	assert.Equal(t, 2, s.CountsBySeverity[domain.SeverityCritical])
	assert.Equal(t, 4, s.CountsBySeverity[domain.SeverityWarning])

	assert.Equal(t, 7, s.AtRiskProducts)
	// 100×2 + 50×4 + 20×1 + 3×(5×3); product 3 has no unit cost.
	assert.InDelta(t, 465, s.AtRiskValue, 1e-9)
	assert.Equal(t, 1, s.UnvaluedProducts)

	// Top alerts skip the resolved one and stop at five.
	require.Len(t, s.TopAlerts, 5)
	assert.Equal(t, int64(1), s.TopAlerts[0].ProductID)
	assert.Equal(t, int64(2), s.TopAlerts[1].ProductID)
	assert.Equal(t, int64(3), s.TopAlerts[2].ProductID)
	assert.Equal(t, int64(5), s.TopAlerts[3].ProductID)
	assert.Equal(t, int64(6), s.TopAlerts[4].ProductID)
	assert.Equal(t, fixedNow(), s.GeneratedAt)
}

func TestAlertMessageVariants(t *testing.T) {
	out := rec(1, domain.UrgencyEmergency, 0)
	assert.Contains(t, alertMessage(out), "out of stock")

	tight := rec(1, domain.UrgencyCritical, 4)
	assert.Contains(t, alertMessage(tight), "below the 7.0 day supplier lead time")

	relaxed := rec(1, domain.UrgencyMedium, 12)
	relaxed.RecommendedOrderDate = time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)
	assert.Contains(t, alertMessage(relaxed), "by 2025-08-19")
}
