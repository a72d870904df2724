// internal/alert/generator.go
package alert

import (
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/rs/xid"
)

// DefaultTTL is how long an alert stays actionable before it expires.
const DefaultTTL = 24 * time.Hour

const (
	priorityBaseEmergency = 1
	priorityBaseCritical  = 10
	priorityBaseWarning   = 30

	priorityDaysCap      = 20
	priorityLeadTimeBump = 10
	topAlertCount        = 5
)

// Generator maps reorder recommendations onto prioritized alerts.
type Generator struct {
	ttl time.Duration
	now func() time.Time
}

func NewGenerator(ttl time.Duration) *Generator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Generator{ttl: ttl, now: time.Now}
}

// FromRecommendation derives an alert from a recommendation, or nil when the
// urgency does not warrant one.
func (g *Generator) FromRecommendation(rec *domain.ReorderRecommendation, unitCost float64) *domain.Alert {
	if !rec.Urgency.AboveLow() {
		return nil
	}

	severity, alertType, action := classify(rec.Urgency)
	now := g.now()

	return &domain.Alert{
		ID:                xid.New().String(),
		ProductID:         rec.ProductID,
		ProductName:       rec.ProductName,
		Severity:          severity,
		Type:              alertType,
		Message:           alertMessage(rec),
		RecommendedAction: action,
		Priority:          Priority(severity, rec.DaysUntilStockout, rec.SupplierLeadTime),
		DaysUntilStockout: rec.DaysUntilStockout,
		RecommendedQty:    rec.RecommendedQty,
		UnitCost:          unitCost,
		CreatedAt:         now,
		ExpiresAt:         now.Add(g.ttl),
	}
}

// classify is the fixed urgency → severity/type/action table.
func classify(u domain.Urgency) (domain.Severity, domain.AlertType, domain.Action) {
	switch u {
	case domain.UrgencyEmergency:
		return domain.SeverityEmergency, domain.AlertStockoutImminent, domain.ActionOrderNow
	case domain.UrgencyCritical:
		return domain.SeverityCritical, domain.AlertStockoutImminent, domain.ActionOrderToday
	case domain.UrgencyHigh:
		return domain.SeverityCritical, domain.AlertLowStock, domain.ActionOrderThisWeek
	default: // MEDIUM
		return domain.SeverityWarning, domain.AlertLowStock, domain.ActionMonitor
	}
}

// Priority computes the ranking number for an alert, 1 = most urgent. The
// severity base dominates, day count breaks ties within a severity, and a
// stock-out inside the supplier lead time bumps the alert up a notch.
func Priority(severity domain.Severity, daysUntilStockout, leadTime float64) int {
	var base int
	switch severity {
	case domain.SeverityEmergency:
		base = priorityBaseEmergency
	case domain.SeverityCritical:
		base = priorityBaseCritical
	default:
		base = priorityBaseWarning
	}

	days := daysUntilStockout
	if days < 0 {
		days = 0
	}
	if days > priorityDaysCap {
		days = priorityDaysCap
	}

	priority := base + int(days)
	if daysUntilStockout < leadTime {
		priority -= priorityLeadTimeBump
	}
	if priority < 1 {
		priority = 1
	}

	return priority
}

// SortByPriority orders alerts ascending by priority, most urgent first.
// Equal priorities rank the higher severity first, then fewer
// days-until-stockout.
func SortByPriority(alerts []*domain.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Priority != alerts[j].Priority {
			return alerts[i].Priority < alerts[j].Priority
		}
		if alerts[i].Severity != alerts[j].Severity {
			return severityRank(alerts[i].Severity) > severityRank(alerts[j].Severity)
		}
		return alerts[i].DaysUntilStockout < alerts[j].DaysUntilStockout
	})
}

func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityEmergency:
		return 2
	case domain.SeverityCritical:
		return 1
	default:
		return 0
	}
}

// Summarize aggregates a batch of alerts: severity counts, the five most
// urgent unresolved alerts, and the value at risk. Products without a unit
// cost contribute nothing to the value and are counted separately.
func (g *Generator) Summarize(alerts []*domain.Alert) *domain.AlertSummary {
	summary := &domain.AlertSummary{
		TotalAlerts:      len(alerts),
		CountsBySeverity: make(map[domain.Severity]int),
		GeneratedAt:      g.now(),
	}

	products := make(map[int64]struct{})
	unresolved := make([]*domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		summary.CountsBySeverity[a.Severity]++
		if _, ok := products[a.ProductID]; !ok {
			products[a.ProductID] = struct{}{}
			if a.UnitCost > 0 {
				summary.AtRiskValue += float64(a.RecommendedQty) * a.UnitCost
			} else {
				summary.UnvaluedProducts++
			}
		}
		if !a.Resolved {
			unresolved = append(unresolved, a)
		}
	}
	summary.AtRiskProducts = len(products)

	SortByPriority(unresolved)
	if len(unresolved) > topAlertCount {
		unresolved = unresolved[:topAlertCount]
	}
	summary.TopAlerts = unresolved

	return summary
}

func alertMessage(rec *domain.ReorderRecommendation) string {
	switch {
	case rec.DaysUntilStockout <= 0:
		return fmt.Sprintf("%s is out of stock; order %d units now", rec.ProductName, rec.RecommendedQty)
	case rec.DaysUntilStockout < rec.SupplierLeadTime:
		return fmt.Sprintf("%s runs out in %.1f days, below the %.1f day supplier lead time; order %d units",
			rec.ProductName, rec.DaysUntilStockout, rec.SupplierLeadTime, rec.RecommendedQty)
	default:
		return fmt.Sprintf("%s runs out in %.1f days; order %d units by %s",
			rec.ProductName, rec.DaysUntilStockout, rec.RecommendedQty,
			rec.RecommendedOrderDate.Format("2006-01-02"))
	}
}
