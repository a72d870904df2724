// internal/forecast/fallback.go
package forecast

import (
	"fmt"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
)

const reliabilityRiskThreshold = 70

// FallbackForecast projects the next ForecastDays days from the weekday
// seasonality alone: avgWeekly × weekdayShare/100 per day, starting tomorrow.
// Deterministic, used whenever the advisor is unavailable or rejected.
func FallbackForecast(profile *domain.SalesProfile, today time.Time) []float64 {
	values := make([]float64, ForecastDays)
	for i := 0; i < ForecastDays; i++ {
		day := today.AddDate(0, 0, i+1).Weekday().String()
		values[i] = profile.AvgWeeklySales * profile.WeekdayPattern[day] / 100
	}
	return values
}

// FallbackExplanation builds a templated narrative and rule-based risk
// factors from the recommendation context.
func FallbackExplanation(req Request) *Explanation {
	reasoning := fmt.Sprintf(
		"%s is projected to run out of stock in %.1f days at the current sales rate. "+
			"The supplier needs about %.1f days to deliver, so ordering %d units %s keeps the product available.",
		req.ProductName,
		req.DaysUntilStockout,
		req.LeadTimeDays,
		req.RecommendedQty,
		actionPhrase(req.Urgency),
	)

	var risks []string
	if req.Urgency == domain.UrgencyEmergency {
		risks = append(risks, "imminent stock-out")
	}
	if req.DaysUntilStockout < req.LeadTimeDays {
		risks = append(risks, "remaining days below supplier lead time")
	}
	if req.ReliabilityScore < reliabilityRiskThreshold {
		risks = append(risks, "unreliable supplier")
	}
	if req.Trend == domain.TrendGrowing {
		risks = append(risks, "demand increasing")
	}
	if req.Trend == domain.TrendVolatile {
		risks = append(risks, "unpredictable demand")
	}

	return &Explanation{
		Reasoning:   reasoning,
		RiskFactors: risks,
	}
}

func actionPhrase(u domain.Urgency) string {
	switch u {
	case domain.UrgencyEmergency:
		return "immediately"
	case domain.UrgencyCritical:
		return "today"
	case domain.UrgencyHigh:
		return "this week"
	default:
		return "before the reorder point is reached"
	}
}
