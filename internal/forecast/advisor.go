// internal/forecast/advisor.go
package forecast

import (
	"context"

	"github.com/andresuchdata/replenish/internal/domain"
)

// ForecastDays is the fixed horizon of the demand projection.
const ForecastDays = 7

// Request is the structured statistical summary sent to the reasoning
// collaborator. It carries everything the model needs so no further data
// access happens during the call.
type Request struct {
	ProductName string
	CurrentDate string

	AvgDailySales  float64
	AvgWeeklySales float64
	Trend          domain.Trend
	TrendPercent   float64
	Variability    float64
	WeekdayPattern map[string]float64
	PeakWeekday    string

	LeadTimeDays     float64
	ReliabilityScore float64

	CurrentStock      float64
	DaysUntilStockout float64
	Urgency           domain.Urgency
	RecommendedQty    int
}

// Explanation is a narrative plus bulleted risk factors for a recommendation.
type Explanation struct {
	Reasoning   string   `json:"reasoning"`
	RiskFactors []string `json:"riskFactors"`
}

// Advisor is the external reasoning collaborator. Both methods are
// non-deterministic and unreliable: callers must treat any error as a signal
// to use the deterministic fallback and must never surface it.
type Advisor interface {
	// Forecast7Days returns exactly ForecastDays non-negative daily unit-sales
	// predictions starting tomorrow.
	Forecast7Days(ctx context.Context, req Request) ([]float64, error)

	// Explain returns a short narrative and risk-factor list for a
	// recommendation context.
	Explain(ctx context.Context, req Request) (*Explanation, error)
}
