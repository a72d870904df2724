// internal/domain/models.go
package domain

import "time"

// PurchaseOrderRecord is a single confirmed purchase order as returned by the
// order repository. EffectiveDeliveryDate is nil while the order is in transit.
type PurchaseOrderRecord struct {
	ID                    int64      `json:"id" db:"id"`
	SupplierID            int64      `json:"supplier_id" db:"supplier_id"`
	State                 string     `json:"state" db:"state"`
	ConfirmationDate      *time.Time `json:"confirmation_date" db:"confirmation_date"`
	PlannedDeliveryDate   *time.Time `json:"planned_delivery_date" db:"planned_delivery_date"`
	EffectiveDeliveryDate *time.Time `json:"effective_delivery_date" db:"effective_delivery_date"`
}

// LeadTimeProfile summarizes a supplier's historical delivery behavior over a
// rolling window. It is recomputed on every request and never persisted.
type LeadTimeProfile struct {
	SupplierID       int64     `json:"supplier_id"`
	MedianDays       float64   `json:"median_days"`
	MeanDays         float64   `json:"mean_days"`
	MinDays          float64   `json:"min_days"`
	MaxDays          float64   `json:"max_days"`
	StdDevDays       float64   `json:"std_dev_days"`
	VariabilityScore float64   `json:"variability_score"` // 0..1, high = consistent
	OnTimeRate       float64   `json:"on_time_rate"`      // 0..100
	ReliabilityScore float64   `json:"reliability_score"` // 0..100
	SampleSize       int       `json:"sample_size"`
	LeadTimes        []float64 `json:"lead_times"`
	Outliers         []float64 `json:"outliers"`
	WindowMonths     int       `json:"window_months"`
}

// SaleLineRecord is a delivered sale order line. DeliveryDate is the effective
// delivery date of the parent order, not its creation date.
type SaleLineRecord struct {
	ID           int64     `json:"id" db:"id"`
	ProductID    int64     `json:"product_id" db:"product_id"`
	Quantity     float64   `json:"quantity" db:"quantity"`
	Revenue      float64   `json:"revenue" db:"revenue"`
	CustomerID   int64     `json:"customer_id" db:"customer_id"`
	OrderID      int64     `json:"order_id" db:"order_id"`
	DeliveryDate time.Time `json:"delivery_date" db:"delivery_date"`
}

// Trend is the coarse sales-trend classification for a product.
type Trend string

const (
	TrendGrowing   Trend = "growing"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
	TrendVolatile  Trend = "volatile"
)

// WeeklySales is one ISO-week bucket of a product's delivered sales.
type WeeklySales struct {
	WeekStart  time.Time `json:"week_start"` // Monday
	Quantity   float64   `json:"quantity"`
	Revenue    float64   `json:"revenue"`
	OrderCount int       `json:"order_count"`
}

// SalesProfile summarizes a product's delivered sales over a rolling window.
// Recomputed per request; immutable once returned.
type SalesProfile struct {
	ProductID          int64              `json:"product_id"`
	TotalQuantity      float64            `json:"total_quantity"`
	TotalRevenue       float64            `json:"total_revenue"`
	AvgDailySales      float64            `json:"avg_daily_sales"`
	AvgWeeklySales     float64            `json:"avg_weekly_sales"`
	AvgMonthlySales    float64            `json:"avg_monthly_sales"`
	Trend              Trend              `json:"trend"`
	TrendPercent       float64            `json:"trend_percent"`
	Variability        float64            `json:"variability"`     // coefficient of variation
	WeekdayPattern     map[string]float64 `json:"weekday_pattern"` // % of volume per weekday, sums to 100
	PeakWeekday        string             `json:"peak_weekday"`
	CustomerCount      int                `json:"customer_count"`
	RecurringCustomers int                `json:"recurring_customers"`
	WeeklySeries       []WeeklySales      `json:"weekly_series"`
	WindowMonths       int                `json:"window_months"`
	SampleSize         int                `json:"sample_size"` // delivered lines in window
}

// ProductSnapshot is the minimal live view of a product needed for a
// replenishment prediction. UnitCost is required for at-risk valuation; a zero
// value means the cost is unknown and the product is excluded from valuation.
type ProductSnapshot struct {
	ProductID         int64   `json:"product_id" db:"product_id"`
	Name              string  `json:"name" db:"name"`
	CurrentStock      float64 `json:"current_stock" db:"current_stock"`
	PrimarySupplierID int64   `json:"primary_supplier_id" db:"primary_supplier_id"`
	UnitCost          float64 `json:"unit_cost" db:"unit_cost"`
}

// ForecastDay is one day of the 7-day projection.
type ForecastDay struct {
	Date            time.Time `json:"date"`
	PredictedSales  float64   `json:"predicted_sales"`
	PredictedStock  float64   `json:"predicted_stock"`
	StockoutRiskPct float64   `json:"stockout_risk_pct"`
}

// ReorderRecommendation is the full output of a replenishment prediction for
// one product. Ephemeral: recomputed on demand, never cached across calls.
type ReorderRecommendation struct {
	ProductID            int64         `json:"product_id"`
	ProductName          string        `json:"product_name"`
	CurrentStock         float64       `json:"current_stock"`
	DaysUntilStockout    float64       `json:"days_until_stockout"`
	Urgency              Urgency       `json:"urgency"`
	RecommendedQty       int           `json:"recommended_qty"`
	RecommendedOrderDate time.Time     `json:"recommended_order_date"`
	SafetyStock          int           `json:"safety_stock"`
	ReorderPoint         int           `json:"reorder_point"`
	SupplierID           int64         `json:"supplier_id"`
	SupplierLeadTime     float64       `json:"supplier_lead_time"`
	Forecast             []ForecastDay `json:"forecast"`
	ConfidenceScore      float64       `json:"confidence_score"` // 50..100
	Reasoning            string        `json:"reasoning"`
	RiskFactors          []string      `json:"risk_factors"`
	GeneratedAt          time.Time     `json:"generated_at"`
}

// Alert is derived from a recommendation whose urgency is above LOW.
type Alert struct {
	ID                string     `json:"id"`
	ProductID         int64      `json:"product_id"`
	ProductName       string     `json:"product_name"`
	Severity          Severity   `json:"severity"`
	Type              AlertType  `json:"type"`
	Message           string     `json:"message"`
	RecommendedAction Action     `json:"recommended_action"`
	Priority          int        `json:"priority"` // 1..100, 1 = most urgent
	DaysUntilStockout float64    `json:"days_until_stockout"`
	RecommendedQty    int        `json:"recommended_qty"`
	UnitCost          float64    `json:"unit_cost"`
	CreatedAt         time.Time  `json:"created_at"`
	ExpiresAt         time.Time  `json:"expires_at"`
	Resolved          bool       `json:"resolved"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
}

// Expired reports whether the alert has passed its TTL at the given instant.
func (a *Alert) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// AlertSummary aggregates the outcome of a catalog scan.
type AlertSummary struct {
	TotalAlerts      int              `json:"total_alerts"`
	CountsBySeverity map[Severity]int `json:"counts_by_severity"`
	TopAlerts        []*Alert         `json:"top_alerts"` // 5 most urgent unresolved
	AtRiskProducts   int              `json:"at_risk_products"`
	AtRiskValue      float64          `json:"at_risk_value"`
	UnvaluedProducts int              `json:"unvalued_products"` // missing unit cost
	GeneratedAt      time.Time        `json:"generated_at"`
}
