package scan

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/internal/domain"
)

func TestReportCSV(t *testing.T) {
	result := &Result{
		Recommendations: []*domain.ReorderRecommendation{
			{
				ProductID:            1,
				ProductName:          "Espresso Beans 1kg",
				CurrentStock:         25,
				DaysUntilStockout:    2.5,
				Urgency:              domain.UrgencyEmergency,
				RecommendedQty:       149,
				RecommendedOrderDate: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
				SafetyStock:          9,
				ReorderPoint:         79,
				SupplierID:           9,
				SupplierLeadTime:     7,
				ConfidenceScore:      82,
			},
		},
	}

	data, err := ReportCSV(result)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "product_id", rows[0][0])
	assert.Len(t, rows[0], 12)
	assert.Equal(t, []string{
		"1", "Espresso Beans 1kg", "25.0", "2.5", "EMERGENCY", "149",
		"2025-08-15", "9", "79", "9", "7.0", "82",
	}, rows[1])
}

func TestReportCSVEmptyResult(t *testing.T) {
	data, err := ReportCSV(&Result{})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReportKey(t *testing.T) {
	key := ReportKey(time.Date(2025, 8, 15, 9, 30, 5, 0, time.UTC))
	assert.Equal(t, "scans/2025-08-15/replenishment_093005.csv", key)
}
