// internal/scan/report.go
package scan

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// ReportCSV renders a scan result as a CSV document, one row per
// recommendation, for archival.
func ReportCSV(result *Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"product_id", "product_name", "current_stock", "days_until_stockout",
		"urgency", "recommended_qty", "recommended_order_date", "safety_stock",
		"reorder_point", "supplier_id", "supplier_lead_time", "confidence_score",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write report header: %w", err)
	}

	for _, rec := range result.Recommendations {
		row := []string{
			strconv.FormatInt(rec.ProductID, 10),
			rec.ProductName,
			strconv.FormatFloat(rec.CurrentStock, 'f', 1, 64),
			strconv.FormatFloat(rec.DaysUntilStockout, 'f', 1, 64),
			string(rec.Urgency),
			strconv.Itoa(rec.RecommendedQty),
			rec.RecommendedOrderDate.Format("2006-01-02"),
			strconv.Itoa(rec.SafetyStock),
			strconv.Itoa(rec.ReorderPoint),
			strconv.FormatInt(rec.SupplierID, 10),
			strconv.FormatFloat(rec.SupplierLeadTime, 'f', 1, 64),
			strconv.FormatFloat(rec.ConfidenceScore, 'f', 0, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write report row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush report: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportKey returns the archive object key for a scan run.
func ReportKey(t time.Time) string {
	return fmt.Sprintf("scans/%s/replenishment_%s.csv",
		t.Format("2006-01-02"), t.Format("150405"))
}
