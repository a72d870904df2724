package analysis

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
)

// fakeOrderRepo feeds canned records to the analyzers. Window filtering is the
// repository's job in production, so the fake returns everything as-is.
type fakeOrderRepo struct {
	pos   []domain.PurchaseOrderRecord
	lines []domain.SaleLineRecord
	err   error
}

func (f *fakeOrderRepo) QueryPurchaseOrders(_ context.Context, _ int64, _ time.Time) ([]domain.PurchaseOrderRecord, error) {
	return f.pos, f.err
}

func (f *fakeOrderRepo) QuerySaleLines(_ context.Context, _ int64, _ time.Time) ([]domain.SaleLineRecord, error) {
	return f.lines, f.err
}

func (f *fakeOrderRepo) GetProductSnapshot(_ context.Context, productID int64) (*domain.ProductSnapshot, error) {
	return nil, &domain.NotFoundError{Entity: "product", ID: productID}
}

func (f *fakeOrderRepo) ListProductIDs(_ context.Context) ([]int64, error) {
	return nil, nil
}

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func po(confirm string, leadDays int, plannedOffset int) domain.PurchaseOrderRecord {
	c := ts(confirm)
	effective := c.AddDate(0, 0, leadDays)
	planned := effective.AddDate(0, 0, plannedOffset)
	return domain.PurchaseOrderRecord{
		SupplierID:            1,
		State:                 "completed",
		ConfirmationDate:      &c,
		PlannedDeliveryDate:   &planned,
		EffectiveDeliveryDate: &effective,
	}
}

func TestLeadTimeAnalyzeRobustStats(t *testing.T) {
	// Lead times [5,6,6,7,45]: 45 is an IQR outlier. The last order arrived
	// 3 days after its planned date, everything else on time.
	repo := &fakeOrderRepo{pos: []domain.PurchaseOrderRecord{
		po("2025-05-01", 5, 0),
		po("2025-05-08", 6, 0),
		po("2025-05-15", 6, 0),
		po("2025-05-22", 7, 0),
		po("2025-06-01", 45, -3),
	}}

	a := NewLeadTimeAnalyzer(repo)
	a.now = func() time.Time { return ts("2025-08-01") }

	profile, err := a.Analyze(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if profile.MedianDays != 6 {
		t.Errorf("MedianDays = %v, want 6", profile.MedianDays)
	}
	if profile.SampleSize != 4 {
		t.Errorf("SampleSize = %d, want 4", profile.SampleSize)
	}
	if len(profile.Outliers) != 1 || profile.Outliers[0] != 45 {
		t.Errorf("Outliers = %v, want [45]", profile.Outliers)
	}
	if profile.MinDays != 5 || profile.MaxDays != 7 {
		t.Errorf("Min/Max = %v/%v, want 5/7", profile.MinDays, profile.MaxDays)
	}

	wantStdDev := math.Sqrt(0.5)
	if math.Abs(profile.StdDevDays-wantStdDev) > 1e-9 {
		t.Errorf("StdDevDays = %v, want %v", profile.StdDevDays, wantStdDev)
	}

	wantVariability := 1 - wantStdDev/6
	if math.Abs(profile.VariabilityScore-wantVariability) > 1e-9 {
		t.Errorf("VariabilityScore = %v, want %v", profile.VariabilityScore, wantVariability)
	}

	// 4 of 5 orders within planned + 1 day tolerance.
	if math.Abs(profile.OnTimeRate-80) > 1e-9 {
		t.Errorf("OnTimeRate = %v, want 80", profile.OnTimeRate)
	}

	wantReliability := wantVariability*50 + 40
	if math.Abs(profile.ReliabilityScore-wantReliability) > 1e-9 {
		t.Errorf("ReliabilityScore = %v, want %v", profile.ReliabilityScore, wantReliability)
	}
}

func TestLeadTimeAnalyzeOnTimeTolerance(t *testing.T) {
	// One day late is still on time.
	repo := &fakeOrderRepo{pos: []domain.PurchaseOrderRecord{
		po("2025-05-01", 7, -1),
	}}

	a := NewLeadTimeAnalyzer(repo)
	a.now = func() time.Time { return ts("2025-08-01") }

	profile, err := a.Analyze(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if profile.OnTimeRate != 100 {
		t.Errorf("OnTimeRate = %v, want 100 for one-day-late delivery", profile.OnTimeRate)
	}
}

func TestLeadTimeAnalyzeDiscardsInvalidMeasurements(t *testing.T) {
	repo := &fakeOrderRepo{pos: []domain.PurchaseOrderRecord{
		po("2025-05-01", -2, 0),  // delivery before confirmation
		po("2025-05-02", 400, 0), // beyond a year
		po("2025-05-03", 10, 0),
	}}

	a := NewLeadTimeAnalyzer(repo)
	a.now = func() time.Time { return ts("2025-08-01") }

	profile, err := a.Analyze(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if profile.SampleSize != 1 || profile.MedianDays != 10 {
		t.Errorf("got sample=%d median=%v, want 1/10", profile.SampleSize, profile.MedianDays)
	}
}

func TestLeadTimeAnalyzeNoData(t *testing.T) {
	tests := []struct {
		name string
		pos  []domain.PurchaseOrderRecord
	}{
		{"NoOrders", nil},
		{"OnlyInvalid", []domain.PurchaseOrderRecord{po("2025-05-01", -5, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewLeadTimeAnalyzer(&fakeOrderRepo{pos: tt.pos})
			a.now = func() time.Time { return ts("2025-08-01") }

			_, err := a.Analyze(context.Background(), 1, 0)
			if !domain.IsNoData(err) {
				t.Errorf("Analyze() error = %v, want NoDataError", err)
			}
		})
	}
}

func TestLeadTimeAnalyzeFallsBackToPlannedDate(t *testing.T) {
	c := ts("2025-05-01")
	planned := c.AddDate(0, 0, 9)
	repo := &fakeOrderRepo{pos: []domain.PurchaseOrderRecord{{
		SupplierID:          1,
		State:               "confirmed",
		ConfirmationDate:    &c,
		PlannedDeliveryDate: &planned,
	}}}

	a := NewLeadTimeAnalyzer(repo)
	a.now = func() time.Time { return ts("2025-08-01") }

	profile, err := a.Analyze(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if profile.MedianDays != 9 {
		t.Errorf("MedianDays = %v, want 9 from planned date", profile.MedianDays)
	}
	// No effective date means the order cannot count toward on-time stats.
	if profile.OnTimeRate != 0 {
		t.Errorf("OnTimeRate = %v, want 0", profile.OnTimeRate)
	}
}
