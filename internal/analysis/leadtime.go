package analysis

import (
	"context"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultLeadTimeWindowMonths is the rolling window for lead-time analysis.
	DefaultLeadTimeWindowMonths = 6

	// Lead times outside (0, 365) days indicate data errors, not real deliveries.
	maxLeadTimeDays = 365

	// onTimeToleranceDays is the grace period added to the planned date when
	// computing the on-time rate.
	onTimeToleranceDays = 1
)

// LeadTimeAnalyzer converts a supplier's purchase-order history into a robust
// lead-time profile.
type LeadTimeAnalyzer struct {
	repo repository.OrderRepository
	now  func() time.Time
}

func NewLeadTimeAnalyzer(repo repository.OrderRepository) *LeadTimeAnalyzer {
	return &LeadTimeAnalyzer{repo: repo, now: time.Now}
}

// Analyze computes the lead-time profile for a supplier over the last
// monthsHistory months (0 uses the default window). It returns a
// domain.NoDataError when no usable orders exist in the window.
func (a *LeadTimeAnalyzer) Analyze(ctx context.Context, supplierID int64, monthsHistory int) (*domain.LeadTimeProfile, error) {
	if monthsHistory <= 0 {
		monthsHistory = DefaultLeadTimeWindowMonths
	}

	dateFrom := a.now().AddDate(0, -monthsHistory, 0)
	orders, err := a.repo.QueryPurchaseOrders(ctx, supplierID, dateFrom)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return nil, &domain.NoDataError{
			Entity: "supplier",
			ID:     supplierID,
			Reason: "no confirmed purchase orders in window",
		}
	}

	leadTimes := make([]float64, 0, len(orders))
	var onTime, withPlanned int
	for _, po := range orders {
		if po.ConfirmationDate == nil {
			continue
		}

		delivery := po.EffectiveDeliveryDate
		if delivery == nil {
			delivery = po.PlannedDeliveryDate
		}
		if delivery == nil {
			continue
		}

		days := delivery.Sub(*po.ConfirmationDate).Hours() / 24
		if days <= 0 || days >= maxLeadTimeDays {
			log.Warn().
				Err(&domain.InvalidMeasurement{Value: days, Reason: "lead time outside (0, 365) days"}).
				Int64("supplier_id", supplierID).
				Int64("po_id", po.ID).
				Msg("discarding out-of-range lead time")
			continue
		}
		leadTimes = append(leadTimes, days)

		// On-time rate only considers orders with both dates.
		if po.PlannedDeliveryDate != nil && po.EffectiveDeliveryDate != nil {
			withPlanned++
			tolerance := po.PlannedDeliveryDate.AddDate(0, 0, onTimeToleranceDays)
			if !po.EffectiveDeliveryDate.After(tolerance) {
				onTime++
			}
		}
	}

	if len(leadTimes) == 0 {
		return nil, &domain.NoDataError{
			Entity: "supplier",
			ID:     supplierID,
			Reason: "no valid lead times after filtering",
		}
	}

	kept, outliers := RemoveOutliersIQR(leadTimes)
	if len(kept) == 0 {
		// IQR can only empty the set on degenerate input; keep the raw sample.
		kept = leadTimes
		outliers = nil
	}

	mean := Mean(kept)
	stddev := StdDev(kept)

	variability := 0.0
	if mean > 0 {
		variability = Clamp(1-stddev/mean, 0, 1)
	}

	onTimeRate := 0.0
	if withPlanned > 0 {
		onTimeRate = float64(onTime) / float64(withPlanned) * 100
	}

	return &domain.LeadTimeProfile{
		SupplierID:       supplierID,
		MedianDays:       Median(kept),
		MeanDays:         mean,
		MinDays:          Min(kept),
		MaxDays:          Max(kept),
		StdDevDays:       stddev,
		VariabilityScore: variability,
		OnTimeRate:       onTimeRate,
		ReliabilityScore: variability*50 + onTimeRate/2,
		SampleSize:       len(kept),
		LeadTimes:        kept,
		Outliers:         outliers,
		WindowMonths:     monthsHistory,
	}, nil
}
