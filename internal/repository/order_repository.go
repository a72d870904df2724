// internal/repository/order_repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
)

// OrderRepository is the read-only view of the business system's purchase and
// sale records. It returns only confirmed/delivered records; all further
// filtering (windows, outliers) is done by the analyzers.
type OrderRepository interface {
	// QueryPurchaseOrders returns confirmed/completed purchase orders for a
	// supplier with a confirmation date on or after dateFrom.
	QueryPurchaseOrders(ctx context.Context, supplierID int64, dateFrom time.Time) ([]domain.PurchaseOrderRecord, error)

	// QuerySaleLines returns delivered sale lines for a product whose
	// effective delivery date is on or after dateFrom.
	QuerySaleLines(ctx context.Context, productID int64, dateFrom time.Time) ([]domain.SaleLineRecord, error)

	// GetProductSnapshot returns live stock, primary supplier and unit cost
	// for a product. Unknown products yield a domain.NotFoundError.
	GetProductSnapshot(ctx context.Context, productID int64) (*domain.ProductSnapshot, error)

	// ListProductIDs returns the ids of all active products, for catalog scans.
	ListProductIDs(ctx context.Context) ([]int64, error)
}
