package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/repository"
)

type orderRepository struct {
	db *DB
}

// NewOrderRepository returns the postgres-backed order repository.
func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) QueryPurchaseOrders(ctx context.Context, supplierID int64, dateFrom time.Time) ([]domain.PurchaseOrderRecord, error) {
	query := `
        SELECT
            id,
            supplier_id,
            state,
            confirmation_date,
            planned_delivery_date,
            effective_delivery_date
        FROM purchase_orders
        WHERE supplier_id = $1
        AND state IN ('confirmed', 'completed')
        AND confirmation_date IS NOT NULL
        AND confirmation_date >= $2
        ORDER BY confirmation_date
    `

	var records []domain.PurchaseOrderRecord
	if err := r.db.SelectContext(ctx, &records, query, supplierID, dateFrom); err != nil {
		return nil, fmt.Errorf("query purchase orders for supplier %d: %w", supplierID, err)
	}

	return records, nil
}

func (r *orderRepository) QuerySaleLines(ctx context.Context, productID int64, dateFrom time.Time) ([]domain.SaleLineRecord, error) {
	query := `
        SELECT
            l.id,
            l.product_id,
            l.quantity,
            l.revenue,
            o.customer_id,
            l.order_id,
            o.effective_delivery_date AS delivery_date
        FROM sale_order_lines l
        JOIN sale_orders o ON o.id = l.order_id
        WHERE l.product_id = $1
        AND o.state IN ('confirmed', 'done')
        AND o.effective_delivery_date IS NOT NULL
        AND o.effective_delivery_date >= $2
        ORDER BY o.effective_delivery_date
    `

	var lines []domain.SaleLineRecord
	if err := r.db.SelectContext(ctx, &lines, query, productID, dateFrom); err != nil {
		return nil, fmt.Errorf("query sale lines for product %d: %w", productID, err)
	}

	return lines, nil
}

func (r *orderRepository) GetProductSnapshot(ctx context.Context, productID int64) (*domain.ProductSnapshot, error) {
	query := `
        SELECT
            p.id AS product_id,
            p.name,
            p.current_stock,
            COALESCE(p.primary_supplier_id, 0) AS primary_supplier_id,
            COALESCE(p.unit_cost, 0) AS unit_cost
        FROM products p
        WHERE p.id = $1 AND p.active
    `

	var snap domain.ProductSnapshot
	if err := r.db.GetContext(ctx, &snap, query, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "product", ID: productID}
		}
		return nil, fmt.Errorf("get product snapshot %d: %w", productID, err)
	}

	return &snap, nil
}

func (r *orderRepository) ListProductIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM products WHERE active ORDER BY id`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}

	return ids, nil
}
