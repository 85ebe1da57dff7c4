package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

const stockTransactionColumns = `id, product_id, warehouse_id, kind, quantity_delta,
		previous_quantity, new_quantity, performed_by, reference_id, notes, occurred_at`

// StockTransactionRepo implementación del log append-only sobre PostgreSQL
// (usable con pool o tx). La tabla no recibe UPDATE ni DELETE desde la app.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

// Create persiste una transacción de stock.
func (r *StockTransactionRepo) Create(txn *entity.StockTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_transactions (id, product_id, warehouse_id, kind, quantity_delta,
			previous_quantity, new_quantity, performed_by, reference_id, notes, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	performedBy := nullable(txn.PerformedBy)
	referenceID := nullable(txn.ReferenceID)
	_, err := r.q.Exec(context.Background(), query,
		txn.ID, txn.ProductID, txn.WarehouseID, string(txn.Kind), txn.QuantityDelta,
		txn.PreviousQuantity, txn.NewQuantity, performedBy, referenceID, txn.Notes, txn.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("create stock transaction: %w", err)
	}
	return nil
}

// ListFor lista transacciones de un par producto/bodega, más reciente primero.
func (r *StockTransactionRepo) ListFor(productID, warehouseID string, limit int) ([]*entity.StockTransaction, error) {
	query := `
		SELECT ` + stockTransactionColumns + `
		FROM stock_transactions
		WHERE product_id = $1 AND warehouse_id = $2
		ORDER BY occurred_at DESC, id DESC
		LIMIT $3`
	rows, err := r.q.Query(context.Background(), query, productID, warehouseID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return scanTransactions(rows)
}

// ListByWarehouse lista transacciones de una bodega en un rango de fechas.
func (r *StockTransactionRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	query := `
		SELECT ` + stockTransactionColumns + `
		FROM stock_transactions WHERE warehouse_id = $1`
	args := []any{warehouseID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions by warehouse: %w", err)
	}
	return scanTransactions(rows)
}

// SumDeltas suma los deltas de un par producto/bodega (verificación de
// integridad: debe igualar la cantidad del StockRecord).
func (r *StockTransactionRepo) SumDeltas(productID, warehouseID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity_delta), 0)
		FROM stock_transactions
		WHERE product_id = $1 AND warehouse_id = $2`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, productID, warehouseID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum deltas: %w", err)
	}
	return sum, nil
}

func scanTransactions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}) ([]*entity.StockTransaction, error) {
	defer rows.Close()
	var list []*entity.StockTransaction
	for rows.Next() {
		var (
			txn         entity.StockTransaction
			kind        string
			performedBy *string
			referenceID *string
		)
		if err := rows.Scan(&txn.ID, &txn.ProductID, &txn.WarehouseID, &kind, &txn.QuantityDelta,
			&txn.PreviousQuantity, &txn.NewQuantity, &performedBy, &referenceID, &txn.Notes, &txn.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txn.Kind = entity.TransactionKind(kind)
		if performedBy != nil {
			txn.PerformedBy = *performedBy
		}
		if referenceID != nil {
			txn.ReferenceID = *referenceID
		}
		list = append(list, &txn)
	}
	return list, rows.Err()
}

// nullable convierte "" a NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
