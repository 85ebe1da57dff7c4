package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockRecordColumns = `product_id, warehouse_id, quantity, min_quantity, max_quantity,
		alert_threshold, last_stock_check, is_active, updated_at`

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL
// (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

// Get obtiene el registro de stock de un producto en una bodega; nil si no existe.
func (r *StockRecordRepo) Get(productID, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2`
	return r.scanOne(query, productID, warehouseID)
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE) para
// serializar mutaciones concurrentes; nil si no existe.
func (r *StockRecordRepo) GetForUpdate(productID, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	return r.scanOne(query, productID, warehouseID)
}

func (r *StockRecordRepo) scanOne(query string, args ...any) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&rec.ProductID, &rec.WarehouseID, &rec.Quantity, &rec.MinQuantity, &rec.MaxQuantity,
		&rec.AlertThreshold, &rec.LastStockCheck, &rec.IsActive, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return &rec, nil
}

// Create inserta el registro (primer ingreso del par producto/bodega).
func (r *StockRecordRepo) Create(record *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (product_id, warehouse_id, quantity, min_quantity, max_quantity,
			alert_threshold, last_stock_check, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`
	_, err := r.q.Exec(context.Background(), query,
		record.ProductID, record.WarehouseID, record.Quantity, record.MinQuantity,
		record.MaxQuantity, record.AlertThreshold, record.LastStockCheck, record.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock record: %w", err)
	}
	return nil
}

// UpdateQuantity persiste cantidad, último conteo y updated_at.
func (r *StockRecordRepo) UpdateQuantity(record *entity.StockRecord) error {
	query := `
		UPDATE stock_records
		SET quantity = $3, last_stock_check = $4, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2`
	_, err := r.q.Exec(context.Background(), query,
		record.ProductID, record.WarehouseID, record.Quantity, record.LastStockCheck,
	)
	if err != nil {
		return fmt.Errorf("update stock record: %w", err)
	}
	return nil
}

// ListByWarehouse lista los registros activos de una bodega.
func (r *StockRecordRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records
		WHERE warehouse_id = $1 AND is_active
		ORDER BY product_id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockRecord
	for rows.Next() {
		var rec entity.StockRecord
		if err := rows.Scan(&rec.ProductID, &rec.WarehouseID, &rec.Quantity, &rec.MinQuantity,
			&rec.MaxQuantity, &rec.AlertThreshold, &rec.LastStockCheck, &rec.IsActive, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// Deactivate baja lógica del registro; no hay borrado físico.
func (r *StockRecordRepo) Deactivate(productID, warehouseID string) error {
	query := `
		UPDATE stock_records SET is_active = false, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2`
	_, err := r.q.Exec(context.Background(), query, productID, warehouseID)
	if err != nil {
		return fmt.Errorf("deactivate stock record: %w", err)
	}
	return nil
}
