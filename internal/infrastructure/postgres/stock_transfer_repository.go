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

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

const stockTransferColumns = `id, transfer_code, source_warehouse_id, destination_warehouse_id,
		status, requested_by, approved_by, requested_at, approved_at, completed_at`

// StockTransferRepo implementación de StockTransferRepository sobre PostgreSQL
// (usable con pool o tx).
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

// Create persiste el traslado y todos sus ítems (dentro de la tx del caller).
func (r *StockTransferRepo) Create(t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, transfer_code, source_warehouse_id, destination_warehouse_id,
			status, requested_by, approved_by, requested_at, approved_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.TransferCode, t.SourceWarehouseID, t.DestinationWarehouseID,
		string(t.Status), t.RequestedBy, nullable(t.ApprovedBy), t.RequestedAt, t.ApprovedAt, t.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock transfer: %w", err)
	}

	itemQuery := `
		INSERT INTO transfer_items (id, transfer_id, product_id, requested_quantity, received_quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range t.Items {
		_, err := r.q.Exec(context.Background(), itemQuery,
			item.ID, item.TransferID, item.ProductID, item.RequestedQuantity,
			item.ReceivedQuantity, string(item.Status),
		)
		if err != nil {
			return fmt.Errorf("create transfer item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el traslado con sus ítems; nil si no existe.
func (r *StockTransferRepo) GetByID(id string) (*entity.StockTransfer, error) {
	query := `
		SELECT ` + stockTransferColumns + `
		FROM stock_transfers WHERE id = $1`
	return r.getOne(query, id)
}

// GetByIDForUpdate bloquea la fila del traslado (SELECT FOR UPDATE) para
// serializar avances concurrentes del mismo traslado.
func (r *StockTransferRepo) GetByIDForUpdate(id string) (*entity.StockTransfer, error) {
	query := `
		SELECT ` + stockTransferColumns + `
		FROM stock_transfers WHERE id = $1
		FOR UPDATE`
	return r.getOne(query, id)
}

func (r *StockTransferRepo) getOne(query, id string) (*entity.StockTransfer, error) {
	var (
		t          entity.StockTransfer
		status     string
		approvedBy *string
	)
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.TransferCode, &t.SourceWarehouseID, &t.DestinationWarehouseID,
		&status, &t.RequestedBy, &approvedBy, &t.RequestedAt, &t.ApprovedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	t.Status = entity.TransferStatus(status)
	if approvedBy != nil {
		t.ApprovedBy = *approvedBy
	}
	items, err := r.loadItems(t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return &t, nil
}

func (r *StockTransferRepo) loadItems(transferID string) ([]*entity.TransferItem, error) {
	query := `
		SELECT id, transfer_id, product_id, requested_quantity, received_quantity, status
		FROM transfer_items WHERE transfer_id = $1
		ORDER BY product_id`
	rows, err := r.q.Query(context.Background(), query, transferID)
	if err != nil {
		return nil, fmt.Errorf("load transfer items: %w", err)
	}
	defer rows.Close()

	var items []*entity.TransferItem
	for rows.Next() {
		var (
			item   entity.TransferItem
			status string
		)
		if err := rows.Scan(&item.ID, &item.TransferID, &item.ProductID,
			&item.RequestedQuantity, &item.ReceivedQuantity, &status); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		item.Status = entity.TransferItemStatus(status)
		items = append(items, &item)
	}
	return items, rows.Err()
}

// UpdateStatus persiste estado, aprobación y cierre del traslado.
func (r *StockTransferRepo) UpdateStatus(t *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers
		SET status = $2, approved_by = $3, approved_at = $4, completed_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, string(t.Status), nullable(t.ApprovedBy), t.ApprovedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock transfer: %w", err)
	}
	return nil
}

// UpdateItem persiste estado y cantidad recibida del ítem.
func (r *StockTransferRepo) UpdateItem(item *entity.TransferItem) error {
	query := `
		UPDATE transfer_items
		SET status = $2, received_quantity = $3
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, string(item.Status), item.ReceivedQuantity,
	)
	if err != nil {
		return fmt.Errorf("update transfer item: %w", err)
	}
	return nil
}

// List lista traslados por estado (vacío = todos), más reciente primero.
func (r *StockTransferRepo) List(status entity.TransferStatus, limit, offset int) ([]*entity.StockTransfer, error) {
	query := `
		SELECT ` + stockTransferColumns + `
		FROM stock_transfers`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, string(status))
		pos++
	}
	query += fmt.Sprintf(" ORDER BY requested_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockTransfer
	for rows.Next() {
		var (
			t          entity.StockTransfer
			st         string
			approvedBy *string
		)
		if err := rows.Scan(&t.ID, &t.TransferCode, &t.SourceWarehouseID, &t.DestinationWarehouseID,
			&st, &t.RequestedBy, &approvedBy, &t.RequestedAt, &t.ApprovedAt, &t.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		t.Status = entity.TransferStatus(st)
		if approvedBy != nil {
			t.ApprovedBy = *approvedBy
		}
		list = append(list, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range list {
		items, err := r.loadItems(t.ID)
		if err != nil {
			return nil, err
		}
		t.Items = items
	}
	return list, nil
}
