package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

const stockAlertColumns = `id, product_id, warehouse_id, threshold, current_level, status,
		notification_sent, created_at, resolved_at, resolved_by`

// StockAlertRepo implementación de StockAlertRepository sobre PostgreSQL
// (usable con pool o tx). Un índice único parcial sobre
// (product_id, warehouse_id) WHERE status = 'ACTIVE' respalda en la BD el
// invariante de una sola alerta activa por par.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

// GetByID obtiene una alerta por ID; nil si no existe.
func (r *StockAlertRepo) GetByID(id string) (*entity.StockAlert, error) {
	query := `
		SELECT ` + stockAlertColumns + `
		FROM stock_alerts WHERE id = $1`
	return r.scanOne(query, id)
}

// GetActive obtiene la alerta ACTIVE del par producto/bodega; nil si no hay.
func (r *StockAlertRepo) GetActive(productID, warehouseID string) (*entity.StockAlert, error) {
	query := `
		SELECT ` + stockAlertColumns + `
		FROM stock_alerts
		WHERE product_id = $1 AND warehouse_id = $2 AND status = 'ACTIVE'`
	return r.scanOne(query, productID, warehouseID)
}

func (r *StockAlertRepo) scanOne(query string, args ...any) (*entity.StockAlert, error) {
	var (
		a          entity.StockAlert
		status     string
		resolvedBy *string
	)
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&a.ID, &a.ProductID, &a.WarehouseID, &a.Threshold, &a.CurrentLevel, &status,
		&a.NotificationSent, &a.CreatedAt, &a.ResolvedAt, &resolvedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock alert: %w", err)
	}
	a.Status = entity.AlertStatus(status)
	if resolvedBy != nil {
		a.ResolvedBy = *resolvedBy
	}
	return &a, nil
}

// Create persiste una alerta nueva.
func (r *StockAlertRepo) Create(alert *entity.StockAlert) error {
	query := `
		INSERT INTO stock_alerts (id, product_id, warehouse_id, threshold, current_level, status,
			notification_sent, created_at, resolved_at, resolved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		alert.ID, alert.ProductID, alert.WarehouseID, alert.Threshold, alert.CurrentLevel,
		string(alert.Status), alert.NotificationSent, alert.CreatedAt, alert.ResolvedAt,
		nullable(alert.ResolvedBy),
	)
	if err != nil {
		return fmt.Errorf("create stock alert: %w", err)
	}
	return nil
}

// Update persiste estado, nivel y datos de resolución.
func (r *StockAlertRepo) Update(alert *entity.StockAlert) error {
	query := `
		UPDATE stock_alerts
		SET current_level = $2, status = $3, resolved_at = $4, resolved_by = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		alert.ID, alert.CurrentLevel, string(alert.Status), alert.ResolvedAt,
		nullable(alert.ResolvedBy),
	)
	if err != nil {
		return fmt.Errorf("update stock alert: %w", err)
	}
	return nil
}

// ListActive lista alertas ACTIVE; warehouseID vacío = todas las bodegas.
func (r *StockAlertRepo) ListActive(warehouseID string, limit, offset int) ([]*entity.StockAlert, error) {
	query := `
		SELECT ` + stockAlertColumns + `
		FROM stock_alerts WHERE status = 'ACTIVE'`
	args := []any{}
	pos := 1
	if warehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, warehouseID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockAlert
	for rows.Next() {
		var (
			a          entity.StockAlert
			status     string
			resolvedBy *string
		)
		if err := rows.Scan(&a.ID, &a.ProductID, &a.WarehouseID, &a.Threshold, &a.CurrentLevel,
			&status, &a.NotificationSent, &a.CreatedAt, &a.ResolvedAt, &resolvedBy); err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		a.Status = entity.AlertStatus(status)
		if resolvedBy != nil {
			a.ResolvedBy = *resolvedBy
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// MarkNotified marca la alerta como entregada al notificador (best-effort,
// fuera de la transacción de stock).
func (r *StockAlertRepo) MarkNotified(id string) error {
	query := `UPDATE stock_alerts SET notification_sent = true WHERE id = $1`
	if _, err := r.q.Exec(context.Background(), query, id); err != nil {
		return fmt.Errorf("mark alert notified: %w", err)
	}
	return nil
}
