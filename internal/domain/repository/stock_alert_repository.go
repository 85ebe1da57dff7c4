package repository

import "github.com/jhoicas/stock-engine/internal/domain/entity"

// StockAlertRepository puerto de persistencia de alertas de stock bajo.
type StockAlertRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(id string) (*entity.StockAlert, error)
	// GetActive devuelve la alerta ACTIVE del par producto/bodega, o nil, nil.
	// El motor garantiza a lo sumo una (find-or-create, nunca duplicar).
	GetActive(productID, warehouseID string) (*entity.StockAlert, error)
	Create(alert *entity.StockAlert) error
	Update(alert *entity.StockAlert) error
	// ListActive lista alertas ACTIVE; warehouseID vacío = todas las bodegas.
	ListActive(warehouseID string, limit, offset int) ([]*entity.StockAlert, error)
	// MarkNotified marca NotificationSent tras entregar al notificador externo
	// (best-effort, fuera de la transacción de stock).
	MarkNotified(id string) error
}
