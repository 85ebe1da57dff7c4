package repository

import "github.com/jhoicas/stock-engine/internal/domain/entity"

// StockRecordRepository define el puerto para consultar/mutar el stock
// materializado por bodega+producto. Usado dentro de transacciones para
// garantizar consistencia con el log de transacciones.
type StockRecordRepository interface {
	// Get devuelve nil, nil si el par producto/bodega no existe.
	Get(productID, warehouseID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) para serializar
	// mutaciones concurrentes sobre el mismo par. nil, nil si no existe.
	GetForUpdate(productID, warehouseID string) (*entity.StockRecord, error)
	Create(record *entity.StockRecord) error
	// UpdateQuantity persiste Quantity, LastStockCheck y UpdatedAt.
	UpdateQuantity(record *entity.StockRecord) error
	ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockRecord, error)
	// Deactivate baja lógica: el registro nunca se borra físicamente mientras
	// haya alertas o transacciones que lo referencien.
	Deactivate(productID, warehouseID string) error
}
