package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// StockTransactionRepository puerto de persistencia del log append-only.
// No expone update ni delete: las transacciones son inmutables.
type StockTransactionRepository interface {
	Create(txn *entity.StockTransaction) error
	// ListFor lista las transacciones de un par producto/bodega, más reciente primero.
	ListFor(productID, warehouseID string, limit int) ([]*entity.StockTransaction, error)
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error)
	// SumDeltas suma los deltas de un par producto/bodega. Solo para
	// verificación de integridad: debe igualar la cantidad del StockRecord.
	SumDeltas(productID, warehouseID string) (decimal.Decimal, error)
}
