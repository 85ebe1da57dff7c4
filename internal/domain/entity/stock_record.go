package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa la existencia actual de un producto en una bodega.
// Es la fila materializada y autoritativa de cantidad: toda mutación pasa por
// el ledger y queda registrada en stock_transactions.
// Se crea en el primer ingreso del par producto/bodega y nunca se borra
// físicamente mientras existan alertas o transacciones que la referencien
// (se desactiva con IsActive).
type StockRecord struct {
	ProductID      string
	WarehouseID    string
	Quantity       decimal.Decimal // siempre >= 0
	MinQuantity    decimal.Decimal
	MaxQuantity    decimal.Decimal
	AlertThreshold decimal.Decimal
	LastStockCheck time.Time
	IsActive       bool
	UpdatedAt      time.Time
}
