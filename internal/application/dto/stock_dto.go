package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyDeltaRequest registra un movimiento de stock (delta con signo).
type ApplyDeltaRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Delta       decimal.Decimal `json:"delta"`
	Kind        string          `json:"kind"` // PURCHASE, SALE, ADJUSTMENT, RETURN, INITIAL
	ReferenceID string          `json:"reference_id,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	// AutoCreate crea el registro en el primer ingreso del par producto/bodega.
	AutoCreate     bool            `json:"auto_create,omitempty"`
	AlertThreshold decimal.Decimal `json:"alert_threshold,omitempty"`
}

// SetQuantityRequest fija la cantidad absoluta (reconciliación de conteo físico).
type SetQuantityRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes,omitempty"`
}

// TransactionResponse una entrada del log de transacciones de stock.
type TransactionResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	WarehouseID      string          `json:"warehouse_id"`
	Kind             string          `json:"kind"`
	QuantityDelta    decimal.Decimal `json:"quantity_delta"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	PerformedBy      string          `json:"performed_by,omitempty"`
	ReferenceID      string          `json:"reference_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// StockRecordResponse estado actual de un registro de stock.
type StockRecordResponse struct {
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	MinQuantity    decimal.Decimal `json:"min_quantity"`
	MaxQuantity    decimal.Decimal `json:"max_quantity"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"`
	LastStockCheck *time.Time      `json:"last_stock_check,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// QuantityResponse cantidad actual de un par producto/bodega.
type QuantityResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}
