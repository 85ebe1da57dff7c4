package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind clase de movimiento de stock (tipo cerrado, no string libre).
type TransactionKind string

const (
	KindPurchase    TransactionKind = "PURCHASE"
	KindSale        TransactionKind = "SALE"
	KindTransferOut TransactionKind = "TRANSFER_OUT"
	KindTransferIn  TransactionKind = "TRANSFER_IN"
	KindAdjustment  TransactionKind = "ADJUSTMENT"
	KindReturn      TransactionKind = "RETURN"
	KindInitial     TransactionKind = "INITIAL"
)

// Valid indica si el kind pertenece al conjunto cerrado de movimientos.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindPurchase, KindSale, KindTransferOut, KindTransferIn,
		KindAdjustment, KindReturn, KindInitial:
		return true
	}
	return false
}

// StockTransaction registro inmutable de un cambio de cantidad (append-only).
// Invariante: NewQuantity = PreviousQuantity + QuantityDelta y NewQuantity >= 0.
// Nunca se actualiza ni se borra después de creado; la suma de deltas de un
// par producto/bodega debe igualar la cantidad actual del StockRecord.
type StockTransaction struct {
	ID               string
	ProductID        string
	WarehouseID      string
	Kind             TransactionKind
	QuantityDelta    decimal.Decimal // con signo
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	PerformedBy      string // UserID
	ReferenceID      string // orden o traslado asociado (opcional)
	Notes            string
	OccurredAt       time.Time
}
