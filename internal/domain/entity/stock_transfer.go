package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado del ciclo de vida de un traslado entre bodegas.
type TransferStatus string

const (
	TransferDraft     TransferStatus = "DRAFT"
	TransferPending   TransferStatus = "PENDING"
	TransferInTransit TransferStatus = "IN_TRANSIT"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// transferTransitions tabla de transiciones válidas. COMPLETED y CANCELLED
// son terminales; CANCELLED es alcanzable desde DRAFT, PENDING e IN_TRANSIT.
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferDraft:     {TransferPending, TransferCancelled},
	TransferPending:   {TransferInTransit, TransferCancelled},
	TransferInTransit: {TransferCompleted, TransferCancelled},
}

// CanTransitionTo indica si el cambio de estado es legal según la tabla.
func (s TransferStatus) CanTransitionTo(to TransferStatus) bool {
	for _, t := range transferTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Valid indica si el estado pertenece al conjunto cerrado.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferDraft, TransferPending, TransferInTransit, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// TransferItemStatus estado de un ítem; sigue (con retraso) al estado del padre.
type TransferItemStatus string

const (
	// ItemPending mientras el traslado está en DRAFT/PENDING.
	ItemPending TransferItemStatus = "PENDING"
	// ItemTransferred cuando el padre pasa a IN_TRANSIT: el origen ya fue
	// debitado aunque la mercancía no haya llegado.
	ItemTransferred TransferItemStatus = "TRANSFERRED"
	// ItemReceived al confirmar llegada; el destino se acredita con la
	// cantidad recibida (puede diferir de la solicitada: merma/sobrante).
	ItemReceived  TransferItemStatus = "RECEIVED"
	ItemCancelled TransferItemStatus = "CANCELLED"
)

// StockTransfer traslado planificado de stock entre dos bodegas distintas,
// multi-ítem, con ciclo de vida explícito.
type StockTransfer struct {
	ID                     string
	TransferCode           string // código único legible (TRF-XXXXXXXX)
	SourceWarehouseID      string
	DestinationWarehouseID string
	Status                 TransferStatus
	RequestedBy            string
	ApprovedBy             string
	RequestedAt            time.Time
	ApprovedAt             *time.Time
	CompletedAt            *time.Time
	Items                  []*TransferItem
}

// TransferItem un producto dentro de un traslado. Un ítem completado produce
// exactamente dos transacciones de stock: TRANSFER_OUT en origen y
// TRANSFER_IN en destino.
type TransferItem struct {
	ID                string
	TransferID        string
	ProductID         string
	RequestedQuantity decimal.Decimal
	ReceivedQuantity  *decimal.Decimal // nil hasta confirmar recepción
	Status            TransferItemStatus
}

// AllItemsReceived indica si todos los ítems fueron confirmados en destino.
func (t *StockTransfer) AllItemsReceived() bool {
	if len(t.Items) == 0 {
		return false
	}
	for _, it := range t.Items {
		if it.Status != ItemReceived {
			return false
		}
	}
	return true
}

// ItemByID busca un ítem por su ID; nil si no pertenece al traslado.
func (t *StockTransfer) ItemByID(itemID string) *TransferItem {
	for _, it := range t.Items {
		if it.ID == itemID {
			return it
		}
	}
	return nil
}
