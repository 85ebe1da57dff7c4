package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest un producto solicitado dentro del traslado.
type TransferItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// RequestTransferRequest solicita un traslado entre dos bodegas distintas.
type RequestTransferRequest struct {
	SourceWarehouseID      string                `json:"source_warehouse_id"`
	DestinationWarehouseID string                `json:"destination_warehouse_id"`
	Items                  []TransferItemRequest `json:"items"`
	Draft                  bool                  `json:"draft,omitempty"`
}

// AdvanceTransferRequest avanza el traslado al estado destino.
type AdvanceTransferRequest struct {
	To string `json:"to"` // PENDING, IN_TRANSIT, COMPLETED
}

// ReceiveItemRequest confirma la llegada de un ítem con la cantidad recibida
// (puede diferir de la solicitada; la merma queda registrada).
type ReceiveItemRequest struct {
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// TransferItemResponse estado de un ítem del traslado.
type TransferItemResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	RequestedQuantity decimal.Decimal  `json:"requested_quantity"`
	ReceivedQuantity  *decimal.Decimal `json:"received_quantity,omitempty"`
	Status            string           `json:"status"`
}

// TransferResponse estado completo de un traslado.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	TransferCode           string                 `json:"transfer_code"`
	SourceWarehouseID      string                 `json:"source_warehouse_id"`
	DestinationWarehouseID string                 `json:"destination_warehouse_id"`
	Status                 string                 `json:"status"`
	RequestedBy            string                 `json:"requested_by"`
	ApprovedBy             string                 `json:"approved_by,omitempty"`
	RequestedAt            time.Time              `json:"requested_at"`
	ApprovedAt             *time.Time             `json:"approved_at,omitempty"`
	CompletedAt            *time.Time             `json:"completed_at,omitempty"`
	Items                  []TransferItemResponse `json:"items"`
}
