package dto

import "github.com/shopspring/decimal"

// OrderLineRequest una línea de la orden: producto, bodega y cantidad.
type OrderLineRequest struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// OrderLinesRequest líneas para reservar o reponer stock de una orden.
type OrderLinesRequest struct {
	Lines []OrderLineRequest `json:"lines"`
}

// AlertResponse una alerta de stock bajo.
type AlertResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	WarehouseID      string          `json:"warehouse_id"`
	Threshold        decimal.Decimal `json:"threshold"`
	CurrentLevel     decimal.Decimal `json:"current_level"`
	Status           string          `json:"status"`
	NotificationSent bool            `json:"notification_sent"`
}
