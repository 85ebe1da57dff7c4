package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertStatus estado de una alerta de stock bajo.
type AlertStatus string

const (
	AlertActive   AlertStatus = "ACTIVE"
	AlertResolved AlertStatus = "RESOLVED"
	// AlertIgnored es un override manual terminal: nunca se resuelve ni se
	// reactiva automáticamente; un nuevo cruce de umbral crea una alerta nueva.
	AlertIgnored AlertStatus = "IGNORED"
)

// StockAlert señal derivada de que la cantidad de un producto en una bodega
// cruzó su umbral configurado. A lo sumo una alerta ACTIVE por par
// producto/bodega (invariante del motor de alertas).
type StockAlert struct {
	ID               string
	ProductID        string
	WarehouseID      string
	Threshold        decimal.Decimal
	CurrentLevel     decimal.Decimal // snapshot de la cantidad al evaluar
	Status           AlertStatus
	NotificationSent bool
	CreatedAt        time.Time
	ResolvedAt       *time.Time
	ResolvedBy       string
}

// CanResolve y CanIgnore: ambas transiciones manuales solo valen desde ACTIVE.
func (a *StockAlert) CanResolve() bool { return a.Status == AlertActive }
func (a *StockAlert) CanIgnore() bool  { return a.Status == AlertActive }
