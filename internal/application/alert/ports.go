package alert

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando un
// repositorio de alertas atado a esa tx. Para las transiciones manuales
// (resolver / ignorar).
type TxRunner interface {
	RunAlerts(ctx context.Context, fn func(alertRepo repository.StockAlertRepository) error) error
}

// Notifier entrega la alerta al sistema externo de notificaciones
// (email/SMS/push). Se invoca después del commit y es fire-and-forget:
// un fallo se registra en el log y nunca revierte la mutación de stock.
type Notifier interface {
	Notify(alert *entity.StockAlert) error
}
