// Package notify contiene las implementaciones del puerto de notificación de
// alertas. La entrega real (email/SMS/push) es responsabilidad de otro
// subsistema; aquí solo se publica el evento.
package notify

import (
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

var _ alert.Notifier = (*LogNotifier)(nil)

// LogNotifier publica la alerta en el log estructurado. Es la implementación
// por defecto mientras no haya un canal de notificaciones externo configurado.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier construye el notificador sobre el logger dado.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify registra la alerta con nivel warn. Nunca falla.
func (n *LogNotifier) Notify(a *entity.StockAlert) error {
	n.log.Warn().
		Str("alert_id", a.ID).
		Str("product_id", a.ProductID).
		Str("warehouse_id", a.WarehouseID).
		Str("threshold", a.Threshold.String()).
		Str("current_level", a.CurrentLevel.String()).
		Msg("alerta de stock bajo")
	return nil
}
