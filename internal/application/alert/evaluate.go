package alert

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// Evaluate reevalúa el estado de alerta de un par producto/bodega tras un
// cambio de cantidad, usando el repositorio atado a la transacción del caller.
// El ledger la invoca como paso explícito y síncrono dentro de ApplyDelta:
// ningún cambio de cantidad comprometido puede dejar la alerta desactualizada.
//
// Regla por estado:
//   - cantidad <= umbral y no hay ACTIVE: se crea una alerta ACTIVE con
//     CurrentLevel = cantidad (aunque exista una IGNORED retenida; la IGNORED
//     no revive).
//   - cantidad <= umbral y hay ACTIVE: se actualiza CurrentLevel.
//   - cantidad > umbral y hay ACTIVE: pasa a RESOLVED con ResolvedAt.
//   - las IGNORED nunca se resuelven ni se reactivan automáticamente.
//
// Devuelve la alerta a entregar al notificador post-commit (creada o con
// nivel actualizado), o nil si no hay nada que notificar.
func Evaluate(alertRepo repository.StockAlertRepository, record *entity.StockRecord, now time.Time) (*entity.StockAlert, error) {
	active, err := alertRepo.GetActive(record.ProductID, record.WarehouseID)
	if err != nil {
		return nil, err
	}
	below := record.Quantity.LessThanOrEqual(record.AlertThreshold)

	switch {
	case below && active == nil:
		a := &entity.StockAlert{
			ID:           uuid.New().String(),
			ProductID:    record.ProductID,
			WarehouseID:  record.WarehouseID,
			Threshold:    record.AlertThreshold,
			CurrentLevel: record.Quantity,
			Status:       entity.AlertActive,
			CreatedAt:    now,
		}
		if err := alertRepo.Create(a); err != nil {
			return nil, err
		}
		return a, nil

	case below && active != nil:
		active.CurrentLevel = record.Quantity
		if err := alertRepo.Update(active); err != nil {
			return nil, err
		}
		return active, nil

	case !below && active != nil:
		resolvedAt := now
		active.Status = entity.AlertResolved
		active.CurrentLevel = record.Quantity
		active.ResolvedAt = &resolvedAt
		if err := alertRepo.Update(active); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
