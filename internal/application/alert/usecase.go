package alert

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// UseCase transiciones manuales y consultas sobre alertas de stock bajo.
// La evaluación automática vive en Evaluate y la dispara el ledger.
type UseCase struct {
	txRunner  TxRunner
	alertRepo repository.StockAlertRepository // lecturas fuera de tx
	log       *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, alertRepo repository.StockAlertRepository, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, alertRepo: alertRepo, log: log}
}

// Resolve marca una alerta ACTIVE como RESOLVED por acción humana.
// ErrInvalidTransition si la alerta no está ACTIVE.
func (uc *UseCase) Resolve(ctx context.Context, alertID, by string) error {
	return uc.transition(ctx, alertID, by, entity.AlertResolved)
}

// Ignore marca una alerta ACTIVE como IGNORED (override manual terminal).
// La alerta retenida no revive: un cruce de umbral posterior crea una nueva.
func (uc *UseCase) Ignore(ctx context.Context, alertID, by string) error {
	return uc.transition(ctx, alertID, by, entity.AlertIgnored)
}

func (uc *UseCase) transition(ctx context.Context, alertID, by string, to entity.AlertStatus) error {
	if alertID == "" {
		return domain.ErrInvalidInput
	}
	err := uc.txRunner.RunAlerts(ctx, func(alertRepo repository.StockAlertRepository) error {
		a, err := alertRepo.GetByID(alertID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if a.Status != entity.AlertActive {
			return domain.ErrInvalidTransition
		}
		now := time.Now()
		a.Status = to
		a.ResolvedAt = &now
		a.ResolvedBy = by
		return alertRepo.Update(a)
	})
	if err != nil {
		return err
	}
	uc.log.Info().
		Str("alert_id", alertID).
		Str("status", string(to)).
		Str("by", by).
		Msg("transición manual de alerta")
	return nil
}

// ListActive lista alertas ACTIVE; warehouseID vacío = todas las bodegas.
func (uc *UseCase) ListActive(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockAlert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.alertRepo.ListActive(warehouseID, limit, offset)
}
