package fulfillment

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/application/ledger"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// UseCase es el contrato angosto que consume el subsistema de órdenes:
// reservar/deducir stock al crear una orden y reponerlo al cancelarla.
// Nunca toca StockRecord ni el log directamente; todo pasa por el ledger.
type UseCase struct {
	txRunner TxRunner
	ledgerUC *ledger.UseCase // notificación post-commit de alertas
	log      *logger.Logger
}

// NewUseCase construye el adaptador de fulfillment.
func NewUseCase(txRunner TxRunner, ledgerUC *ledger.UseCase, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, ledgerUC: ledgerUC, log: log}
}

// OrderLine una línea de una orden: producto, bodega y cantidad.
type OrderLine struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
}

// ReserveForOrder deduce stock (kind SALE) por cada línea dentro de una sola
// transacción. El fallo de cualquier línea (insuficiencia incluida) revierte
// todas las líneas de la orden: nunca hay reserva parcial.
func (uc *UseCase) ReserveForOrder(ctx context.Context, orderID string, lines []OrderLine, by string) error {
	if err := validateLines(orderID, lines); err != nil {
		return err
	}
	sorted := sortLines(lines)

	var notices []*entity.StockAlert
	err := ledger.WithRetry(ctx, func() error {
		notices = nil
		return uc.txRunner.RunFulfillment(ctx, func(
			_ repository.OrderRestorationRepository,
			recordRepo repository.StockRecordRepository,
			logRepo repository.StockTransactionRepository,
			alertRepo repository.StockAlertRepository,
		) error {
			now := time.Now()
			for _, line := range sorted {
				_, notice, err := ledger.ApplyDeltaInTx(recordRepo, logRepo, alertRepo, ledger.DeltaInput{
					ProductID:   line.ProductID,
					WarehouseID: line.WarehouseID,
					Delta:       line.Quantity.Neg(),
					Kind:        entity.KindSale,
					PerformedBy: by,
					ReferenceID: orderID,
				}, now)
				if err != nil {
					return err
				}
				if notice != nil {
					notices = append(notices, notice)
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	uc.ledgerUC.DispatchAlerts(notices)
	uc.log.Info().
		Str("order_id", orderID).
		Int("lines", len(lines)).
		Msg("stock reservado para orden")
	return nil
}

// RestoreForCancelledOrder repone stock (ADJUSTMENT positivo) por cada línea
// de una orden cancelada. Idempotente por orderID: el marcador de procesado
// se inserta en la misma transacción que los créditos, así reprocesar la
// misma cancelación no repone dos veces.
func (uc *UseCase) RestoreForCancelledOrder(ctx context.Context, orderID string, lines []OrderLine, by string) error {
	if err := validateLines(orderID, lines); err != nil {
		return err
	}
	sorted := sortLines(lines)

	var (
		notices []*entity.StockAlert
		already bool
	)
	err := ledger.WithRetry(ctx, func() error {
		notices, already = nil, false
		return uc.txRunner.RunFulfillment(ctx, func(
			restorationRepo repository.OrderRestorationRepository,
			recordRepo repository.StockRecordRepository,
			logRepo repository.StockTransactionRepository,
			alertRepo repository.StockAlertRepository,
		) error {
			if err := restorationRepo.MarkProcessed(orderID, by); err != nil {
				if errors.Is(err, domain.ErrAlreadyProcessed) {
					already = true
					return nil
				}
				return err
			}
			now := time.Now()
			for _, line := range sorted {
				_, notice, err := ledger.ApplyDeltaInTx(recordRepo, logRepo, alertRepo, ledger.DeltaInput{
					ProductID:   line.ProductID,
					WarehouseID: line.WarehouseID,
					Delta:       line.Quantity,
					Kind:        entity.KindAdjustment,
					PerformedBy: by,
					ReferenceID: orderID,
					Notes:       "reposición por cancelación de orden",
				}, now)
				if err != nil {
					return err
				}
				if notice != nil {
					notices = append(notices, notice)
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	if already {
		uc.log.Info().Str("order_id", orderID).Msg("reposición ya aplicada; se ignora el reintento")
		return nil
	}
	uc.ledgerUC.DispatchAlerts(notices)
	uc.log.Info().
		Str("order_id", orderID).
		Int("lines", len(lines)).
		Msg("stock repuesto por orden cancelada")
	return nil
}

func validateLines(orderID string, lines []OrderLine) error {
	if orderID == "" || len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, line := range lines {
		if line.ProductID == "" || line.WarehouseID == "" || !line.Quantity.IsPositive() {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// sortLines devuelve las líneas en orden fijo de bloqueo
// (producto, bodega ascendente) para evitar deadlocks entre órdenes.
func sortLines(lines []OrderLine) []OrderLine {
	sorted := make([]OrderLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].WarehouseID < sorted[j].WarehouseID
	})
	return sorted
}
