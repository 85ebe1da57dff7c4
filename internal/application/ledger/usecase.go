package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// UseCase es el Stock Ledger: dueño de la mutación de cantidades y de sus
// invariantes (no-negatividad, consistencia con el log, alerta al día).
// Toda mutación corre en una transacción con bloqueo de fila
// (SELECT FOR UPDATE) y Commit/Rollback.
type UseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	recordRepo    repository.StockRecordRepository      // lecturas fuera de tx
	logRepo       repository.StockTransactionRepository // lecturas fuera de tx
	alertRepo     repository.StockAlertRepository       // MarkNotified post-commit
	notifier      alert.Notifier
	log           *logger.Logger
}

// NewUseCase construye el ledger.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
	notifier alert.Notifier,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		recordRepo:    recordRepo,
		logRepo:       logRepo,
		alertRepo:     alertRepo,
		notifier:      notifier,
		log:           log,
	}
}

// DeltaInput entrada para aplicar un cambio de cantidad.
type DeltaInput struct {
	ProductID   string
	WarehouseID string
	Delta       decimal.Decimal // con signo
	Kind        entity.TransactionKind
	PerformedBy string
	ReferenceID string // orden o traslado asociado (opcional)
	Notes       string
	// AutoCreate crea el StockRecord en el primer ingreso del par
	// producto/bodega. Sin AutoCreate, un par inexistente es ErrNotFound.
	AutoCreate bool
	// AlertThreshold umbral inicial al auto-crear el registro.
	AlertThreshold decimal.Decimal
}

// ApplyDelta aplica un delta de cantidad de forma transaccional: bloquea la
// fila, calcula nueva cantidad (ErrInsufficientStock si quedaría negativa),
// persiste StockRecord + StockTransaction y reevalúa la alerta, todo en una
// sola transacción. La notificación se entrega después del commit.
func (uc *UseCase) ApplyDelta(ctx context.Context, in DeltaInput) (*entity.StockTransaction, error) {
	if err := validateDelta(in); err != nil {
		return nil, err
	}
	if err := uc.checkDirectory(in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}

	var (
		entry  *entity.StockTransaction
		notice *entity.StockAlert
	)
	err := WithRetry(ctx, func() error {
		entry, notice = nil, nil
		return uc.txRunner.Run(ctx, func(
			recordRepo repository.StockRecordRepository,
			logRepo repository.StockTransactionRepository,
			alertRepo repository.StockAlertRepository,
		) error {
			e, a, err := ApplyDeltaInTx(recordRepo, logRepo, alertRepo, in, time.Now())
			if err != nil {
				return err
			}
			entry, notice = e, a
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.dispatchAlert(notice)
	return entry, nil
}

// SetInput entrada para fijar una cantidad absoluta (conteo físico).
type SetInput struct {
	ProductID   string
	WarehouseID string
	NewQuantity decimal.Decimal
	PerformedBy string
	Notes       string
}

// SetAbsolute fija la cantidad a un valor absoluto (reconciliación de conteo
// físico). El delta registrado es NewQuantity - actual, kind ADJUSTMENT, y se
// estampa LastStockCheck. Mismos invariantes que ApplyDelta.
func (uc *UseCase) SetAbsolute(ctx context.Context, in SetInput) (*entity.StockTransaction, error) {
	if in.ProductID == "" || in.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.NewQuantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkDirectory(in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}

	var (
		entry  *entity.StockTransaction
		notice *entity.StockAlert
	)
	err := WithRetry(ctx, func() error {
		entry, notice = nil, nil
		return uc.txRunner.Run(ctx, func(
			recordRepo repository.StockRecordRepository,
			logRepo repository.StockTransactionRepository,
			alertRepo repository.StockAlertRepository,
		) error {
			now := time.Now()
			record, err := recordRepo.GetForUpdate(in.ProductID, in.WarehouseID)
			if err != nil {
				return err
			}
			if record == nil || !record.IsActive {
				return domain.ErrNotFound
			}
			delta := in.NewQuantity.Sub(record.Quantity)
			e, a, err := applyToRecord(recordRepo, logRepo, alertRepo, record, DeltaInput{
				ProductID:   in.ProductID,
				WarehouseID: in.WarehouseID,
				Delta:       delta,
				Kind:        entity.KindAdjustment,
				PerformedBy: in.PerformedBy,
				Notes:       in.Notes,
			}, now, true)
			if err != nil {
				return err
			}
			entry, notice = e, a
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.dispatchAlert(notice)
	return entry, nil
}

// GetQuantity lectura pura de la cantidad actual. Cero si el par no existe.
func (uc *UseCase) GetQuantity(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	if productID == "" || warehouseID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	record, err := uc.recordRepo.Get(productID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	if record == nil {
		return decimal.Zero, nil
	}
	return record.Quantity, nil
}

// ListTransactions lista el historial de un par producto/bodega, más reciente primero.
func (uc *UseCase) ListTransactions(ctx context.Context, productID, warehouseID string, limit int) ([]*entity.StockTransaction, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.logRepo.ListFor(productID, warehouseID, limit)
}

// ListStock lista los registros activos de una bodega, ordenados por producto.
func (uc *UseCase) ListStock(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockRecord, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return uc.recordRepo.ListByWarehouse(warehouseID, limit, offset)
}

// ListWarehouseTransactions lista los movimientos de una bodega completa en un
// rango de fechas opcional, más reciente primero.
func (uc *UseCase) ListWarehouseTransactions(ctx context.Context, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return uc.logRepo.ListByWarehouse(warehouseID, from, to, limit, offset)
}

// DeactivateRecord baja lógica de un registro de stock. El historial y las
// alertas asociadas se conservan; el registro deja de aceptar movimientos.
func (uc *UseCase) DeactivateRecord(ctx context.Context, productID, warehouseID string) error {
	if productID == "" || warehouseID == "" {
		return domain.ErrInvalidInput
	}
	record, err := uc.recordRepo.Get(productID, warehouseID)
	if err != nil {
		return err
	}
	if record == nil || !record.IsActive {
		return domain.ErrNotFound
	}
	return uc.recordRepo.Deactivate(productID, warehouseID)
}

// SumDeltas suma de deltas del log para verificación de integridad:
// debe igualar GetQuantity en todo momento.
func (uc *UseCase) SumDeltas(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	return uc.logRepo.SumDeltas(productID, warehouseID)
}

// ApplyDeltaInTx aplica un delta usando repositorios atados a la transacción
// del caller. La usan el traslado (débitos/créditos por ítem) y el adaptador
// de fulfillment (reserva multi-línea) para compartir una sola transacción.
func ApplyDeltaInTx(
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
	in DeltaInput,
	now time.Time,
) (*entity.StockTransaction, *entity.StockAlert, error) {
	record, err := recordRepo.GetForUpdate(in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		if !in.AutoCreate {
			return nil, nil, domain.ErrNotFound
		}
		record = &entity.StockRecord{
			ProductID:      in.ProductID,
			WarehouseID:    in.WarehouseID,
			Quantity:       decimal.Zero,
			AlertThreshold: in.AlertThreshold,
			IsActive:       true,
			UpdatedAt:      now,
		}
		if err := recordRepo.Create(record); err != nil {
			return nil, nil, err
		}
	}
	if !record.IsActive {
		return nil, nil, domain.ErrNotFound
	}
	return applyToRecord(recordRepo, logRepo, alertRepo, record, in, now, false)
}

// applyToRecord muta un registro ya bloqueado: nueva cantidad, entrada en el
// log y reevaluación de alerta, en ese orden y dentro de la misma tx.
func applyToRecord(
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
	record *entity.StockRecord,
	in DeltaInput,
	now time.Time,
	stockCheck bool,
) (*entity.StockTransaction, *entity.StockAlert, error) {
	prev := record.Quantity
	next := prev.Add(in.Delta)
	if next.IsNegative() {
		return nil, nil, domain.ErrInsufficientStock
	}
	record.Quantity = next
	record.UpdatedAt = now
	if stockCheck {
		record.LastStockCheck = now
	}
	if err := recordRepo.UpdateQuantity(record); err != nil {
		return nil, nil, err
	}

	entry := newTransaction(in, prev, next, now)
	if err := logRepo.Create(entry); err != nil {
		return nil, nil, err
	}

	notice, err := alert.Evaluate(alertRepo, record, now)
	if err != nil {
		return nil, nil, err
	}
	return entry, notice, nil
}

// newTransaction arma la entrada inmutable del log para un delta ya aplicado.
func newTransaction(in DeltaInput, prev, next decimal.Decimal, now time.Time) *entity.StockTransaction {
	return &entity.StockTransaction{
		ID:               uuid.New().String(),
		ProductID:        in.ProductID,
		WarehouseID:      in.WarehouseID,
		Kind:             in.Kind,
		QuantityDelta:    next.Sub(prev),
		PreviousQuantity: prev,
		NewQuantity:      next,
		PerformedBy:      in.PerformedBy,
		ReferenceID:      in.ReferenceID,
		Notes:            in.Notes,
		OccurredAt:       now,
	}
}

func validateDelta(in DeltaInput) error {
	if in.ProductID == "" || in.WarehouseID == "" {
		return domain.ErrInvalidInput
	}
	if !in.Kind.Valid() {
		return domain.ErrInvalidInput
	}
	if in.Delta.IsZero() {
		return domain.ErrInvalidInput
	}
	return nil
}

// checkDirectory valida existencia y estado activo de producto y bodega en el
// directorio externo; un id ausente sube como ErrNotFound.
func (uc *UseCase) checkDirectory(productID, warehouseID string) error {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return domain.ErrNotFound
	}
	warehouse, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil || !warehouse.IsActive {
		return domain.ErrNotFound
	}
	return nil
}

// dispatchAlert entrega la alerta al notificador después del commit.
// Fire-and-forget: un fallo se loguea y jamás revierte la mutación de stock.
func (uc *UseCase) dispatchAlert(notice *entity.StockAlert) {
	if notice == nil {
		return
	}
	if err := uc.notifier.Notify(notice); err != nil {
		uc.log.Warn().Err(err).
			Str("alert_id", notice.ID).
			Msg("fallo al notificar alerta; la mutación de stock no se revierte")
		return
	}
	if err := uc.alertRepo.MarkNotified(notice.ID); err != nil {
		uc.log.Warn().Err(err).
			Str("alert_id", notice.ID).
			Msg("no se pudo marcar la alerta como notificada")
	}
}

// DispatchAlerts entrega un lote de alertas acumuladas en una transacción
// ajena (traslados, fulfillment) usando la misma política post-commit.
func (uc *UseCase) DispatchAlerts(notices []*entity.StockAlert) {
	for _, n := range notices {
		uc.dispatchAlert(n)
	}
}
