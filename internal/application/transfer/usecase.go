package transfer

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/application/ledger"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// UseCase orquesta traslados multi-ítem entre dos bodegas a través de su
// máquina de estados (DRAFT → PENDING → IN_TRANSIT → COMPLETED, CANCELLED
// desde cualquier estado no terminal). Los débitos y créditos del ledger
// ocurren en puntos de transición bien definidos:
//   - PENDING → IN_TRANSIT debita el origen (TRANSFER_OUT) por cada ítem,
//     todo o nada: el stock sale de la disponibilidad del origen antes de la
//     recepción física.
//   - recepción de un ítem acredita el destino (TRANSFER_IN) con la cantidad
//     recibida, que puede diferir de la solicitada (la merma queda visible en
//     el ítem, no se corrige en silencio).
type UseCase struct {
	txRunner      TxRunner
	transferRepo  repository.StockTransferRepository // lecturas fuera de tx
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	ledgerUC      *ledger.UseCase // notificación post-commit de alertas
	log           *logger.Logger
}

// NewUseCase construye el caso de uso de traslados.
func NewUseCase(
	txRunner TxRunner,
	transferRepo repository.StockTransferRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	ledgerUC *ledger.UseCase,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		transferRepo:  transferRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		ledgerUC:      ledgerUC,
		log:           log,
	}
}

// RequestItem un producto solicitado dentro del traslado.
type RequestItem struct {
	ProductID string
	Quantity  decimal.Decimal
}

// RequestInput entrada para solicitar un traslado.
type RequestInput struct {
	SourceWarehouseID      string
	DestinationWarehouseID string
	Items                  []RequestItem
	RequestedBy            string
	// Draft deja el traslado en DRAFT (borrador) en lugar de PENDING.
	Draft bool
}

// Request crea el traslado con sus ítems en PENDING (o DRAFT). La
// disponibilidad del origen NO se verifica aquí sino al avanzar a
// IN_TRANSIT, donde ocurre el débito real: un traslado pendiente puede
// existir contra stock insuficiente.
func (uc *UseCase) Request(ctx context.Context, in RequestInput) (*entity.StockTransfer, error) {
	if err := uc.validateRequest(in); err != nil {
		return nil, err
	}

	now := time.Now()
	status := entity.TransferPending
	if in.Draft {
		status = entity.TransferDraft
	}
	t := &entity.StockTransfer{
		ID:                     uuid.New().String(),
		TransferCode:           newTransferCode(),
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Status:                 status,
		RequestedBy:            in.RequestedBy,
		RequestedAt:            now,
	}
	for _, item := range in.Items {
		t.Items = append(t.Items, &entity.TransferItem{
			ID:                uuid.New().String(),
			TransferID:        t.ID,
			ProductID:         item.ProductID,
			RequestedQuantity: item.Quantity,
			Status:            entity.ItemPending,
		})
	}

	err := uc.txRunner.RunTransfer(ctx, func(
		transferRepo repository.StockTransferRepository,
		_ repository.StockRecordRepository,
		_ repository.StockTransactionRepository,
		_ repository.StockAlertRepository,
	) error {
		return transferRepo.Create(t)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("code", t.TransferCode).
		Str("source", t.SourceWarehouseID).
		Str("destination", t.DestinationWarehouseID).
		Int("items", len(t.Items)).
		Msg("traslado solicitado")
	return t, nil
}

// Advance mueve el traslado al estado destino aplicando la tabla de
// transiciones. PENDING → IN_TRANSIT bloquea todos los registros de origen en
// orden ascendente de producto (evita deadlocks con traslados solapados) y
// los debita todo-o-nada: si un ítem dejaría cantidad negativa, ningún débito
// se compromete.
func (uc *UseCase) Advance(ctx context.Context, transferID string, to entity.TransferStatus, by string) error {
	if transferID == "" || !to.Valid() {
		return domain.ErrInvalidInput
	}
	if to == entity.TransferCancelled {
		return uc.Cancel(ctx, transferID, by)
	}

	var notices []*entity.StockAlert
	err := ledger.WithRetry(ctx, func() error {
		notices = nil
		return uc.txRunner.RunTransfer(ctx, func(
			transferRepo repository.StockTransferRepository,
			recordRepo repository.StockRecordRepository,
			logRepo repository.StockTransactionRepository,
			alertRepo repository.StockAlertRepository,
		) error {
			t, err := transferRepo.GetByIDForUpdate(transferID)
			if err != nil {
				return err
			}
			if t == nil {
				return domain.ErrNotFound
			}
			if !t.Status.CanTransitionTo(to) {
				return domain.ErrInvalidTransition
			}

			switch to {
			case entity.TransferPending:
				t.Status = entity.TransferPending
				return transferRepo.UpdateStatus(t)

			case entity.TransferInTransit:
				ns, err := uc.dispatchInTx(transferRepo, recordRepo, logRepo, alertRepo, t, by)
				if err != nil {
					return err
				}
				notices = ns
				return nil

			case entity.TransferCompleted:
				// Solo legal cuando todos los ítems ya fueron recibidos;
				// el cierre normal ocurre solo en ReceiveItem.
				if !t.AllItemsReceived() {
					return domain.ErrInvalidTransition
				}
				completedAt := time.Now()
				t.Status = entity.TransferCompleted
				t.CompletedAt = &completedAt
				return transferRepo.UpdateStatus(t)
			}
			return domain.ErrInvalidTransition
		})
	})
	if err != nil {
		return err
	}
	uc.ledgerUC.DispatchAlerts(notices)
	uc.log.Info().
		Str("transfer_id", transferID).
		Str("to", string(to)).
		Str("by", by).
		Msg("traslado avanzado")
	return nil
}

// dispatchInTx PENDING → IN_TRANSIT: debita el origen por cada ítem y los
// marca TRANSFERRED. Estampa aprobación.
func (uc *UseCase) dispatchInTx(
	transferRepo repository.StockTransferRepository,
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
	t *entity.StockTransfer,
	by string,
) ([]*entity.StockAlert, error) {
	// Orden fijo de bloqueo por producto ascendente.
	items := make([]*entity.TransferItem, len(t.Items))
	copy(items, t.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	now := time.Now()
	var notices []*entity.StockAlert
	for _, item := range items {
		_, notice, err := ledger.ApplyDeltaInTx(recordRepo, logRepo, alertRepo, ledger.DeltaInput{
			ProductID:   item.ProductID,
			WarehouseID: t.SourceWarehouseID,
			Delta:       item.RequestedQuantity.Neg(),
			Kind:        entity.KindTransferOut,
			PerformedBy: by,
			ReferenceID: t.ID,
			Notes:       "traslado " + t.TransferCode,
		}, now)
		if err != nil {
			return nil, err
		}
		if notice != nil {
			notices = append(notices, notice)
		}
		item.Status = entity.ItemTransferred
		if err := transferRepo.UpdateItem(item); err != nil {
			return nil, err
		}
	}

	approvedAt := now
	t.Status = entity.TransferInTransit
	t.ApprovedBy = by
	t.ApprovedAt = &approvedAt
	return notices, transferRepo.UpdateStatus(t)
}

// ReceiveItem confirma la llegada de un ítem mientras el traslado está
// IN_TRANSIT: acredita el destino con la cantidad recibida (TRANSFER_IN,
// creando el registro destino si es el primer ingreso) y marca el ítem
// RECEIVED. Cuando todos los ítems quedan RECEIVED el traslado pasa solo a
// COMPLETED.
func (uc *UseCase) ReceiveItem(ctx context.Context, transferID, itemID string, received decimal.Decimal, by string) error {
	if transferID == "" || itemID == "" {
		return domain.ErrInvalidInput
	}
	if received.IsNegative() {
		return domain.ErrInvalidInput
	}

	var notices []*entity.StockAlert
	err := ledger.WithRetry(ctx, func() error {
		notices = nil
		return uc.txRunner.RunTransfer(ctx, func(
			transferRepo repository.StockTransferRepository,
			recordRepo repository.StockRecordRepository,
			logRepo repository.StockTransactionRepository,
			alertRepo repository.StockAlertRepository,
		) error {
			t, err := transferRepo.GetByIDForUpdate(transferID)
			if err != nil {
				return err
			}
			if t == nil {
				return domain.ErrNotFound
			}
			if t.Status != entity.TransferInTransit {
				return domain.ErrInvalidTransition
			}
			item := t.ItemByID(itemID)
			if item == nil {
				return domain.ErrNotFound
			}
			if item.Status != entity.ItemTransferred {
				return domain.ErrInvalidTransition
			}

			now := time.Now()
			// received == 0: nada llegó; la merma total queda visible en el
			// ítem (solicitado vs recibido) sin acreditar el destino.
			if received.IsPositive() {
				_, notice, err := ledger.ApplyDeltaInTx(recordRepo, logRepo, alertRepo, ledger.DeltaInput{
					ProductID:   item.ProductID,
					WarehouseID: t.DestinationWarehouseID,
					Delta:       received,
					Kind:        entity.KindTransferIn,
					PerformedBy: by,
					ReferenceID: t.ID,
					Notes:       "traslado " + t.TransferCode,
					AutoCreate:  true,
				}, now)
				if err != nil {
					return err
				}
				if notice != nil {
					notices = append(notices, notice)
				}
			}

			qty := received
			item.ReceivedQuantity = &qty
			item.Status = entity.ItemReceived
			if err := transferRepo.UpdateItem(item); err != nil {
				return err
			}

			if t.AllItemsReceived() {
				completedAt := now
				t.Status = entity.TransferCompleted
				t.CompletedAt = &completedAt
				return transferRepo.UpdateStatus(t)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	uc.ledgerUC.DispatchAlerts(notices)
	return nil
}

// Cancel cancela el traslado desde cualquier estado no terminal. Si estaba
// IN_TRANSIT, los ítems TRANSFERRED se reversan con un crédito compensatorio
// al origen antes de completar la cancelación; los ya RECEIVED permanecen en
// destino (la mercancía ya llegó).
func (uc *UseCase) Cancel(ctx context.Context, transferID, by string) error {
	if transferID == "" {
		return domain.ErrInvalidInput
	}

	var notices []*entity.StockAlert
	err := ledger.WithRetry(ctx, func() error {
		notices = nil
		return uc.txRunner.RunTransfer(ctx, func(
			transferRepo repository.StockTransferRepository,
			recordRepo repository.StockRecordRepository,
			logRepo repository.StockTransactionRepository,
			alertRepo repository.StockAlertRepository,
		) error {
			t, err := transferRepo.GetByIDForUpdate(transferID)
			if err != nil {
				return err
			}
			if t == nil {
				return domain.ErrNotFound
			}
			if !t.Status.CanTransitionTo(entity.TransferCancelled) {
				return domain.ErrInvalidTransition
			}

			now := time.Now()
			items := make([]*entity.TransferItem, len(t.Items))
			copy(items, t.Items)
			sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

			for _, item := range items {
				switch item.Status {
				case entity.ItemTransferred:
					_, notice, err := ledger.ApplyDeltaInTx(recordRepo, logRepo, alertRepo, ledger.DeltaInput{
						ProductID:   item.ProductID,
						WarehouseID: t.SourceWarehouseID,
						Delta:       item.RequestedQuantity,
						Kind:        entity.KindTransferIn,
						PerformedBy: by,
						ReferenceID: t.ID,
						Notes:       "reversa de traslado " + t.TransferCode,
					}, now)
					if err != nil {
						return err
					}
					if notice != nil {
						notices = append(notices, notice)
					}
					item.Status = entity.ItemCancelled
				case entity.ItemPending:
					item.Status = entity.ItemCancelled
				default:
					continue
				}
				if err := transferRepo.UpdateItem(item); err != nil {
					return err
				}
			}

			t.Status = entity.TransferCancelled
			return transferRepo.UpdateStatus(t)
		})
	})
	if err != nil {
		return err
	}
	uc.ledgerUC.DispatchAlerts(notices)
	uc.log.Info().
		Str("transfer_id", transferID).
		Str("by", by).
		Msg("traslado cancelado")
	return nil
}

// GetByID devuelve el traslado con sus ítems.
func (uc *UseCase) GetByID(ctx context.Context, transferID string) (*entity.StockTransfer, error) {
	if transferID == "" {
		return nil, domain.ErrInvalidInput
	}
	t, err := uc.transferRepo.GetByID(transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// List lista traslados por estado (vacío = todos).
func (uc *UseCase) List(ctx context.Context, status entity.TransferStatus, limit, offset int) ([]*entity.StockTransfer, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.transferRepo.List(status, limit, offset)
}

func (uc *UseCase) validateRequest(in RequestInput) error {
	if in.SourceWarehouseID == "" || in.DestinationWarehouseID == "" || len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" || !item.Quantity.IsPositive() {
			return domain.ErrInvalidInput
		}
		if seen[item.ProductID] {
			return domain.ErrDuplicate
		}
		seen[item.ProductID] = true
	}

	for _, warehouseID := range []string{in.SourceWarehouseID, in.DestinationWarehouseID} {
		wh, err := uc.warehouseRepo.GetByID(warehouseID)
		if err != nil {
			return err
		}
		if wh == nil || !wh.IsActive {
			return domain.ErrNotFound
		}
	}
	for _, item := range in.Items {
		p, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return err
		}
		if p == nil || !p.IsActive {
			return domain.ErrNotFound
		}
	}
	return nil
}

// newTransferCode genera un código legible y único (TRF-XXXXXXXX).
func newTransferCode() string {
	return "TRF-" + strings.ToUpper(uuid.New().String()[:8])
}
