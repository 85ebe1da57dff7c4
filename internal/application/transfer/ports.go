package transfer

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios que necesita el flujo de traslados: el traslado y sus ítems,
// más el trío del ledger para los débitos/créditos en los puntos de
// transición. Todo o nada.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		transferRepo repository.StockTransferRepository,
		recordRepo repository.StockRecordRepository,
		logRepo repository.StockTransactionRepository,
		alertRepo repository.StockAlertRepository,
	) error) error
}
