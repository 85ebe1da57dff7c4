package fulfillment

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con el trío
// del ledger más el marcador de reposiciones procesadas. Una orden multi-línea
// se reserva o se repone completa o no se toca.
type TxRunner interface {
	RunFulfillment(ctx context.Context, fn func(
		restorationRepo repository.OrderRestorationRepository,
		recordRepo repository.StockRecordRepository,
		logRepo repository.StockTransactionRepository,
		alertRepo repository.StockAlertRepository,
	) error) error
}
