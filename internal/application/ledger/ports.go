package ledger

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que lectura de cantidad, escritura,
// inserción en el log y reevaluación de alerta comprometan o reviertan juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		recordRepo repository.StockRecordRepository,
		logRepo repository.StockTransactionRepository,
		alertRepo repository.StockAlertRepository,
	) error) error
}
