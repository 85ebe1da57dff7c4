package memory

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/fulfillment"
	"github.com/jhoicas/stock-engine/internal/application/ledger"
	"github.com/jhoicas/stock-engine/internal/application/transfer"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var (
	_ ledger.TxRunner      = (*TxRunner)(nil)
	_ transfer.TxRunner    = (*TxRunner)(nil)
	_ fulfillment.TxRunner = (*TxRunner)(nil)
	_ alert.TxRunner       = (*TxRunner)(nil)
)

// TxRunner transacciones sobre el Store en memoria. Clona el estado al
// comenzar, ejecuta fn sobre la copia y solo la publica si fn termina sin
// error: el rollback descarta la copia y el estado visible queda intacto.
// El mutex del Store serializa las transacciones completas.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el Store dado.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

func (r *TxRunner) run(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	work := r.s.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	r.s.st = work
	return nil
}

// Run implementa el puerto del ledger.
func (r *TxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	return r.run(ctx, func(st *state) error {
		return fn(
			&StockRecordRepo{st: st},
			&StockTransactionRepo{st: st},
			&StockAlertRepo{st: st},
		)
	})
}

// RunTransfer implementa el puerto del flujo de traslados.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	transferRepo repository.StockTransferRepository,
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	return r.run(ctx, func(st *state) error {
		return fn(
			&StockTransferRepo{st: st},
			&StockRecordRepo{st: st},
			&StockTransactionRepo{st: st},
			&StockAlertRepo{st: st},
		)
	})
}

// RunFulfillment implementa el puerto del adaptador de órdenes.
func (r *TxRunner) RunFulfillment(ctx context.Context, fn func(
	restorationRepo repository.OrderRestorationRepository,
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	return r.run(ctx, func(st *state) error {
		return fn(
			&OrderRestorationRepo{st: st},
			&StockRecordRepo{st: st},
			&StockTransactionRepo{st: st},
			&StockAlertRepo{st: st},
		)
	})
}

// RunAlerts implementa el puerto de transiciones manuales de alertas.
func (r *TxRunner) RunAlerts(ctx context.Context, fn func(alertRepo repository.StockAlertRepository) error) error {
	return r.run(ctx, func(st *state) error {
		return fn(&StockAlertRepo{st: st})
	})
}
