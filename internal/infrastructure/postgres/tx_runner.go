package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/fulfillment"
	"github.com/jhoicas/stock-engine/internal/application/ledger"
	"github.com/jhoicas/stock-engine/internal/application/transfer"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// Un solo runner implementa los cuatro puertos transaccionales del motor.
var (
	_ ledger.TxRunner      = (*TxRunner)(nil)
	_ transfer.TxRunner    = (*TxRunner)(nil)
	_ fulfillment.TxRunner = (*TxRunner)(nil)
	_ alert.TxRunner       = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, entregando
// repositorios atados a esa tx. Commit si fn retorna nil, Rollback si no.
// Deadlocks y fallos de serialización se traducen a ErrConcurrencyConflict
// para que el caller reintente la operación completa.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if isConcurrencyFailure(err) {
			return domain.ErrConcurrencyConflict
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isConcurrencyFailure(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run transacción del ledger: registro, log y alertas.
func (r *TxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewStockRecordRepository(tx), NewStockTransactionRepository(tx), NewStockAlertRepository(tx))
	})
}

// RunTransfer transacción del flujo de traslados: traslado + trío del ledger.
func (r *TxRunner) RunTransfer(ctx context.Context, fn func(
	transferRepo repository.StockTransferRepository,
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewStockTransferRepository(tx), NewStockRecordRepository(tx),
			NewStockTransactionRepository(tx), NewStockAlertRepository(tx))
	})
}

// RunFulfillment transacción del adaptador de órdenes: marcador de
// reposiciones + trío del ledger.
func (r *TxRunner) RunFulfillment(ctx context.Context, fn func(
	restorationRepo repository.OrderRestorationRepository,
	recordRepo repository.StockRecordRepository,
	logRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewOrderRestorationRepository(tx), NewStockRecordRepository(tx),
			NewStockTransactionRepository(tx), NewStockAlertRepository(tx))
	})
}

// RunAlerts transacción para transiciones manuales de alertas.
func (r *TxRunner) RunAlerts(ctx context.Context, fn func(
	alertRepo repository.StockAlertRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewStockAlertRepository(tx))
	})
}
