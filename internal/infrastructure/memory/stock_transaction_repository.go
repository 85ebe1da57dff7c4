package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo log append-only en memoria.
type StockTransactionRepo struct {
	s  *Store
	st *state
}

// NewStockTransactionRepository construye el repositorio standalone.
func NewStockTransactionRepository(s *Store) *StockTransactionRepo {
	return &StockTransactionRepo{s: s}
}

func (r *StockTransactionRepo) with(fn func(st *state) error) error {
	if r.st != nil {
		return fn(r.st)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.st)
}

func (r *StockTransactionRepo) Create(txn *entity.StockTransaction) error {
	return r.with(func(st *state) error {
		if txn.ID == "" {
			txn.ID = uuid.New().String()
		}
		cp := *txn
		st.transactions = append(st.transactions, &cp)
		return nil
	})
}

func (r *StockTransactionRepo) ListFor(productID, warehouseID string, limit int) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	err := r.with(func(st *state) error {
		for _, t := range st.transactions {
			if t.ProductID == productID && t.WarehouseID == warehouseID {
				out = append(out, t)
			}
		}
		sortNewestFirst(out)
		out = paginate(out, limit, 0)
		return nil
	})
	return out, err
}

func (r *StockTransactionRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	err := r.with(func(st *state) error {
		for _, t := range st.transactions {
			if t.WarehouseID != warehouseID {
				continue
			}
			if from != nil && t.OccurredAt.Before(*from) {
				continue
			}
			if to != nil && t.OccurredAt.After(*to) {
				continue
			}
			out = append(out, t)
		}
		sortNewestFirst(out)
		out = paginate(out, limit, offset)
		return nil
	})
	return out, err
}

func (r *StockTransactionRepo) SumDeltas(productID, warehouseID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.with(func(st *state) error {
		for _, t := range st.transactions {
			if t.ProductID == productID && t.WarehouseID == warehouseID {
				sum = sum.Add(t.QuantityDelta)
			}
		}
		return nil
	})
	return sum, err
}

func sortNewestFirst(txns []*entity.StockTransaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].OccurredAt.Equal(txns[j].OccurredAt) {
			return txns[i].OccurredAt.After(txns[j].OccurredAt)
		}
		return txns[i].ID > txns[j].ID
	})
}
