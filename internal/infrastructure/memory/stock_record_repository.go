package memory

import (
	"sort"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación en memoria del repositorio de stock.
// Con s != nil opera sobre el estado publicado bajo el mutex del Store;
// con st != nil está atado al snapshot de una transacción en curso.
type StockRecordRepo struct {
	s  *Store
	st *state
}

// NewStockRecordRepository construye el repositorio standalone.
func NewStockRecordRepository(s *Store) *StockRecordRepo {
	return &StockRecordRepo{s: s}
}

func (r *StockRecordRepo) with(fn func(st *state) error) error {
	if r.st != nil {
		return fn(r.st)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.st)
}

// Get devuelve nil, nil si el par producto/bodega no existe.
func (r *StockRecordRepo) Get(productID, warehouseID string) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := r.with(func(st *state) error {
		if rec, ok := st.records[recordKey(productID, warehouseID)]; ok {
			out = copyRecord(rec)
		}
		return nil
	})
	return out, err
}

// GetForUpdate es idéntico a Get: el mutex del Store ya serializa las
// transacciones, no hace falta bloqueo por fila.
func (r *StockRecordRepo) GetForUpdate(productID, warehouseID string) (*entity.StockRecord, error) {
	return r.Get(productID, warehouseID)
}

func (r *StockRecordRepo) Create(record *entity.StockRecord) error {
	return r.with(func(st *state) error {
		k := recordKey(record.ProductID, record.WarehouseID)
		if _, exists := st.records[k]; exists {
			return domain.ErrDuplicate
		}
		st.records[k] = copyRecord(record)
		return nil
	})
}

// UpdateQuantity persiste Quantity, LastStockCheck y UpdatedAt; el resto de
// los campos del registro no se tocan (mismo contrato que la versión SQL).
func (r *StockRecordRepo) UpdateQuantity(record *entity.StockRecord) error {
	return r.with(func(st *state) error {
		cur, ok := st.records[recordKey(record.ProductID, record.WarehouseID)]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Quantity = record.Quantity
		cur.LastStockCheck = record.LastStockCheck
		cur.UpdatedAt = record.UpdatedAt
		return nil
	})
}

func (r *StockRecordRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	err := r.with(func(st *state) error {
		for _, rec := range st.records {
			if rec.WarehouseID != warehouseID || !rec.IsActive {
				continue
			}
			out = append(out, copyRecord(rec))
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
		out = paginate(out, limit, offset)
		return nil
	})
	return out, err
}

func (r *StockRecordRepo) Deactivate(productID, warehouseID string) error {
	return r.with(func(st *state) error {
		cur, ok := st.records[recordKey(productID, warehouseID)]
		if !ok {
			return domain.ErrNotFound
		}
		cur.IsActive = false
		return nil
	})
}

// paginate aplica offset y limit (<=0 significa sin límite).
func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
