package memory

import (
	"sort"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo traslados y sus ítems en memoria.
type StockTransferRepo struct {
	s  *Store
	st *state
}

// NewStockTransferRepository construye el repositorio standalone.
func NewStockTransferRepository(s *Store) *StockTransferRepo {
	return &StockTransferRepo{s: s}
}

func (r *StockTransferRepo) with(fn func(st *state) error) error {
	if r.st != nil {
		return fn(r.st)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.st)
}

func (r *StockTransferRepo) Create(t *entity.StockTransfer) error {
	return r.with(func(st *state) error {
		if _, exists := st.transfers[t.ID]; exists {
			return domain.ErrDuplicate
		}
		for _, other := range st.transfers {
			if other.TransferCode == t.TransferCode {
				return domain.ErrDuplicate
			}
		}
		st.transfers[t.ID] = copyTransfer(t)
		return nil
	})
}

func (r *StockTransferRepo) GetByID(id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := r.with(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			out = copyTransfer(t)
			sortItems(out)
		}
		return nil
	})
	return out, err
}

// GetByIDForUpdate es idéntico a GetByID: el mutex del Store ya serializa.
func (r *StockTransferRepo) GetByIDForUpdate(id string) (*entity.StockTransfer, error) {
	return r.GetByID(id)
}

// UpdateStatus persiste Status, ApprovedBy, ApprovedAt y CompletedAt.
func (r *StockTransferRepo) UpdateStatus(t *entity.StockTransfer) error {
	return r.with(func(st *state) error {
		cur, ok := st.transfers[t.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = t.Status
		cur.ApprovedBy = t.ApprovedBy
		cur.ApprovedAt = nil
		if t.ApprovedAt != nil {
			ts := *t.ApprovedAt
			cur.ApprovedAt = &ts
		}
		cur.CompletedAt = nil
		if t.CompletedAt != nil {
			ts := *t.CompletedAt
			cur.CompletedAt = &ts
		}
		return nil
	})
}

// UpdateItem persiste Status y ReceivedQuantity del ítem.
func (r *StockTransferRepo) UpdateItem(item *entity.TransferItem) error {
	return r.with(func(st *state) error {
		parent, ok := st.transfers[item.TransferID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, it := range parent.Items {
			if it.ID == item.ID {
				it.Status = item.Status
				it.ReceivedQuantity = nil
				if item.ReceivedQuantity != nil {
					q := *item.ReceivedQuantity
					it.ReceivedQuantity = &q
				}
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *StockTransferRepo) List(status entity.TransferStatus, limit, offset int) ([]*entity.StockTransfer, error) {
	var out []*entity.StockTransfer
	err := r.with(func(st *state) error {
		for _, t := range st.transfers {
			if status != "" && t.Status != status {
				continue
			}
			cp := copyTransfer(t)
			sortItems(cp)
			out = append(out, cp)
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
				return out[i].RequestedAt.After(out[j].RequestedAt)
			}
			return out[i].ID > out[j].ID
		})
		out = paginate(out, limit, offset)
		return nil
	})
	return out, err
}

func sortItems(t *entity.StockTransfer) {
	sort.Slice(t.Items, func(i, j int) bool { return t.Items[i].ProductID < t.Items[j].ProductID })
}
