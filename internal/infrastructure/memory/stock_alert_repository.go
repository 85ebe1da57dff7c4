package memory

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo alertas de stock bajo en memoria. Emula el índice único
// parcial de Postgres: a lo sumo una alerta ACTIVE por par producto/bodega.
type StockAlertRepo struct {
	s  *Store
	st *state
}

// NewStockAlertRepository construye el repositorio standalone.
func NewStockAlertRepository(s *Store) *StockAlertRepo {
	return &StockAlertRepo{s: s}
}

func (r *StockAlertRepo) with(fn func(st *state) error) error {
	if r.st != nil {
		return fn(r.st)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.st)
}

func (r *StockAlertRepo) GetByID(id string) (*entity.StockAlert, error) {
	var out *entity.StockAlert
	err := r.with(func(st *state) error {
		if a, ok := st.alerts[id]; ok {
			out = copyAlert(a)
		}
		return nil
	})
	return out, err
}

func (r *StockAlertRepo) GetActive(productID, warehouseID string) (*entity.StockAlert, error) {
	var out *entity.StockAlert
	err := r.with(func(st *state) error {
		if a := findActive(st, productID, warehouseID); a != nil {
			out = copyAlert(a)
		}
		return nil
	})
	return out, err
}

func (r *StockAlertRepo) Create(alert *entity.StockAlert) error {
	return r.with(func(st *state) error {
		if alert.Status == entity.AlertActive {
			if findActive(st, alert.ProductID, alert.WarehouseID) != nil {
				return domain.ErrDuplicate
			}
		}
		if alert.ID == "" {
			alert.ID = uuid.New().String()
		}
		st.alerts[alert.ID] = copyAlert(alert)
		return nil
	})
}

// Update persiste CurrentLevel, Status, ResolvedAt y ResolvedBy.
func (r *StockAlertRepo) Update(alert *entity.StockAlert) error {
	return r.with(func(st *state) error {
		cur, ok := st.alerts[alert.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.CurrentLevel = alert.CurrentLevel
		cur.Status = alert.Status
		cur.ResolvedBy = alert.ResolvedBy
		cur.ResolvedAt = nil
		if alert.ResolvedAt != nil {
			t := *alert.ResolvedAt
			cur.ResolvedAt = &t
		}
		return nil
	})
}

func (r *StockAlertRepo) ListActive(warehouseID string, limit, offset int) ([]*entity.StockAlert, error) {
	var out []*entity.StockAlert
	err := r.with(func(st *state) error {
		for _, a := range st.alerts {
			if a.Status != entity.AlertActive {
				continue
			}
			if warehouseID != "" && a.WarehouseID != warehouseID {
				continue
			}
			out = append(out, copyAlert(a))
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
		out = paginate(out, limit, offset)
		return nil
	})
	return out, err
}

func (r *StockAlertRepo) MarkNotified(id string) error {
	return r.with(func(st *state) error {
		cur, ok := st.alerts[id]
		if !ok {
			return domain.ErrNotFound
		}
		cur.NotificationSent = true
		return nil
	})
}

func findActive(st *state, productID, warehouseID string) *entity.StockAlert {
	for _, a := range st.alerts {
		if a.Status == entity.AlertActive && a.ProductID == productID && a.WarehouseID == warehouseID {
			return a
		}
	}
	return nil
}
