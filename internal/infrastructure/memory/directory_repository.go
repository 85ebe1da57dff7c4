package memory

import (
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var (
	_ repository.ProductRepository          = (*ProductRepo)(nil)
	_ repository.WarehouseRepository        = (*WarehouseRepo)(nil)
	_ repository.OrderRestorationRepository = (*OrderRestorationRepo)(nil)
)

// ProductRepo directorio de productos en memoria (se alimenta con SeedProduct).
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el repositorio standalone.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// WarehouseRepo directorio de bodegas en memoria (se alimenta con SeedWarehouse).
type WarehouseRepo struct {
	s *Store
}

// NewWarehouseRepository construye el repositorio standalone.
func NewWarehouseRepository(s *Store) *WarehouseRepo {
	return &WarehouseRepo{s: s}
}

func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

// OrderRestorationRepo marcador de reposiciones procesadas.
type OrderRestorationRepo struct {
	s  *Store
	st *state
}

// NewOrderRestorationRepository construye el repositorio standalone.
func NewOrderRestorationRepository(s *Store) *OrderRestorationRepo {
	return &OrderRestorationRepo{s: s}
}

func (r *OrderRestorationRepo) MarkProcessed(orderID, performedBy string) error {
	apply := func(st *state) error {
		if _, exists := st.restorations[orderID]; exists {
			return domain.ErrAlreadyProcessed
		}
		st.restorations[orderID] = performedBy
		return nil
	}
	if r.st != nil {
		return apply(r.st)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return apply(r.s.st)
}
