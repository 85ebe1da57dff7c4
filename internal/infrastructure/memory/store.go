// Package memory implementa los puertos de persistencia sobre estructuras en
// memoria. Sirve para desarrollo local y para las pruebas de los casos de uso
// sin levantar Postgres. El TxRunner clona el estado al comenzar y solo lo
// publica si la función termina sin error, de modo que el rollback es real.
package memory

import (
	"sync"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// Store contiene el estado compartido. Todos los repositorios standalone y el
// TxRunner operan sobre el mismo Store; el mutex serializa las transacciones,
// lo que además emula el bloqueo de fila (SELECT FOR UPDATE) de Postgres.
type Store struct {
	mu sync.Mutex
	st *state
}

// state es el snapshot completo. Las claves de records son productID|warehouseID.
type state struct {
	records      map[string]*entity.StockRecord
	transactions []*entity.StockTransaction
	alerts       map[string]*entity.StockAlert
	transfers    map[string]*entity.StockTransfer
	restorations map[string]string // orderID -> performedBy
	products     map[string]*entity.Product
	warehouses   map[string]*entity.Warehouse
}

func newState() *state {
	return &state{
		records:      make(map[string]*entity.StockRecord),
		alerts:       make(map[string]*entity.StockAlert),
		transfers:    make(map[string]*entity.StockTransfer),
		restorations: make(map[string]string),
		products:     make(map[string]*entity.Product),
		warehouses:   make(map[string]*entity.Warehouse),
	}
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

func recordKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

// clone copia el estado en profundidad. Las transacciones del log son
// inmutables después de creadas, así que basta copiar el slice.
func (s *state) clone() *state {
	c := &state{
		records:      make(map[string]*entity.StockRecord, len(s.records)),
		transactions: make([]*entity.StockTransaction, len(s.transactions)),
		alerts:       make(map[string]*entity.StockAlert, len(s.alerts)),
		transfers:    make(map[string]*entity.StockTransfer, len(s.transfers)),
		restorations: make(map[string]string, len(s.restorations)),
		products:     s.products,   // directorio: solo lectura desde el motor
		warehouses:   s.warehouses, // idem
	}
	copy(c.transactions, s.transactions)
	for k, r := range s.records {
		c.records[k] = copyRecord(r)
	}
	for k, a := range s.alerts {
		c.alerts[k] = copyAlert(a)
	}
	for k, t := range s.transfers {
		c.transfers[k] = copyTransfer(t)
	}
	for k, v := range s.restorations {
		c.restorations[k] = v
	}
	return c
}

func copyRecord(r *entity.StockRecord) *entity.StockRecord {
	cp := *r
	return &cp
}

func copyAlert(a *entity.StockAlert) *entity.StockAlert {
	cp := *a
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}

func copyTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	cp := *t
	if t.ApprovedAt != nil {
		ts := *t.ApprovedAt
		cp.ApprovedAt = &ts
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		cp.CompletedAt = &ts
	}
	cp.Items = make([]*entity.TransferItem, len(t.Items))
	for i, it := range t.Items {
		cp.Items[i] = copyItem(it)
	}
	return &cp
}

func copyItem(it *entity.TransferItem) *entity.TransferItem {
	cp := *it
	if it.ReceivedQuantity != nil {
		q := *it.ReceivedQuantity
		cp.ReceivedQuantity = &q
	}
	return &cp
}

// SeedProduct registra un producto en el directorio (solo para setup).
func (s *Store) SeedProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.st.products[p.ID] = &cp
}

// SeedWarehouse registra una bodega en el directorio (solo para setup).
func (s *Store) SeedWarehouse(w *entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.st.warehouses[w.ID] = &cp
}

// SeedRecord inserta un registro de stock directamente, sin pasar por el
// ledger. Solo para setup de pruebas: en producción el registro siempre nace
// de una transacción de stock.
func (s *Store) SeedRecord(r *entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.records[recordKey(r.ProductID, r.WarehouseID)] = copyRecord(r)
}
