package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario
// (multi-bodega). Solo lectura desde el motor; la administración de bodegas
// es de otro subsistema.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
