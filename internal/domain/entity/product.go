package entity

import "time"

// Product entrada de solo lectura del directorio de productos. El catálogo
// (CRUD, precios, atributos) vive en otro subsistema; el motor solo necesita
// existencia y estado activo.
type Product struct {
	ID        string
	SKU       string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
