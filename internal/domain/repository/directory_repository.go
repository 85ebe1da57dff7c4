package repository

import "github.com/jhoicas/stock-engine/internal/domain/entity"

// ProductRepository lookup de solo lectura del directorio de productos.
// Devuelve nil, nil si el producto no existe.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
}

// WarehouseRepository lookup de solo lectura del directorio de bodegas.
// Devuelve nil, nil si la bodega no existe.
type WarehouseRepository interface {
	GetByID(id string) (*entity.Warehouse, error)
}
