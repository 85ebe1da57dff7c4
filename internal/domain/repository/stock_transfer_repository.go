package repository

import "github.com/jhoicas/stock-engine/internal/domain/entity"

// StockTransferRepository puerto de persistencia de traslados y sus ítems.
type StockTransferRepository interface {
	// Create persiste el traslado con todos sus ítems (dentro de una tx).
	Create(t *entity.StockTransfer) error
	// GetByID devuelve el traslado con sus ítems; nil, nil si no existe.
	GetByID(id string) (*entity.StockTransfer, error)
	// GetByIDForUpdate bloquea la fila del traslado para serializar avances
	// concurrentes del mismo traslado.
	GetByIDForUpdate(id string) (*entity.StockTransfer, error)
	// UpdateStatus persiste Status, ApprovedBy/ApprovedAt y CompletedAt.
	UpdateStatus(t *entity.StockTransfer) error
	// UpdateItem persiste Status y ReceivedQuantity del ítem.
	UpdateItem(item *entity.TransferItem) error
	List(status entity.TransferStatus, limit, offset int) ([]*entity.StockTransfer, error)
}
