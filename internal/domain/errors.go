package domain

import "errors"

// Errores de dominio del motor de inventario (sin dependencias externas).
// Los handlers HTTP los traducen a códigos de estado; ErrConcurrencyConflict
// es el único que el caller puede reintentar automáticamente.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidTransition   = errors.New("transición de estado inválida")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia; reintentar la operación")
	ErrAlreadyProcessed    = errors.New("operación ya procesada")
)
