package repository

// OrderRestorationRepository marca órdenes canceladas cuya reposición de stock
// ya fue aplicada. Hace idempotente RestoreForCancelledOrder: reprocesar la
// misma cancelación no debe reponer dos veces.
type OrderRestorationRepository interface {
	// MarkProcessed inserta el marcador dentro de la transacción del caller.
	// Devuelve domain.ErrAlreadyProcessed si la orden ya fue repuesta.
	MarkProcessed(orderID, performedBy string) error
}
