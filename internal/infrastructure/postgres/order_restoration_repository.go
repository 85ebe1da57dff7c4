package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.OrderRestorationRepository = (*OrderRestorationRepo)(nil)

// OrderRestorationRepo marcador de reposiciones procesadas sobre PostgreSQL.
// La clave primaria order_id hace el trabajo: el segundo intento choca con
// 23505 dentro de la misma transacción que los créditos.
type OrderRestorationRepo struct {
	q Querier
}

// NewOrderRestorationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRestorationRepository(q Querier) *OrderRestorationRepo {
	return &OrderRestorationRepo{q: q}
}

// MarkProcessed inserta el marcador; domain.ErrAlreadyProcessed si la orden
// ya fue repuesta.
func (r *OrderRestorationRepo) MarkProcessed(orderID, performedBy string) error {
	query := `
		INSERT INTO order_restorations (order_id, performed_by, processed_at)
		VALUES ($1, $2, now())`
	_, err := r.q.Exec(context.Background(), query, orderID, nullable(performedBy))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyProcessed
		}
		return fmt.Errorf("mark order restoration: %w", err)
	}
	return nil
}
