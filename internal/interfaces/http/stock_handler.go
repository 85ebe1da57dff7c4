package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/ledger"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del ledger de stock (protegido).
type StockHandler struct {
	uc *ledger.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// ApplyDelta godoc
// @Summary      Registrar movimiento de stock
// @Description  Aplica un delta con signo a la cantidad de un producto en una
//
//	bodega, registrando la transacción en el log inmutable.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyDeltaRequest  true  "product_id, warehouse_id, delta, kind"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) ApplyDelta(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyDeltaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	txn, err := h.uc.ApplyDelta(c.Context(), ledger.DeltaInput{
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Delta:          in.Delta,
		Kind:           entity.TransactionKind(in.Kind),
		PerformedBy:    userID,
		ReferenceID:    in.ReferenceID,
		Notes:          in.Notes,
		AutoCreate:     in.AutoCreate,
		AlertThreshold: in.AlertThreshold,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(txn))
}

// SetQuantity godoc
// @Summary      Reconciliar conteo físico
// @Description  Fija la cantidad absoluta del par producto/bodega. La
//
//	diferencia contra la cantidad actual queda en el log como ADJUSTMENT.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetQuantityRequest  true  "product_id, warehouse_id, quantity"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/count [post]
func (h *StockHandler) SetQuantity(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	txn, err := h.uc.SetAbsolute(c.Context(), ledger.SetInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		NewQuantity: in.Quantity,
		PerformedBy: userID,
		Notes:       in.Notes,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(txn))
}

// GetQuantity godoc
// @Summary      Consultar cantidad actual
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path  string  true  "Bodega"
// @Param        product_id    path  string  true  "Producto"
// @Success      200  {object}  dto.QuantityResponse
// @Router       /api/stock/{warehouse_id}/{product_id} [get]
func (h *StockHandler) GetQuantity(c *fiber.Ctx) error {
	warehouseID := c.Params("warehouse_id")
	productID := c.Params("product_id")
	qty, err := h.uc.GetQuantity(c.Context(), productID, warehouseID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.QuantityResponse{ProductID: productID, WarehouseID: warehouseID, Quantity: qty})
}

// ListTransactions godoc
// @Summary      Historial de transacciones de un par producto/bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "Bodega"
// @Param        product_id    path   string  true   "Producto"
// @Param        limit         query  int     false  "Máximo de filas (default 50)"
// @Success      200  {array}  dto.TransactionResponse
// @Router       /api/stock/{warehouse_id}/{product_id}/transactions [get]
func (h *StockHandler) ListTransactions(c *fiber.Ctx) error {
	warehouseID := c.Params("warehouse_id")
	productID := c.Params("product_id")
	limit := c.QueryInt("limit", 50)
	txns, err := h.uc.ListTransactions(c.Context(), productID, warehouseID, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	return c.JSON(fiber.Map{"total": len(out), "transactions": out})
}

// ListStock godoc
// @Summary      Existencias de una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "Bodega"
// @Param        limit         query  int     false  "Máximo de filas (default 100)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.StockRecordResponse
// @Router       /api/stock/{warehouse_id} [get]
func (h *StockHandler) ListStock(c *fiber.Ctx) error {
	warehouseID := c.Params("warehouse_id")
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)
	records, err := h.uc.ListStock(c.Context(), warehouseID, limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.StockRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toStockRecordResponse(r))
	}
	return c.JSON(fiber.Map{"total": len(out), "records": out})
}

// ListWarehouseTransactions godoc
// @Summary      Movimientos de una bodega completa
// @Description  Historial de la bodega, opcionalmente acotado por fechas
//
//	(from/to en RFC 3339), más reciente primero.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "Bodega"
// @Param        from          query  string  false  "Fecha inicial RFC 3339"
// @Param        to            query  string  false  "Fecha final RFC 3339"
// @Success      200  {array}  dto.TransactionResponse
// @Router       /api/stock/{warehouse_id}/transactions [get]
func (h *StockHandler) ListWarehouseTransactions(c *fiber.Ctx) error {
	warehouseID := c.Params("warehouse_id")
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, se espera RFC 3339"})
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, se espera RFC 3339"})
		}
		to = &t
	}

	txns, err := h.uc.ListWarehouseTransactions(c.Context(), warehouseID, from, to, limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	return c.JSON(fiber.Map{"total": len(out), "transactions": out})
}

// DeactivateRecord godoc
// @Summary      Desactivar un registro de stock
// @Description  Baja lógica: el historial y las alertas se conservan, pero el
//
//	registro deja de aceptar movimientos.
//
// @Tags         stock
// @Security     Bearer
// @Param        warehouse_id  path  string  true  "Bodega"
// @Param        product_id    path  string  true  "Producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{warehouse_id}/{product_id} [delete]
func (h *StockHandler) DeactivateRecord(c *fiber.Ctx) error {
	warehouseID := c.Params("warehouse_id")
	productID := c.Params("product_id")
	if err := h.uc.DeactivateRecord(c.Context(), productID, warehouseID); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toStockRecordResponse(r *entity.StockRecord) dto.StockRecordResponse {
	out := dto.StockRecordResponse{
		ProductID:      r.ProductID,
		WarehouseID:    r.WarehouseID,
		Quantity:       r.Quantity,
		MinQuantity:    r.MinQuantity,
		MaxQuantity:    r.MaxQuantity,
		AlertThreshold: r.AlertThreshold,
		UpdatedAt:      r.UpdatedAt,
	}
	if !r.LastStockCheck.IsZero() {
		check := r.LastStockCheck
		out.LastStockCheck = &check
	}
	return out
}

func toTransactionResponse(t *entity.StockTransaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:               t.ID,
		ProductID:        t.ProductID,
		WarehouseID:      t.WarehouseID,
		Kind:             string(t.Kind),
		QuantityDelta:    t.QuantityDelta,
		PreviousQuantity: t.PreviousQuantity,
		NewQuantity:      t.NewQuantity,
		PerformedBy:      t.PerformedBy,
		ReferenceID:      t.ReferenceID,
		Notes:            t.Notes,
		OccurredAt:       t.OccurredAt,
	}
}
