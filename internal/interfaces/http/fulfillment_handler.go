package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/fulfillment"
)

// FulfillmentHandler adaptador HTTP para el subsistema de órdenes: reserva de
// stock al confirmar una orden y reposición al cancelarla (protegido).
type FulfillmentHandler struct {
	uc *fulfillment.UseCase
}

// NewFulfillmentHandler construye el handler.
func NewFulfillmentHandler(uc *fulfillment.UseCase) *FulfillmentHandler {
	return &FulfillmentHandler{uc: uc}
}

// Reserve godoc
// @Summary      Reservar stock para una orden
// @Description  Debita todas las líneas en una sola transacción: si alguna no
//
//	tiene stock suficiente no se debita ninguna.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.OrderLinesRequest  true  "líneas de la orden"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/reserve [post]
func (h *FulfillmentHandler) Reserve(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.OrderLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.ReserveForOrder(c.Context(), c.Params("id"), toOrderLines(in), userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "stock reservado"})
}

// Restore godoc
// @Summary      Reponer stock de una orden cancelada
// @Description  Idempotente: repetir la misma cancelación no repone dos veces.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.OrderLinesRequest  true  "líneas de la orden"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/restore [post]
func (h *FulfillmentHandler) Restore(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.OrderLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.RestoreForCancelledOrder(c.Context(), c.Params("id"), toOrderLines(in), userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "stock repuesto"})
}

func toOrderLines(in dto.OrderLinesRequest) []fulfillment.OrderLine {
	lines := make([]fulfillment.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, fulfillment.OrderLine{
			ProductID:   l.ProductID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.Quantity,
		})
	}
	return lines
}
