package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/transfer"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// TransferHandler maneja las peticiones HTTP de traslados entre bodegas
// (protegido, roles admin y bodeguero).
type TransferHandler struct {
	uc *transfer.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Request godoc
// @Summary      Solicitar un traslado entre bodegas
// @Description  Crea el traslado en PENDING (o DRAFT con draft=true). La
//
//	disponibilidad en origen no se valida aquí sino al despachar.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RequestTransferRequest  true  "bodegas origen/destino e ítems"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Request(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RequestTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]transfer.RequestItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, transfer.RequestItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	t, err := h.uc.Request(c.Context(), transfer.RequestInput{
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Items:                  items,
		RequestedBy:            userID,
		Draft:                  in.Draft,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// GetByID godoc
// @Summary      Consultar un traslado con sus ítems
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado. Vacío = todos."
// @Param        limit   query  int     false  "Máximo de filas (default 50)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	status := entity.TransferStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado desconocido"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	transfers, err := h.uc.List(c.Context(), status, limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, toTransferResponse(t))
	}
	return c.JSON(fiber.Map{"total": len(out), "transfers": out})
}

// Advance godoc
// @Summary      Avanzar el traslado al siguiente estado
// @Description  PENDING→IN_TRANSIT debita el origen ítem por ítem (todo o
//
//	nada). IN_TRANSIT→COMPLETED exige todos los ítems recibidos.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del traslado"
// @Param        body  body  dto.AdvanceTransferRequest  true  "estado destino"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/advance [post]
func (h *TransferHandler) Advance(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdvanceTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	to := entity.TransferStatus(in.To)
	if !to.Valid() {
		return errorResponse(c, domain.ErrInvalidInput)
	}
	if err := h.uc.Advance(c.Context(), c.Params("id"), to, userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "traslado avanzado", "status": string(to)})
}

// ReceiveItem godoc
// @Summary      Confirmar recepción de un ítem en destino
// @Description  Acredita el destino con la cantidad recibida (puede diferir
//
//	de la solicitada). Al recibir el último ítem el traslado se completa.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string  true  "ID del traslado"
// @Param        item_id  path  string  true  "ID del ítem"
// @Param        body     body  dto.ReceiveItemRequest  true  "received_quantity"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/items/{item_id}/receive [post]
func (h *TransferHandler) ReceiveItem(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReceiveItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.ReceiveItem(c.Context(), c.Params("id"), c.Params("item_id"), in.ReceivedQuantity, userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "ítem recibido"})
}

// Cancel godoc
// @Summary      Cancelar un traslado
// @Description  Los ítems ya despachados se reponen en origen con un
//
//	TRANSFER_IN de reversa; los ya recibidos en destino no se tocan.
//
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Cancel(c.Context(), c.Params("id"), userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "traslado cancelado"})
}

func toTransferResponse(t *entity.StockTransfer) dto.TransferResponse {
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemResponse{
			ID:                it.ID,
			ProductID:         it.ProductID,
			RequestedQuantity: it.RequestedQuantity,
			ReceivedQuantity:  it.ReceivedQuantity,
			Status:            string(it.Status),
		})
	}
	return dto.TransferResponse{
		ID:                     t.ID,
		TransferCode:           t.TransferCode,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Status:                 string(t.Status),
		RequestedBy:            t.RequestedBy,
		ApprovedBy:             t.ApprovedBy,
		RequestedAt:            t.RequestedAt,
		ApprovedAt:             t.ApprovedAt,
		CompletedAt:            t.CompletedAt,
		Items:                  items,
	}
}
