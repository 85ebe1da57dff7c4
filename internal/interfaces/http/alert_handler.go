package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// AlertHandler maneja las peticiones HTTP de alertas de stock bajo (protegido).
type AlertHandler struct {
	uc *alert.UseCase
}

// NewAlertHandler construye el handler.
func NewAlertHandler(uc *alert.UseCase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

// ListActive godoc
// @Summary      Listar alertas activas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega. Vacío = todas."
// @Param        limit         query  int     false  "Máximo de filas (default 50)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.AlertResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) ListActive(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	alerts, err := h.uc.ListActive(c.Context(), warehouseID, limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}

// Resolve godoc
// @Summary      Resolver manualmente una alerta
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la alerta"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Resolve(c.Context(), c.Params("id"), userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "alerta resuelta"})
}

// Ignore godoc
// @Summary      Ignorar una alerta (override manual terminal)
// @Description  La alerta ignorada no vuelve a activarse; un nuevo cruce de
//
//	umbral crea una alerta nueva.
//
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la alerta"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/ignore [post]
func (h *AlertHandler) Ignore(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Ignore(c.Context(), c.Params("id"), userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "alerta ignorada"})
}

func toAlertResponse(a *entity.StockAlert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:               a.ID,
		ProductID:        a.ProductID,
		WarehouseID:      a.WarehouseID,
		Threshold:        a.Threshold,
		CurrentLevel:     a.CurrentLevel,
		Status:           string(a.Status),
		NotificationSent: a.NotificationSent,
	}
}
