package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/fulfillment"
	"github.com/jhoicas/stock-engine/internal/application/ledger"
	"github.com/jhoicas/stock-engine/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC      *ledger.UseCase
	AlertUC       *alert.UseCase
	TransferUC    *transfer.UseCase
	FulfillmentUC *fulfillment.UseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todo el motor es protegido: no hay
// endpoints públicos aparte del healthcheck.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Ledger de stock
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.LedgerUC)
	stock.Post("/movements", stockHandler.ApplyDelta)
	stock.Post("/count", stockHandler.SetQuantity)
	stock.Get("/:warehouse_id", stockHandler.ListStock)
	stock.Get("/:warehouse_id/transactions", stockHandler.ListWarehouseTransactions)
	stock.Get("/:warehouse_id/:product_id", stockHandler.GetQuantity)
	stock.Get("/:warehouse_id/:product_id/transactions", stockHandler.ListTransactions)
	stock.Delete("/:warehouse_id/:product_id", RequireRole("admin"), stockHandler.DeactivateRecord)

	// Alertas de stock bajo
	alerts := api.Group("/alerts")
	alertHandler := NewAlertHandler(deps.AlertUC)
	alerts.Get("/", alertHandler.ListActive)
	alerts.Post("/:id/resolve", alertHandler.Resolve)
	alerts.Post("/:id/ignore", alertHandler.Ignore)

	// Traslados entre bodegas (solo admin y bodeguero)
	transfers := api.Group("/transfers", RequireRole("admin", "bodeguero"))
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", transferHandler.Request)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/advance", transferHandler.Advance)
	transfers.Post("/:id/items/:item_id/receive", transferHandler.ReceiveItem)
	transfers.Post("/:id/cancel", transferHandler.Cancel)

	// Adaptador de fulfillment (subsistema de órdenes)
	orders := api.Group("/orders")
	fulfillmentHandler := NewFulfillmentHandler(deps.FulfillmentUC)
	orders.Post("/:id/reserve", fulfillmentHandler.Reserve)
	orders.Post("/:id/restore", fulfillmentHandler.Restore)
}
