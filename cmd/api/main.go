package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/fulfillment"
	"github.com/jhoicas/stock-engine/internal/application/ledger"
	"github.com/jhoicas/stock-engine/internal/application/transfer"
	"github.com/jhoicas/stock-engine/internal/infrastructure/notify"
	"github.com/jhoicas/stock-engine/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-engine/internal/interfaces/http"
	"github.com/jhoicas/stock-engine/pkg/config"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(cfg.App.Env, cfg.App.LogLevel)
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando motor de stock")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	recordRepo := postgres.NewStockRecordRepository(pool)
	txnRepo := postgres.NewStockTransactionRepository(pool)
	alertRepo := postgres.NewStockAlertRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	notifier := notify.NewLogNotifier(log.Zerolog())

	ledgerUC := ledger.NewUseCase(txRunner, productRepo, warehouseRepo, recordRepo, txnRepo, alertRepo, notifier, log)
	alertUC := alert.NewUseCase(txRunner, alertRepo, log)
	transferRepo := postgres.NewStockTransferRepository(pool)
	transferUC := transfer.NewUseCase(txRunner, transferRepo, productRepo, warehouseRepo, ledgerUC, log)
	fulfillmentUC := fulfillment.NewUseCase(txRunner, ledgerUC, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:      ledgerUC,
		AlertUC:       alertUC,
		TransferUC:    transferUC,
		FulfillmentUC: fulfillmentUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
