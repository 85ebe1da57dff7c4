package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/application/ledger"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testProductID   = "00000000-0000-0000-0000-0000000000a1"
	testWarehouseID = "00000000-0000-0000-0000-0000000000b1"
	testUserID      = "00000000-0000-0000-0000-0000000000c1"
)

// notifierSpy registra las alertas entregadas; con fail simula un canal caído.
type notifierSpy struct {
	mu     sync.Mutex
	alerts []*entity.StockAlert
	fail   bool
}

func (s *notifierSpy) Notify(a *entity.StockAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("canal de notificaciones caído")
	}
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *notifierSpy) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

// newLedger arma el caso de uso sobre el store en memoria con producto y
// bodega activos ya sembrados en el directorio.
func newLedger(t *testing.T) (*ledger.UseCase, *memory.Store, *notifierSpy) {
	t.Helper()
	store := memory.NewStore()
	store.SeedProduct(&entity.Product{ID: testProductID, SKU: "SKU-001", Name: "Tornillo 3mm", IsActive: true})
	store.SeedWarehouse(&entity.Warehouse{ID: testWarehouseID, Name: "Bodega Central", IsActive: true})

	spy := &notifierSpy{}
	uc := ledger.NewUseCase(
		memory.NewTxRunner(store),
		memory.NewProductRepository(store),
		memory.NewWarehouseRepository(store),
		memory.NewStockRecordRepository(store),
		memory.NewStockTransactionRepository(store),
		memory.NewStockAlertRepository(store),
		spy,
		logger.New("test", "error"),
	)
	return uc, store, spy
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func purchase(qty string) ledger.DeltaInput {
	return ledger.DeltaInput{
		ProductID:   testProductID,
		WarehouseID: testWarehouseID,
		Delta:       dec(qty),
		Kind:        entity.KindPurchase,
		PerformedBy: testUserID,
		AutoCreate:  true,
	}
}

func sale(qty string) ledger.DeltaInput {
	return ledger.DeltaInput{
		ProductID:   testProductID,
		WarehouseID: testWarehouseID,
		Delta:       dec(qty).Neg(),
		Kind:        entity.KindSale,
		PerformedBy: testUserID,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyDelta — creación, invariantes y rechazos
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyDelta_PrimerIngresoAutoCreaRegistro(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()

	txn, err := uc.ApplyDelta(ctx, purchase("10"))
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.True(t, txn.PreviousQuantity.IsZero(), "el registro nace en cero")
	assert.True(t, txn.NewQuantity.Equal(dec("10")))
	assert.Equal(t, entity.KindPurchase, txn.Kind)
	assert.Equal(t, testUserID, txn.PerformedBy)

	qty, err := uc.GetQuantity(ctx, testProductID, testWarehouseID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("10")))
}

func TestApplyDelta_SinAutoCreate_ParInexistenteEsNotFound(t *testing.T) {
	uc, _, _ := newLedger(t)

	_, err := uc.ApplyDelta(context.Background(), sale("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"sin auto_create el par producto/bodega debe existir de antemano")
}

func TestApplyDelta_StockInsuficiente_NoMutaNada(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()

	_, err := uc.ApplyDelta(ctx, purchase("5"))
	require.NoError(t, err)

	_, err = uc.ApplyDelta(ctx, sale("8"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// La transacción fallida no debe dejar rastro: ni cantidad ni log.
	qty, err := uc.GetQuantity(ctx, testProductID, testWarehouseID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("5")), "la cantidad debe quedar intacta tras el rechazo")

	txns, err := uc.ListTransactions(ctx, testProductID, testWarehouseID, 10)
	require.NoError(t, err)
	assert.Len(t, txns, 1, "el log solo debe tener el ingreso inicial")
}

func TestApplyDelta_DeltaCeroEsInvalido(t *testing.T) {
	uc, _, _ := newLedger(t)

	in := purchase("0")
	_, err := uc.ApplyDelta(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyDelta_KindDesconocidoEsInvalido(t *testing.T) {
	uc, _, _ := newLedger(t)

	in := purchase("5")
	in.Kind = entity.TransactionKind("REGALO")
	_, err := uc.ApplyDelta(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyDelta_ProductoInactivoEsNotFound(t *testing.T) {
	uc, store, _ := newLedger(t)
	store.SeedProduct(&entity.Product{ID: "inactivo", SKU: "SKU-X", Name: "Descontinuado", IsActive: false})

	in := purchase("5")
	in.ProductID = "inactivo"
	_, err := uc.ApplyDelta(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyDelta_BodegaDesconocidaEsNotFound(t *testing.T) {
	uc, _, _ := newLedger(t)

	in := purchase("5")
	in.WarehouseID = "no-existe"
	_, err := uc.ApplyDelta(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// La suma de deltas del log debe igualar la cantidad materializada después de
// cualquier serie de movimientos comprometidos.
func TestApplyDelta_SumaDeDeltasIgualaCantidad(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()

	_, err := uc.ApplyDelta(ctx, purchase("100"))
	require.NoError(t, err)
	_, err = uc.ApplyDelta(ctx, sale("30"))
	require.NoError(t, err)
	_, err = uc.ApplyDelta(ctx, sale("15.5"))
	require.NoError(t, err)

	ret := purchase("3")
	ret.Kind = entity.KindReturn
	_, err = uc.ApplyDelta(ctx, ret)
	require.NoError(t, err)

	qty, err := uc.GetQuantity(ctx, testProductID, testWarehouseID)
	require.NoError(t, err)
	sum, err := uc.SumDeltas(ctx, testProductID, testWarehouseID)
	require.NoError(t, err)

	assert.True(t, sum.Equal(qty), "sum(deltas)=%s debe igualar cantidad=%s", sum, qty)
	assert.True(t, qty.Equal(dec("57.5")))
}

// Cada entrada del log debe cumplir NewQuantity = PreviousQuantity + Delta y
// encadenar con la siguiente (más reciente primero).
func TestApplyDelta_LogEncadenaCantidades(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()

	_, err := uc.ApplyDelta(ctx, purchase("10"))
	require.NoError(t, err)
	_, err = uc.ApplyDelta(ctx, sale("4"))
	require.NoError(t, err)
	_, err = uc.ApplyDelta(ctx, purchase("2"))
	require.NoError(t, err)

	txns, err := uc.ListTransactions(ctx, testProductID, testWarehouseID, 10)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	for _, txn := range txns {
		assert.True(t, txn.NewQuantity.Equal(txn.PreviousQuantity.Add(txn.QuantityDelta)),
			"entrada inconsistente: %s + %s != %s", txn.PreviousQuantity, txn.QuantityDelta, txn.NewQuantity)
		assert.False(t, txn.NewQuantity.IsNegative())
	}
	// Orden: más reciente primero.
	assert.True(t, txns[0].NewQuantity.Equal(dec("8")))
	assert.True(t, txns[2].NewQuantity.Equal(dec("10")))
}

// ──────────────────────────────────────────────────────────────────────────────
// SetAbsolute — reconciliación de conteo físico
// ──────────────────────────────────────────────────────────────────────────────

func TestSetAbsolute_RegistraAjustePorDiferencia(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()

	_, err := uc.ApplyDelta(ctx, purchase("10"))
	require.NoError(t, err)

	txn, err := uc.SetAbsolute(ctx, ledger.SetInput{
		ProductID:   testProductID,
		WarehouseID: testWarehouseID,
		NewQuantity: dec("4"),
		PerformedBy: testUserID,
		Notes:       "conteo físico semanal",
	})
	require.NoError(t, err)
	require.NotNil(t, txn)

	assert.Equal(t, entity.KindAdjustment, txn.Kind)
	assert.True(t, txn.QuantityDelta.Equal(dec("-6")), "el delta es conteo - actual")
	assert.True(t, txn.NewQuantity.Equal(dec("4")))

	qty, err := uc.GetQuantity(ctx, testProductID, testWarehouseID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("4")))

	// La reconciliación también debe dejar el log cuadrado.
	sum, err := uc.SumDeltas(ctx, testProductID, testWarehouseID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(qty))
}

func TestSetAbsolute_CantidadNegativaEsInvalida(t *testing.T) {
	uc, _, _ := newLedger(t)

	_, err := uc.SetAbsolute(context.Background(), ledger.SetInput{
		ProductID:   testProductID,
		WarehouseID: testWarehouseID,
		NewQuantity: dec("-1"),
		PerformedBy: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetAbsolute_ParInexistenteEsNotFound(t *testing.T) {
	uc, _, _ := newLedger(t)

	_, err := uc.SetAbsolute(context.Background(), ledger.SetInput{
		ProductID:   testProductID,
		WarehouseID: testWarehouseID,
		NewQuantity: dec("5"),
		PerformedBy: testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"el conteo físico no crea registros; el par debe existir")
}

// ──────────────────────────────────────────────────────────────────────────────
// Alertas — evaluación dentro de la transacción y notificación post-commit
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyDelta_CruceDeUmbral_CreaAlertaYNotifica(t *testing.T) {
	uc, store, spy := newLedger(t)
	ctx := context.Background()

	in := purchase("10")
	in.AlertThreshold = dec("5")
	_, err := uc.ApplyDelta(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 0, spy.count(), "sobre el umbral no hay alerta")

	_, err = uc.ApplyDelta(ctx, sale("7"))
	require.NoError(t, err)

	require.Equal(t, 1, spy.count(), "al cruzar el umbral se notifica una vez")
	alerts, err := memory.NewStockAlertRepository(store).ListActive(testWarehouseID, 10, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].CurrentLevel.Equal(dec("3")))
	assert.True(t, alerts[0].NotificationSent, "tras notificar se marca NotificationSent")
}

func TestApplyDelta_BajoUmbral_ActualizaAlertaSinDuplicar(t *testing.T) {
	uc, store, spy := newLedger(t)
	ctx := context.Background()

	in := purchase("10")
	in.AlertThreshold = dec("8")
	_, err := uc.ApplyDelta(ctx, in)
	require.NoError(t, err)

	_, err = uc.ApplyDelta(ctx, sale("3")) // 7, cruza
	require.NoError(t, err)
	_, err = uc.ApplyDelta(ctx, sale("2")) // 5, sigue abajo
	require.NoError(t, err)

	alerts, err := memory.NewStockAlertRepository(store).ListActive(testWarehouseID, 10, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1, "a lo sumo una alerta ACTIVE por par")
	assert.True(t, alerts[0].CurrentLevel.Equal(dec("5")), "CurrentLevel sigue la cantidad")
	assert.Equal(t, 2, spy.count(), "cada reevaluación bajo el umbral se entrega")
}

func TestApplyDelta_RecuperaSobreUmbral_ResuelveAlerta(t *testing.T) {
	uc, store, spy := newLedger(t)
	ctx := context.Background()

	in := purchase("10")
	in.AlertThreshold = dec("5")
	_, err := uc.ApplyDelta(ctx, in)
	require.NoError(t, err)
	_, err = uc.ApplyDelta(ctx, sale("6")) // 4, alerta
	require.NoError(t, err)
	notified := spy.count()

	_, err = uc.ApplyDelta(ctx, purchase("20")) // 24, recupera
	require.NoError(t, err)

	alerts, err := memory.NewStockAlertRepository(store).ListActive(testWarehouseID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, alerts, "la alerta debe quedar RESOLVED")
	assert.Equal(t, notified, spy.count(), "resolver no genera notificación")
}

func TestApplyDelta_NotifierCaido_NoRevierteElStock(t *testing.T) {
	uc, store, spy := newLedger(t)
	spy.fail = true
	ctx := context.Background()

	in := purchase("3")
	in.AlertThreshold = dec("5")
	_, err := uc.ApplyDelta(ctx, in)
	require.NoError(t, err, "el fallo del notificador jamás revierte la mutación")

	qty, err := uc.GetQuantity(ctx, testProductID, testWarehouseID)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("3")))

	alerts, err := memory.NewStockAlertRepository(store).ListActive(testWarehouseID, 10, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].NotificationSent, "sin entrega no se marca NotificationSent")
}

// ──────────────────────────────────────────────────────────────────────────────
// GetQuantity — lecturas puras
// ──────────────────────────────────────────────────────────────────────────────

func TestGetQuantity_ParInexistenteEsCero(t *testing.T) {
	uc, _, _ := newLedger(t)

	qty, err := uc.GetQuantity(context.Background(), testProductID, testWarehouseID)
	require.NoError(t, err)
	assert.True(t, qty.IsZero(), "consultar un par nunca movido devuelve cero, no error")
}

// ──────────────────────────────────────────────────────────────────────────────
// Listados por bodega y baja lógica
// ──────────────────────────────────────────────────────────────────────────────

func TestListStock_SoloRegistrosActivosOrdenadosPorProducto(t *testing.T) {
	uc, store, _ := newLedger(t)
	ctx := context.Background()
	store.SeedProduct(&entity.Product{ID: "zz-producto", SKU: "SKU-002", Name: "Tuerca 3mm", IsActive: true})

	_, err := uc.ApplyDelta(ctx, purchase("10"))
	require.NoError(t, err)

	segundo := purchase("4")
	segundo.ProductID = "zz-producto"
	_, err = uc.ApplyDelta(ctx, segundo)
	require.NoError(t, err)

	records, err := uc.ListStock(ctx, testWarehouseID, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, testProductID, records[0].ProductID, "orden ascendente por producto")
	assert.Equal(t, "zz-producto", records[1].ProductID)

	// La baja lógica saca el registro del listado pero conserva su historial.
	require.NoError(t, uc.DeactivateRecord(ctx, "zz-producto", testWarehouseID))

	records, err = uc.ListStock(ctx, testWarehouseID, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, testProductID, records[0].ProductID)

	txns, err := uc.ListTransactions(ctx, "zz-producto", testWarehouseID, 10)
	require.NoError(t, err)
	assert.Len(t, txns, 1, "el log sobrevive a la baja lógica")
}

func TestDeactivateRecord_RegistroDadoDeBajaRechazaMovimientos(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()

	_, err := uc.ApplyDelta(ctx, purchase("10"))
	require.NoError(t, err)
	require.NoError(t, uc.DeactivateRecord(ctx, testProductID, testWarehouseID))

	_, err = uc.ApplyDelta(ctx, sale("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound, "un registro inactivo no acepta movimientos")

	// Repetir la baja sobre un registro ya inactivo también es NotFound.
	err = uc.DeactivateRecord(ctx, testProductID, testWarehouseID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListWarehouseTransactions_FiltraPorRangoDeFechas(t *testing.T) {
	uc, _, _ := newLedger(t)
	ctx := context.Background()

	antes := time.Now().Add(-time.Minute)
	_, err := uc.ApplyDelta(ctx, purchase("10"))
	require.NoError(t, err)
	_, err = uc.ApplyDelta(ctx, sale("4"))
	require.NoError(t, err)
	despues := time.Now().Add(time.Minute)

	txns, err := uc.ListWarehouseTransactions(ctx, testWarehouseID, &antes, &despues, 10, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	// Un rango enteramente en el pasado no devuelve nada.
	pasado := antes.Add(-time.Hour)
	txns, err = uc.ListWarehouseTransactions(ctx, testWarehouseID, &pasado, &antes, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, txns)

	// Rango invertido es entrada inválida.
	_, err = uc.ListWarehouseTransactions(ctx, testWarehouseID, &despues, &antes, 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
