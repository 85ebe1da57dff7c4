package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/application/alert"
	"github.com/jhoicas/stock-engine/internal/application/fulfillment"
	"github.com/jhoicas/stock-engine/internal/application/ledger"
	"github.com/jhoicas/stock-engine/internal/application/transfer"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
	"github.com/jhoicas/stock-engine/internal/infrastructure/notify"
	apphttp "github.com/jhoicas/stock-engine/internal/interfaces/http"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

const (
	apiProductID   = "11111111-1111-1111-1111-111111111111"
	apiWarehouseID = "22222222-2222-2222-2222-222222222222"
)

// buildAPI levanta la API completa sobre el store en memoria con un producto
// y una bodega activos.
func buildAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SeedProduct(&entity.Product{ID: apiProductID, SKU: "SKU-API", Name: "Monitor", IsActive: true})
	store.SeedWarehouse(&entity.Warehouse{ID: apiWarehouseID, Name: "Central", IsActive: true})

	log := logger.New("test", "error")
	txRunner := memory.NewTxRunner(store)
	productRepo := memory.NewProductRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	ledgerUC := ledger.NewUseCase(
		txRunner, productRepo, warehouseRepo,
		memory.NewStockRecordRepository(store),
		memory.NewStockTransactionRepository(store),
		memory.NewStockAlertRepository(store),
		notify.NewLogNotifier(log.Zerolog()), log,
	)
	alertUC := alert.NewUseCase(txRunner, memory.NewStockAlertRepository(store), log)
	transferUC := transfer.NewUseCase(txRunner, memory.NewStockTransferRepository(store), productRepo, warehouseRepo, ledgerUC, log)
	fulfillmentUC := fulfillment.NewUseCase(txRunner, ledgerUC, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		LedgerUC:      ledgerUC,
		AlertUC:       alertUC,
		TransferUC:    transferUC,
		FulfillmentUC: fulfillmentUC,
		JWTSecret:     testJWTSecret,
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path, role string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func movement(delta, kind string, autoCreate bool) map[string]any {
	return map[string]any{
		"product_id":   apiProductID,
		"warehouse_id": apiWarehouseID,
		"delta":        delta,
		"kind":         kind,
		"auto_create":  autoCreate,
	}
}

func TestAPI_MovimientoYConsulta(t *testing.T) {
	app, _ := buildAPI(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", "vendedor", movement("10", "PURCHASE", true))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var txn map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&txn))
	assert.Equal(t, "PURCHASE", txn["kind"])
	assert.Equal(t, testUserID, txn["performed_by"], "el actor sale del token, no del body")

	get := doJSON(t, app, http.MethodGet, "/api/stock/"+apiWarehouseID+"/"+apiProductID, "vendedor", nil)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)

	var qty map[string]any
	require.NoError(t, json.NewDecoder(get.Body).Decode(&qty))
	assert.Equal(t, "10", qty["quantity"])
}

func TestAPI_StockInsuficienteMapeaA409(t *testing.T) {
	app, _ := buildAPI(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", "vendedor", movement("5", "PURCHASE", true))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	fail := doJSON(t, app, http.MethodPost, "/api/stock/movements", "vendedor", movement("-8", "SALE", false))
	defer fail.Body.Close()
	assert.Equal(t, http.StatusConflict, fail.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(fail.Body).Decode(&body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
}

func TestAPI_ParInexistenteMapeaA404(t *testing.T) {
	app, _ := buildAPI(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", "vendedor", movement("-1", "SALE", false))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_KindInvalidoMapeaA400(t *testing.T) {
	app, _ := buildAPI(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", "vendedor", movement("1", "REGALO", true))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestAPI_ExistenciasPorBodega(t *testing.T) {
	app, _ := buildAPI(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", "vendedor", movement("10", "PURCHASE", true))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	list := doJSON(t, app, http.MethodGet, "/api/stock/"+apiWarehouseID, "vendedor", nil)
	defer list.Body.Close()
	require.Equal(t, http.StatusOK, list.StatusCode)

	var body struct {
		Total   int              `json:"total"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, apiProductID, body.Records[0]["product_id"])
	assert.Equal(t, "10", body.Records[0]["quantity"])
}

func TestAPI_BajaDeRegistroSoloAdmin(t *testing.T) {
	app, _ := buildAPI(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", "vendedor", movement("10", "PURCHASE", true))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	path := "/api/stock/" + apiWarehouseID + "/" + apiProductID
	denied := doJSON(t, app, http.MethodDelete, path, "vendedor", nil)
	defer denied.Body.Close()
	assert.Equal(t, http.StatusForbidden, denied.StatusCode, "la baja lógica es solo de admin")

	ok := doJSON(t, app, http.MethodDelete, path, "admin", nil)
	defer ok.Body.Close()
	require.Equal(t, http.StatusNoContent, ok.StatusCode)

	// El registro desaparece del listado de la bodega.
	list := doJSON(t, app, http.MethodGet, "/api/stock/"+apiWarehouseID, "vendedor", nil)
	defer list.Body.Close()
	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&body))
	assert.Equal(t, 0, body.Total)
}

func TestAPI_TrasladosExigenRolDeBodega(t *testing.T) {
	app, _ := buildAPI(t)

	resp := doJSON(t, app, http.MethodGet, "/api/transfers/", "vendedor", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"vendedor no opera traslados")

	ok := doJSON(t, app, http.MethodGet, "/api/transfers/", "bodeguero", nil)
	defer ok.Body.Close()
	assert.Equal(t, http.StatusOK, ok.StatusCode)
}

func TestAPI_SinTokenRetorna401(t *testing.T) {
	app, _ := buildAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_HealthEsPublico(t *testing.T) {
	app, _ := buildAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
