package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

func TestTransferStatus_TablaDeTransiciones(t *testing.T) {
	cases := []struct {
		from, to entity.TransferStatus
		ok       bool
	}{
		{entity.TransferDraft, entity.TransferPending, true},
		{entity.TransferDraft, entity.TransferCancelled, true},
		{entity.TransferDraft, entity.TransferInTransit, false},
		{entity.TransferPending, entity.TransferInTransit, true},
		{entity.TransferPending, entity.TransferCancelled, true},
		{entity.TransferPending, entity.TransferCompleted, false},
		{entity.TransferPending, entity.TransferDraft, false},
		{entity.TransferInTransit, entity.TransferCompleted, true},
		{entity.TransferInTransit, entity.TransferCancelled, true},
		{entity.TransferInTransit, entity.TransferPending, false},
		// Terminales: de COMPLETED y CANCELLED no se sale.
		{entity.TransferCompleted, entity.TransferCancelled, false},
		{entity.TransferCompleted, entity.TransferPending, false},
		{entity.TransferCancelled, entity.TransferPending, false},
		{entity.TransferCancelled, entity.TransferInTransit, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTransferStatus_ConjuntoCerrado(t *testing.T) {
	for _, s := range []entity.TransferStatus{
		entity.TransferDraft, entity.TransferPending, entity.TransferInTransit,
		entity.TransferCompleted, entity.TransferCancelled,
	} {
		assert.True(t, s.Valid(), "%s debe ser válido", s)
	}
	assert.False(t, entity.TransferStatus("EN_CAMINO").Valid())
	assert.False(t, entity.TransferStatus("").Valid())
}

func TestTransactionKind_ConjuntoCerrado(t *testing.T) {
	for _, k := range []entity.TransactionKind{
		entity.KindPurchase, entity.KindSale, entity.KindTransferOut,
		entity.KindTransferIn, entity.KindAdjustment, entity.KindReturn, entity.KindInitial,
	} {
		assert.True(t, k.Valid(), "%s debe ser válido", k)
	}
	assert.False(t, entity.TransactionKind("REGALO").Valid())
	assert.False(t, entity.TransactionKind("").Valid())
}

func TestStockTransfer_AllItemsReceived(t *testing.T) {
	q := decimal.NewFromInt(5)
	tr := &entity.StockTransfer{}
	assert.False(t, tr.AllItemsReceived(), "sin ítems no hay nada recibido")

	tr.Items = []*entity.TransferItem{
		{ID: "i1", Status: entity.ItemReceived, ReceivedQuantity: &q},
		{ID: "i2", Status: entity.ItemTransferred},
	}
	assert.False(t, tr.AllItemsReceived())

	tr.Items[1].Status = entity.ItemReceived
	assert.True(t, tr.AllItemsReceived())
}

func TestStockTransfer_ItemByID(t *testing.T) {
	tr := &entity.StockTransfer{Items: []*entity.TransferItem{{ID: "i1"}, {ID: "i2"}}}
	assert.Equal(t, "i2", tr.ItemByID("i2").ID)
	assert.Nil(t, tr.ItemByID("i9"))
}

func TestStockAlert_TransicionesManuales(t *testing.T) {
	a := &entity.StockAlert{Status: entity.AlertActive}
	assert.True(t, a.CanResolve())
	assert.True(t, a.CanIgnore())

	a.Status = entity.AlertResolved
	assert.False(t, a.CanResolve())
	assert.False(t, a.CanIgnore())

	a.Status = entity.AlertIgnored
	assert.False(t, a.CanResolve())
	assert.False(t, a.CanIgnore())
}
