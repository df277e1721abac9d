package services_test

import (
	"testing"
	"time"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC)

func newActor(t *testing.T, orgID kernel.UUID, kind actor.Kind) actor.Actor {
	t.Helper()
	a, err := actor.NewActor(kernel.NewUUID(), orgID, kind)
	require.NoError(t, err)
	return a
}

func newParticipant(t *testing.T, userID kernel.UUID, approver bool) order.Participant {
	t.Helper()
	p, err := order.NewParticipant(userID, approver)
	require.NoError(t, err)
	return p
}

func draft(desc string, qty int64) order.LineItemDraft {
	return order.LineItemDraft{
		Description:   desc,
		Quantity:      decimal.NewFromInt(qty),
		UnitOfMeasure: "pcs",
		UnitPrice:     decimal.RequireFromString("2.50"),
	}
}

func newLineItem(t *testing.T, number int, d order.LineItemDraft) order.LineItem {
	t.Helper()
	li, err := order.NewLineItem(kernel.NewUUID(), number, d)
	require.NoError(t, err)
	return li
}

func newOrder(t *testing.T, status order.Status, items ...order.LineItem) *order.Order {
	t.Helper()
	crd := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	o, err := order.RestoreOrder(
		kernel.NewUUID(), kernel.NewUUID(),
		order.Details{
			Origin:         "Ningbo",
			Destination:    "Felixstowe",
			CargoReadyDate: &crd,
			SupplierOrgID:  kernel.NewUUID(),
		},
		status, false, items, nil, now, now,
	)
	require.NoError(t, err)
	return o
}
