package queries_test

import (
	"context"
	"testing"
	"time"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/services"
	"procurement/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockOrderCache struct{ mock.Mock }

func (m *MockOrderCache) Get(id kernel.UUID) (*order.Order, bool) {
	args := m.Called(id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Bool(1)
}

func (m *MockOrderCache) Prime(id kernel.UUID, o *order.Order) { m.Called(id, o) }

func (m *MockOrderCache) Invalidate(ids ...kernel.UUID) { m.Called(ids) }

type MockLineItemCache struct{ mock.Mock }

func (m *MockLineItemCache) Get(id kernel.UUID) (ports.LineItemProjection, bool) {
	args := m.Called(id)
	p, _ := args.Get(0).(ports.LineItemProjection)
	return p, args.Bool(1)
}

func (m *MockLineItemCache) Prime(id kernel.UUID, p ports.LineItemProjection) { m.Called(id, p) }

func (m *MockLineItemCache) Invalidate(ids ...kernel.UUID) { m.Called(ids) }

type MockFulfillmentStore struct{ mock.Mock }

func (m *MockFulfillmentStore) LinkedTo(ctx context.Context, orderID kernel.UUID) (fulfillment.Linked, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(fulfillment.Linked), args.Error(1)
}

type MockStatusCatalog struct{ mock.Mock }

func (m *MockStatusCatalog) StatusID(ctx context.Context, name, domain string) (string, error) {
	args := m.Called(ctx, name, domain)
	return args.String(0), args.Error(1)
}

func (m *MockStatusCatalog) CancelledStatuses(ctx context.Context) (services.CancelledStatuses, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.CancelledStatuses), args.Error(1)
}

type parties struct {
	buyerOrg, supplierOrg kernel.UUID
	buyer, supplier       kernel.UUID
}

func newParties() parties {
	return parties{
		buyerOrg:    kernel.NewUUID(),
		supplierOrg: kernel.NewUUID(),
		buyer:       kernel.NewUUID(),
		supplier:    kernel.NewUUID(),
	}
}

func newActor(t *testing.T, userID, orgID kernel.UUID, kind actor.Kind) actor.Actor {
	t.Helper()
	a, err := actor.NewActor(userID, orgID, kind)
	require.NoError(t, err)
	return a
}

func newTestOrder(t *testing.T, p parties, status order.Status, items ...order.LineItem) *order.Order {
	t.Helper()
	buyer, err := order.NewParticipant(p.buyer, true)
	require.NoError(t, err)
	supplier, err := order.NewParticipant(p.supplier, true)
	require.NoError(t, err)

	o, err := order.RestoreOrder(
		kernel.NewUUID(), p.buyerOrg,
		order.Details{PONumber: "PO-4410", Destination: "Felixstowe", SupplierOrgID: p.supplierOrg},
		status, false, items, []order.Participant{buyer, supplier}, now, now,
	)
	require.NoError(t, err)
	return o
}
