package services_test

import (
	"testing"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/services"
	"procurement/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditabilityPolicy_Check(t *testing.T) {
	policy := services.NewEditabilityPolicy()
	user := newActor(t, kernel.NewUUID(), actor.User)
	integration := newActor(t, kernel.NewUUID(), actor.Integration)
	activeShipment := fulfillment.Linked{Shipments: []fulfillment.Record{
		record(fulfillment.Shipment, "sh-9", ptr("sh-open"), true),
	}}

	t.Run("accepted order is editable", func(t *testing.T) {
		e := policy.Check(newOrder(t, order.Accepted), user, fulfillment.Linked{}, cancelled)
		assert.True(t, e.IsEditable)
		assert.NoError(t, e.Err())
	})

	t.Run("cancelled order is closed for everyone", func(t *testing.T) {
		e := policy.Check(newOrder(t, order.Cancelled), integration, fulfillment.Linked{}, cancelled)
		assert.False(t, e.IsEditable)
		assert.Equal(t, "order is Cancelled and can no longer be edited", e.Message)
		require.ErrorIs(t, e.Err(), errs.ErrBusinessRule)
	})

	t.Run("in transit order is reserved for integrations", func(t *testing.T) {
		assert.False(t, policy.Check(newOrder(t, order.InTransit), user, fulfillment.Linked{}, cancelled).IsEditable)
		assert.True(t, policy.Check(newOrder(t, order.InTransit), integration, fulfillment.Linked{}, cancelled).IsEditable)
	})

	t.Run("active shipment blocks users", func(t *testing.T) {
		e := policy.Check(newOrder(t, order.Booked), user, activeShipment, cancelled)
		assert.False(t, e.IsEditable)
		assert.Contains(t, e.Message, "sh-9")
	})
}
