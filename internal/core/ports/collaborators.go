package ports

import (
	"context"

	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/preferences"
	"procurement/internal/core/domain/model/thread"
	"procurement/internal/core/domain/services"
)

// PreferencesProvider supplies purchase order preferences. The buyer
// organization owns them; user and acting organization are passed for
// per-user overrides.
type PreferencesProvider interface {
	Get(ctx context.Context, userID, orgID, buyerOrgID kernel.UUID) (preferences.Preferences, error)
}

// FulfillmentStore reads the booking-side documents linked to an order.
type FulfillmentStore interface {
	LinkedTo(ctx context.Context, orderID kernel.UUID) (fulfillment.Linked, error)
}

// BookingResetter invalidates booking and shipment progress that depends on
// an order being reset to its pre-booking state.
type BookingResetter interface {
	InvalidateBookings(ctx context.Context, orderID kernel.UUID) error
}

// StatusCatalog resolves status names to the identifiers used by the
// document store. Implementations cache lookups.
type StatusCatalog interface {
	StatusID(ctx context.Context, name, domain string) (string, error)

	// CancelledStatuses resolves the cancelled status of every status domain.
	CancelledStatuses(ctx context.Context) (services.CancelledStatuses, error)
}

// ThreadPublisher delivers thread notifications to the messaging store.
type ThreadPublisher interface {
	Publish(ctx context.Context, n thread.Notification) error
}

// OrderCache holds order projections keyed by order id.
type OrderCache interface {
	Get(id kernel.UUID) (*order.Order, bool)
	Prime(id kernel.UUID, o *order.Order)
	Invalidate(ids ...kernel.UUID)
}

// LineItemProjection is a line item together with the order that owns it.
type LineItemProjection struct {
	OrderID kernel.UUID
	Item    order.LineItem
}

// LineItemCache holds line item projections keyed by line item id.
type LineItemCache interface {
	Get(id kernel.UUID) (LineItemProjection, bool)
	Prime(id kernel.UUID, li LineItemProjection)
	Invalidate(ids ...kernel.UUID)
}

// PreferencesStore persists the preferences of a buyer organization.
type PreferencesStore interface {
	Save(ctx context.Context, buyerOrgID kernel.UUID, prefs preferences.Preferences) error
}
