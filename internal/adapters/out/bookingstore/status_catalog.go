package bookingstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/services"
	"procurement/internal/pkg/cache"
	"procurement/internal/pkg/errs"

	"github.com/jmoiron/sqlx"
)

type statusKey struct {
	name   string
	domain string
}

// StatusCatalog resolves status names through the statuses table. Resolved
// ids are cached; misses are not.
type StatusCatalog struct {
	db    *sqlx.DB
	cache *cache.Cache[statusKey, string]
}

// NewStatusCatalog keeps resolved ids for ttl.
func NewStatusCatalog(db *sqlx.DB, ttl time.Duration) *StatusCatalog {
	return &StatusCatalog{db: db, cache: cache.New[statusKey, string](ttl)}
}

func (c *StatusCatalog) StatusID(ctx context.Context, name, domain string) (string, error) {
	key := statusKey{name: name, domain: domain}
	if id, ok := c.cache.Get(key); ok {
		return id, nil
	}

	var id string
	err := c.db.GetContext(ctx, &id, `SELECT id FROM statuses WHERE name = $1 AND domain = $2`, name, domain)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errs.NewObjectNotFoundError("status", domain+"/"+name)
	}
	if err != nil {
		return "", fmt.Errorf("booking store: status %s/%s: %w", domain, name, err)
	}

	c.cache.Prime(key, id)
	return id, nil
}

func (c *StatusCatalog) CancelledStatuses(ctx context.Context) (services.CancelledStatuses, error) {
	booking, err := c.StatusID(ctx, order.Cancelled.String(), fulfillment.BookingRequest.StatusDomain())
	if err != nil {
		return services.CancelledStatuses{}, err
	}
	shipment, err := c.StatusID(ctx, order.Cancelled.String(), fulfillment.Shipment.StatusDomain())
	if err != nil {
		return services.CancelledStatuses{}, err
	}
	return services.CancelledStatuses{Booking: booking, Shipment: shipment}, nil
}
