// Package bookingstore reads and resets the booking-side documents linked to
// orders. The documents live in a separate PostgreSQL database as JSONB
// bodies grouped by collection:
//
//	booking_documents(id, collection, body, created_at, updated_at)
//	statuses(id, name, domain)
//
// A document body carries the ids of the orders it belongs to and its status
// id, e.g. {"orderIds": ["..."], "statusId": "st-booking-cancelled"}.
package bookingstore

import (
	"context"
	"fmt"

	"procurement/internal/core/domain/model/fulfillment"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	collectionBookingRequests      = "bookingRequests"
	collectionBookingConfirmations = "bookingConfirmations"
	collectionShipments            = "shipments"
)

var collectionKinds = map[string]fulfillment.Kind{
	collectionBookingRequests:      fulfillment.BookingRequest,
	collectionBookingConfirmations: fulfillment.BookingConfirmation,
	collectionShipments:            fulfillment.Shipment,
}

const schema = `
CREATE TABLE IF NOT EXISTS booking_documents (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_booking_documents_body ON booking_documents USING GIN (body);
CREATE TABLE IF NOT EXISTS statuses (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	domain TEXT NOT NULL,
	UNIQUE (name, domain)
);`

// Open connects to the document store and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("booking store: connect: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the document and status tables when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("booking store: ensure schema: %w", err)
	}
	return nil
}
