package bookingstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/pkg/errs"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type statusResolver interface {
	StatusID(ctx context.Context, name, domain string) (string, error)
}

type documentRow struct {
	ID         string         `db:"id"`
	Collection string         `db:"collection"`
	StatusID   sql.NullString `db:"status_id"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r documentRow) toDomain() fulfillment.Record {
	rec := fulfillment.Record{
		ID:        r.ID,
		Kind:      collectionKinds[r.Collection],
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.StatusID.Valid {
		rec.StatusID = &r.StatusID.String
	}
	return rec
}

// DocumentStore implements FulfillmentStore and BookingResetter over the
// booking document database.
type DocumentStore struct {
	db       *sqlx.DB
	statuses statusResolver
}

func NewDocumentStore(db *sqlx.DB, statuses statusResolver) *DocumentStore {
	return &DocumentStore{db: db, statuses: statuses}
}

// LinkedTo loads every booking request, booking confirmation and shipment
// whose body lists orderID.
func (s *DocumentStore) LinkedTo(ctx context.Context, orderID kernel.UUID) (fulfillment.Linked, error) {
	if err := orderID.Validate(); err != nil {
		return fulfillment.Linked{}, err
	}

	var rows []documentRow
	query := `
		SELECT id, collection, body->>'statusId' AS status_id, created_at, updated_at
		FROM booking_documents
		WHERE collection = ANY($1)
		  AND body->'orderIds' @> to_jsonb(ARRAY[$2::text])
		ORDER BY created_at, id
	`
	collections := pq.Array([]string{collectionBookingRequests, collectionBookingConfirmations, collectionShipments})
	if err := s.db.SelectContext(ctx, &rows, query, collections, orderID.String()); err != nil {
		return fulfillment.Linked{}, fmt.Errorf("booking store: linked documents of order %s: %w", orderID, err)
	}

	var linked fulfillment.Linked
	for _, row := range rows {
		rec := row.toDomain()
		switch rec.Kind {
		case fulfillment.BookingRequest:
			linked.BookingRequests = append(linked.BookingRequests, rec)
		case fulfillment.BookingConfirmation:
			linked.BookingConfirmations = append(linked.BookingConfirmations, rec)
		case fulfillment.Shipment:
			linked.Shipments = append(linked.Shipments, rec)
		}
	}
	return linked, nil
}

// InvalidateBookings moves the booking requests and confirmations of the
// order to the cancelled booking status. Shipments are left to the booking
// side. Documents already cancelled keep their timestamps.
func (s *DocumentStore) InvalidateBookings(ctx context.Context, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	cancelled, err := s.statuses.StatusID(ctx, order.Cancelled.String(), fulfillment.BookingRequest.StatusDomain())
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("booking store: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		UPDATE booking_documents
		SET body = jsonb_set(body, '{statusId}', to_jsonb($1::text)),
		    updated_at = now()
		WHERE collection = ANY($2)
		  AND body->'orderIds' @> to_jsonb(ARRAY[$3::text])
		  AND body->>'statusId' IS DISTINCT FROM $1
	`, cancelled, pq.Array([]string{collectionBookingRequests, collectionBookingConfirmations}), orderID.String())
	if err != nil {
		return errs.NewPersistenceErrorWithCause("booking document", "invalidate", orderID.String(), err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("booking store: commit: %w", err)
	}
	return nil
}
