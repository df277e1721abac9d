package queries

import (
	"context"

	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderChangeRequestsQueryHandler reads change request summaries straight
// from the relational store.
type GetOrderChangeRequestsQueryHandler struct {
	db         *gorm.DB
	orderCache ports.OrderCache
	reader     OrderReader
}

func NewGetOrderChangeRequestsQueryHandler(
	db *gorm.DB,
	orderCache ports.OrderCache,
	reader OrderReader,
) *GetOrderChangeRequestsQueryHandler {
	return &GetOrderChangeRequestsQueryHandler{db: db, orderCache: orderCache, reader: reader}
}

func (h *GetOrderChangeRequestsQueryHandler) Handle(
	ctx context.Context,
	query GetOrderChangeRequestsQuery,
) ([]ChangeRequestSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if _, err := visibleOrder(ctx, h.orderCache, h.reader, query.OrderID(), query.Actor()); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			cr.id,
			cr.number,
			cr.title,
			cr.description,
			cr.note,
			cr.status,
			cr.created_on,
			cr.author_id,
			(SELECT COUNT(*) FROM change_request_reviews r
				WHERE r.change_request_id = cr.id AND r.status = ?) AS pending_reviews,
			(SELECT COUNT(*) FROM change_request_line_items li
				WHERE li.change_request_id = cr.id) AS line_item_deltas
		FROM change_requests cr
		WHERE cr.order_id = ?
		ORDER BY cr.number
	`, int(changerequest.Proposed), query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]ChangeRequestSummary, 0)
	for rows.Next() {
		var s ChangeRequestSummary
		var id, authorID uuid.UUID
		var status int

		if err = rows.Scan(
			&id,
			&s.Number,
			&s.Title,
			&s.Description,
			&s.Note,
			&status,
			&s.CreatedOn,
			&authorID,
			&s.PendingReviews,
			&s.LineItemDeltas,
		); err != nil {
			return nil, err
		}

		if s.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if s.AuthorID, err = kernel.UUIDFromBytes(authorID[:]); err != nil {
			return nil, err
		}
		s.Status = changerequest.Status(status).String()
		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
