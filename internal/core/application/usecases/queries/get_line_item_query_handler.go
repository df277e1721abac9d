package queries

import (
	"context"
	"database/sql"
	"errors"

	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/ports"
	"procurement/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetLineItemQueryHandler serves line item projections from the line item
// cache. Direct line item edits invalidate the entries they touch.
type GetLineItemQueryHandler struct {
	db            *gorm.DB
	orderCache    ports.OrderCache
	lineItemCache ports.LineItemCache
	reader        OrderReader
}

func NewGetLineItemQueryHandler(
	db *gorm.DB,
	orderCache ports.OrderCache,
	lineItemCache ports.LineItemCache,
	reader OrderReader,
) *GetLineItemQueryHandler {
	return &GetLineItemQueryHandler{db: db, orderCache: orderCache, lineItemCache: lineItemCache, reader: reader}
}

func (h *GetLineItemQueryHandler) Handle(ctx context.Context, query GetLineItemQuery) (order.LineItem, error) {
	if err := query.Validate(); err != nil {
		return order.LineItem{}, err
	}
	if _, err := visibleOrder(ctx, h.orderCache, h.reader, query.OrderID(), query.Actor()); err != nil {
		return order.LineItem{}, err
	}

	if p, ok := h.lineItemCache.Get(query.LineItemID()); ok {
		if !p.OrderID.IsEqual(query.OrderID()) {
			return order.LineItem{}, errs.NewObjectNotFoundError("line item", query.LineItemID().String())
		}
		return p.Item, nil
	}

	var (
		itemNumber    int
		description   string
		quantity      decimal.Decimal
		unitOfMeasure string
		unitPrice     decimal.Decimal
		note          sql.NullString
	)
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			li.item_number,
			li.description,
			li.quantity,
			li.unit_of_measure,
			li.unit_price,
			n.note
		FROM order_line_items li
		LEFT JOIN order_line_item_notes n ON n.line_item_id = li.id
		WHERE li.id = ? AND li.order_id = ?
	`, query.LineItemID().Bytes(), query.OrderID().Bytes()).Row().
		Scan(&itemNumber, &description, &quantity, &unitOfMeasure, &unitPrice, &note)
	if errors.Is(err, sql.ErrNoRows) {
		return order.LineItem{}, errs.NewObjectNotFoundError("line item", query.LineItemID().String())
	}
	if err != nil {
		return order.LineItem{}, err
	}

	li := order.RestoreLineItem(
		query.LineItemID(), itemNumber, description, quantity, unitOfMeasure, unitPrice, note.String,
	)
	h.lineItemCache.Prime(query.LineItemID(), ports.LineItemProjection{OrderID: query.OrderID(), Item: li})
	return li, nil
}
