package http

import (
	"time"

	"procurement/internal/core/application/usecases/queries"
	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// Error is the body of every non-2xx response. CommittedPhases lists the
// parts of a multi-store edit that were applied before it failed.
type Error struct {
	Code            int      `json:"code"`
	Message         string   `json:"message"`
	CommittedPhases []string `json:"committedPhases,omitempty"`
}

type OrderResponse struct {
	ID              string                `json:"id"`
	BuyerOrgID      string                `json:"buyerOrgId"`
	Status          string                `json:"status"`
	ReadyForBooking bool                  `json:"readyForBooking"`
	Fields          map[string]string     `json:"fields"`
	LineItems       []LineItemResponse    `json:"lineItems"`
	Participants    []ParticipantResponse `json:"participants"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type LineItemResponse struct {
	ID            string          `json:"id"`
	ItemNumber    int             `json:"itemNumber"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitOfMeasure string          `json:"unitOfMeasure,omitempty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Note          string          `json:"note,omitempty"`
}

type ParticipantResponse struct {
	UserID             string `json:"userId"`
	ApprovalIsRequired bool   `json:"approvalIsRequired"`
}

type ChangeRequestResponse struct {
	ID             string `json:"id"`
	Number         int    `json:"number"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Note           string `json:"note,omitempty"`
	Status         string `json:"status"`
	CreatedOn      string `json:"createdOn"`
	AuthorID       string `json:"authorId"`
	PendingReviews int    `json:"pendingReviews"`
	LineItemDeltas int    `json:"lineItemDeltas"`
}

type CancellableResponse struct {
	Cancellable bool   `json:"cancellable"`
	Reason      string `json:"reason,omitempty"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	d := o.Details()
	fields := make(map[string]string, len(order.AllFields()))
	for _, f := range order.AllFields() {
		if v := d.Value(f); v != "" {
			fields[string(f)] = v
		}
	}

	items := make([]LineItemResponse, 0, len(o.LineItems()))
	for _, li := range o.LineItems() {
		items = append(items, toLineItemResponse(li))
	}
	participants := make([]ParticipantResponse, 0, len(o.Participants()))
	for _, p := range o.Participants() {
		participants = append(participants, ParticipantResponse{
			UserID:             p.UserID().String(),
			ApprovalIsRequired: p.ApprovalIsRequired(),
		})
	}

	return OrderResponse{
		ID:              o.ID().String(),
		BuyerOrgID:      o.BuyerOrgID().String(),
		Status:          o.Status().String(),
		ReadyForBooking: o.IsReadyForBooking(),
		Fields:          fields,
		LineItems:       items,
		Participants:    participants,
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
}

func toLineItemResponse(li order.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:            li.ID().String(),
		ItemNumber:    li.ItemNumber(),
		Description:   li.Description(),
		Quantity:      li.Quantity(),
		UnitOfMeasure: li.UnitOfMeasure(),
		UnitPrice:     li.UnitPrice(),
		Note:          li.Note(),
	}
}

func toChangeRequestResponse(cr *changerequest.ChangeRequest) ChangeRequestResponse {
	pending := 0
	for _, r := range cr.Reviews() {
		if r.Status() == changerequest.Proposed {
			pending++
		}
	}
	return ChangeRequestResponse{
		ID:             cr.ID().String(),
		Number:         cr.Number(),
		Title:          cr.Title(),
		Description:    cr.Description(),
		Note:           cr.Note(),
		Status:         cr.Status().String(),
		CreatedOn:      cr.CreatedOn().Format(order.DateLayout),
		AuthorID:       cr.AuthorID().String(),
		PendingReviews: pending,
		LineItemDeltas: len(cr.LineItems()),
	}
}

func summaryToResponse(s queries.ChangeRequestSummary) ChangeRequestResponse {
	return ChangeRequestResponse{
		ID:             s.ID.String(),
		Number:         s.Number,
		Title:          s.Title,
		Description:    s.Description,
		Note:           s.Note,
		Status:         s.Status,
		CreatedOn:      s.CreatedOn.Format(order.DateLayout),
		AuthorID:       s.AuthorID.String(),
		PendingReviews: s.PendingReviews,
		LineItemDeltas: s.LineItemDeltas,
	}
}
