// Package changerequestrepo persists change requests, their review rows and
// their line item deltas.
package changerequestrepo

import (
	"encoding/json"
	"time"

	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ChangeRequestDTO is the change request row. Numbers are unique per order.
type ChangeRequestDTO struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_change_requests_order_number"`
	Number       int            `gorm:"not null;uniqueIndex:idx_change_requests_order_number"`
	Title        string         `gorm:"not null"`
	Description  string         `gorm:"not null"`
	Note         string         `gorm:"not null;default:''"`
	Status       int            `gorm:"not null"`
	CreatedOn    time.Time      `gorm:"type:date;not null"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null"`
	FieldChanges datatypes.JSON `gorm:"type:jsonb"`
}

func (ChangeRequestDTO) TableName() string {
	return "change_requests"
}

type ReviewDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChangeRequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	ReviewerID      uuid.UUID `gorm:"type:uuid;not null"`
	Status          int       `gorm:"not null"`
	ReviewedAt      *time.Time
}

func (ReviewDTO) TableName() string {
	return "change_request_reviews"
}

// LineItemDeltaDTO keeps the position of a delta so that removals of a
// replacement stay ahead of its additions.
type LineItemDeltaDTO struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ChangeRequestID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Position        int            `gorm:"not null"`
	Action          string         `gorm:"not null"`
	LineItemID      *uuid.UUID     `gorm:"type:uuid"`
	ItemNumber      int            `gorm:"not null"`
	Proposed        datatypes.JSON `gorm:"type:jsonb"`
	Previous        datatypes.JSON `gorm:"type:jsonb"`
}

func (LineItemDeltaDTO) TableName() string {
	return "change_request_line_items"
}

// Models lists every table of the package for migrations.
func Models() []any {
	return []any{&ChangeRequestDTO{}, &ReviewDTO{}, &LineItemDeltaDTO{}}
}

type fieldChangeJSON struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

type lineItemJSON struct {
	Description   string `json:"description"`
	Quantity      string `json:"quantity"`
	UnitOfMeasure string `json:"unitOfMeasure,omitempty"`
	UnitPrice     string `json:"unitPrice"`
	Note          string `json:"note,omitempty"`
}

func fromDomain(cr *changerequest.ChangeRequest) (ChangeRequestDTO, error) {
	changes := make([]fieldChangeJSON, 0, len(cr.FieldChanges()))
	for _, c := range cr.FieldChanges() {
		changes = append(changes, fieldChangeJSON{Field: string(c.Field), From: c.From, To: c.To})
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return ChangeRequestDTO{}, err
	}

	return ChangeRequestDTO{
		ID:           cr.ID().Bytes(),
		OrderID:      cr.OrderID().Bytes(),
		Number:       cr.Number(),
		Title:        cr.Title(),
		Description:  cr.Description(),
		Note:         cr.Note(),
		Status:       int(cr.Status()),
		CreatedOn:    cr.CreatedOn(),
		AuthorID:     cr.AuthorID().Bytes(),
		FieldChanges: datatypes.JSON(raw),
	}, nil
}

func reviewFromDomain(changeRequestID kernel.UUID, r changerequest.Review) ReviewDTO {
	return ReviewDTO{
		ID:              r.ID().Bytes(),
		ChangeRequestID: changeRequestID.Bytes(),
		ReviewerID:      r.ReviewerID().Bytes(),
		Status:          int(r.Status()),
		ReviewedAt:      r.ReviewedAt(),
	}
}

func deltaFromDomain(changeRequestID kernel.UUID, position int, d changerequest.LineItemDelta) (LineItemDeltaDTO, error) {
	proposed, err := draftJSON(d.Proposed)
	if err != nil {
		return LineItemDeltaDTO{}, err
	}
	previous, err := draftJSON(d.Previous)
	if err != nil {
		return LineItemDeltaDTO{}, err
	}
	return LineItemDeltaDTO{
		ID:              uuid.New(),
		ChangeRequestID: changeRequestID.Bytes(),
		Position:        position,
		Action:          string(d.Action),
		LineItemID:      kernel.OptionalBytes(d.LineItemID),
		ItemNumber:      d.ItemNumber,
		Proposed:        proposed,
		Previous:        previous,
	}, nil
}

func draftJSON(d *order.LineItemDraft) (datatypes.JSON, error) {
	if d == nil {
		return nil, nil
	}
	raw, err := json.Marshal(lineItemJSON{
		Description:   d.Description,
		Quantity:      d.Quantity.String(),
		UnitOfMeasure: d.UnitOfMeasure,
		UnitPrice:     d.UnitPrice.String(),
		Note:          d.Note,
	})
	return datatypes.JSON(raw), err
}

func draftFromJSON(raw datatypes.JSON) (*order.LineItemDraft, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var j lineItemJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, err
	}
	d := order.LineItemDraft{Description: j.Description, UnitOfMeasure: j.UnitOfMeasure, Note: j.Note}
	var err error
	if d.Quantity, err = decimal.NewFromString(j.Quantity); err != nil {
		return nil, err
	}
	if d.UnitPrice, err = decimal.NewFromString(j.UnitPrice); err != nil {
		return nil, err
	}
	return &d, nil
}

func toDomain(dto ChangeRequestDTO, reviews []ReviewDTO, deltas []LineItemDeltaDTO) (*changerequest.ChangeRequest, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	authorID, err := kernel.UUIDFromBytes(dto.AuthorID[:])
	if err != nil {
		return nil, err
	}

	var changes []fieldChangeJSON
	if len(dto.FieldChanges) > 0 {
		if err = json.Unmarshal(dto.FieldChanges, &changes); err != nil {
			return nil, err
		}
	}
	draft := changerequest.Draft{
		OrderID:     orderID,
		AuthorID:    authorID,
		Description: dto.Description,
		Note:        dto.Note,
	}
	for _, c := range changes {
		draft.FieldChanges = append(draft.FieldChanges, order.FieldChange{Field: order.Field(c.Field), From: c.From, To: c.To})
	}

	for _, row := range deltas {
		delta, err := deltaToDomain(row)
		if err != nil {
			return nil, err
		}
		draft.LineItems = append(draft.LineItems, delta)
	}

	restored := make([]changerequest.Review, 0, len(reviews))
	for _, row := range reviews {
		reviewID, err := kernel.UUIDFromBytes(row.ID[:])
		if err != nil {
			return nil, err
		}
		reviewerID, err := kernel.UUIDFromBytes(row.ReviewerID[:])
		if err != nil {
			return nil, err
		}
		r, err := changerequest.RestoreReview(reviewID, reviewerID, changerequest.Status(row.Status), row.ReviewedAt)
		if err != nil {
			return nil, err
		}
		restored = append(restored, r)
	}

	return changerequest.RestoreChangeRequest(
		id, dto.Number, draft, changerequest.Status(dto.Status), dto.CreatedOn, restored,
	)
}

func deltaToDomain(row LineItemDeltaDTO) (changerequest.LineItemDelta, error) {
	action, err := changerequest.ParseLineItemAction(row.Action)
	if err != nil {
		return changerequest.LineItemDelta{}, err
	}
	lineItemID, err := kernel.OptionalUUIDFromBytes(row.LineItemID)
	if err != nil {
		return changerequest.LineItemDelta{}, err
	}
	proposed, err := draftFromJSON(row.Proposed)
	if err != nil {
		return changerequest.LineItemDelta{}, err
	}
	previous, err := draftFromJSON(row.Previous)
	if err != nil {
		return changerequest.LineItemDelta{}, err
	}
	return changerequest.LineItemDelta{
		Action:     action,
		LineItemID: lineItemID,
		ItemNumber: row.ItemNumber,
		Proposed:   proposed,
		Previous:   previous,
	}, nil
}
