// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// An order aggregate spans the orders table and the rows it owns: line items,
// line item notes, participants and the status history.
package orderrepo

import (
	"time"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the order row. Counterparty organizations are indexed
// because visibility checks look orders up by organization.
type OrderDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyerOrgID          uuid.UUID `gorm:"type:uuid;not null;index"`
	PONumber            string    `gorm:"column:po_number"`
	Origin              string
	Destination         string
	Terms               string
	ShipMode            string
	CargoReadyDate      *time.Time `gorm:"type:date"`
	DeliveryDate        *time.Time `gorm:"type:date"`
	SpecialInstructions string
	IsHot               bool
	SupplierOrgID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ForwarderOrgID      *uuid.UUID `gorm:"type:uuid;index"`
	ConsigneeOrgID      *uuid.UUID `gorm:"type:uuid"`
	AgentOrgID          *uuid.UUID `gorm:"type:uuid"`
	BrokerOrgID         *uuid.UUID `gorm:"type:uuid"`
	TruckerOrgID        *uuid.UUID `gorm:"type:uuid"`
	Status              int        `gorm:"not null;index"`
	IsReadyForBooking   bool       `gorm:"not null;default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

// LineItemDTO is one line item row. Notes live in LineItemNoteDTO.
type LineItemDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemNumber    int             `gorm:"not null"`
	Description   string          `gorm:"not null"`
	Quantity      decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	UnitOfMeasure string
	UnitPrice     decimal.Decimal `gorm:"type:numeric(18,4);not null"`
}

func (LineItemDTO) TableName() string {
	return "order_line_items"
}

type LineItemNoteDTO struct {
	LineItemID uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Note       string    `gorm:"not null"`
}

func (LineItemNoteDTO) TableName() string {
	return "order_line_item_notes"
}

type ParticipantDTO struct {
	OrderID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApprovalIsRequired bool      `gorm:"not null;default:false"`
}

func (ParticipantDTO) TableName() string {
	return "order_participants"
}

// StatusChangeDTO is an append-only status history row.
type StatusChangeDTO struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus int       `gorm:"not null"`
	ToStatus   int       `gorm:"not null"`
	ChangedBy  uuid.UUID `gorm:"type:uuid;not null"`
	ChangedAt  time.Time `gorm:"not null"`
}

func (StatusChangeDTO) TableName() string {
	return "order_status_history"
}

// Models lists every table of the package for migrations.
func Models() []any {
	return []any{&OrderDTO{}, &LineItemDTO{}, &LineItemNoteDTO{}, &ParticipantDTO{}, &StatusChangeDTO{}}
}

// fromDomain converts the order row of an aggregate.
func fromDomain(o *order.Order) OrderDTO {
	d := o.Details()
	return OrderDTO{
		ID:                  o.ID().Bytes(),
		BuyerOrgID:          o.BuyerOrgID().Bytes(),
		PONumber:            d.PONumber,
		Origin:              d.Origin,
		Destination:         d.Destination,
		Terms:               d.Terms,
		ShipMode:            d.ShipMode,
		CargoReadyDate:      d.CargoReadyDate,
		DeliveryDate:        d.DeliveryDate,
		SpecialInstructions: d.SpecialInstructions,
		IsHot:               d.IsHot,
		SupplierOrgID:       d.SupplierOrgID.Bytes(),
		ForwarderOrgID:      kernel.OptionalBytes(d.ForwarderOrgID),
		ConsigneeOrgID:      kernel.OptionalBytes(d.ConsigneeOrgID),
		AgentOrgID:          kernel.OptionalBytes(d.AgentOrgID),
		BrokerOrgID:         kernel.OptionalBytes(d.BrokerOrgID),
		TruckerOrgID:        kernel.OptionalBytes(d.TruckerOrgID),
		Status:              int(o.Status()),
		IsReadyForBooking:   o.IsReadyForBooking(),
		CreatedAt:           o.CreatedAt(),
		UpdatedAt:           o.UpdatedAt(),
	}
}

func lineItemFromDomain(orderID kernel.UUID, li order.LineItem) LineItemDTO {
	return LineItemDTO{
		ID:            li.ID().Bytes(),
		OrderID:       orderID.Bytes(),
		ItemNumber:    li.ItemNumber(),
		Description:   li.Description(),
		Quantity:      li.Quantity(),
		UnitOfMeasure: li.UnitOfMeasure(),
		UnitPrice:     li.UnitPrice(),
	}
}

func participantFromDomain(orderID kernel.UUID, p order.Participant) ParticipantDTO {
	return ParticipantDTO{
		OrderID:            orderID.Bytes(),
		UserID:             p.UserID().Bytes(),
		ApprovalIsRequired: p.ApprovalIsRequired(),
	}
}

// toDomain rebuilds the aggregate from its rows. notes is keyed by line item id.
func toDomain(
	dto OrderDTO,
	items []LineItemDTO,
	notes map[uuid.UUID]string,
	participants []ParticipantDTO,
) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	buyerOrgID, err := kernel.UUIDFromBytes(dto.BuyerOrgID[:])
	if err != nil {
		return nil, err
	}
	details, err := detailsToDomain(dto)
	if err != nil {
		return nil, err
	}

	lineItems := make([]order.LineItem, 0, len(items))
	for _, item := range items {
		li, liErr := lineItemToDomain(item, notes[item.ID])
		if liErr != nil {
			return nil, liErr
		}
		lineItems = append(lineItems, li)
	}

	ps := make([]order.Participant, 0, len(participants))
	for _, p := range participants {
		userID, pErr := kernel.UUIDFromBytes(p.UserID[:])
		if pErr != nil {
			return nil, pErr
		}
		participant, pErr := order.NewParticipant(userID, p.ApprovalIsRequired)
		if pErr != nil {
			return nil, pErr
		}
		ps = append(ps, participant)
	}

	return order.RestoreOrder(
		id, buyerOrgID, details,
		order.Status(dto.Status), dto.IsReadyForBooking,
		lineItems, ps,
		dto.CreatedAt, dto.UpdatedAt,
	)
}

func detailsToDomain(dto OrderDTO) (order.Details, error) {
	supplierOrgID, err := kernel.UUIDFromBytes(dto.SupplierOrgID[:])
	if err != nil {
		return order.Details{}, err
	}
	d := order.Details{
		PONumber:            dto.PONumber,
		Origin:              dto.Origin,
		Destination:         dto.Destination,
		Terms:               dto.Terms,
		ShipMode:            dto.ShipMode,
		CargoReadyDate:      dto.CargoReadyDate,
		DeliveryDate:        dto.DeliveryDate,
		SpecialInstructions: dto.SpecialInstructions,
		IsHot:               dto.IsHot,
		SupplierOrgID:       supplierOrgID,
	}

	optional := []struct {
		raw *uuid.UUID
		dst **kernel.UUID
	}{
		{dto.ForwarderOrgID, &d.ForwarderOrgID},
		{dto.ConsigneeOrgID, &d.ConsigneeOrgID},
		{dto.AgentOrgID, &d.AgentOrgID},
		{dto.BrokerOrgID, &d.BrokerOrgID},
		{dto.TruckerOrgID, &d.TruckerOrgID},
	}
	for _, o := range optional {
		id, idErr := kernel.OptionalUUIDFromBytes(o.raw)
		if idErr != nil {
			return order.Details{}, idErr
		}
		*o.dst = id
	}
	return d, nil
}

// lineItemToDomain rebuilds a line item from its row and note.
func lineItemToDomain(dto LineItemDTO, note string) (order.LineItem, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return order.LineItem{}, err
	}
	return order.RestoreLineItem(
		id, dto.ItemNumber, dto.Description,
		dto.Quantity, dto.UnitOfMeasure, dto.UnitPrice, note,
	), nil
}
