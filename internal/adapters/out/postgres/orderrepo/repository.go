package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/services"
	"procurement/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order with its line items, notes and participants.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	dto := fromDomain(aggregate)
	if err := db.Create(&dto).Error; err != nil {
		return err
	}

	for _, li := range aggregate.LineItems() {
		item := lineItemFromDomain(aggregate.ID(), li)
		if err := db.Create(&item).Error; err != nil {
			return err
		}
		if li.Note() == "" {
			continue
		}
		note := LineItemNoteDTO{LineItemID: item.ID, OrderID: item.OrderID, Note: li.Note()}
		if err := db.Create(&note).Error; err != nil {
			return err
		}
	}

	if err := r.insertParticipants(ctx, aggregate.ID(), aggregate.Participants()); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves the order row. Boolean and empty columns are written
// explicitly, so Select("*") is used instead of struct updates.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves the complete aggregate.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	var items []LineItemDTO
	if err := db.Where("order_id = ?", dto.ID).Order("item_number").Find(&items).Error; err != nil {
		return nil, err
	}

	var noteRows []LineItemNoteDTO
	if err := db.Where("order_id = ?", dto.ID).Find(&noteRows).Error; err != nil {
		return nil, err
	}
	notes := make(map[uuid.UUID]string, len(noteRows))
	for _, n := range noteRows {
		notes[n.LineItemID] = n.Note
	}

	var participants []ParticipantDTO
	if err := db.Where("order_id = ?", dto.ID).Find(&participants).Error; err != nil {
		return nil, err
	}

	return toDomain(dto, items, notes, participants)
}

// ApplyLineItemMutation executes one tagged write and reports the rows it affected.
func (r *GormOrderRepository) ApplyLineItemMutation(
	ctx context.Context,
	orderID kernel.UUID,
	m services.LineItemMutation,
) (int64, error) {
	db := r.db.WithContext(ctx)
	item := lineItemFromDomain(orderID, m.Item)

	var result *gorm.DB
	switch m.Entity {
	case services.LineItemRow:
		switch m.Op {
		case services.OpInsert:
			result = db.Create(&item)
		case services.OpUpdate:
			result = db.Model(&LineItemDTO{}).
				Where("id = ? AND order_id = ?", item.ID, item.OrderID).
				Select("item_number", "description", "quantity", "unit_of_measure", "unit_price").
				Updates(&item)
		case services.OpDelete:
			result = db.Where("id = ? AND order_id = ?", item.ID, item.OrderID).Delete(&LineItemDTO{})
		}
	case services.LineItemNoteRow:
		note := LineItemNoteDTO{LineItemID: item.ID, OrderID: item.OrderID, Note: m.Item.Note()}
		switch m.Op {
		case services.OpInsert:
			result = db.Create(&note)
		case services.OpUpdate:
			result = db.Model(&LineItemNoteDTO{}).
				Where("line_item_id = ?", note.LineItemID).
				Update("note", note.Note)
		case services.OpDelete:
			result = db.Where("line_item_id = ?", note.LineItemID).Delete(&LineItemNoteDTO{})
		}
	}

	if result == nil {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"line item mutation", fmt.Errorf("%s %s is not supported", m.Op, m.Entity))
	}
	if result.Error != nil {
		return 0, errs.NewPersistenceErrorWithCause(m.Entity.String(), string(m.Op), m.Item.ID().String(), result.Error)
	}
	return result.RowsAffected, nil
}

// ReplaceParticipants deletes every participant row of the order and inserts participants.
func (r *GormOrderRepository) ReplaceParticipants(
	ctx context.Context,
	orderID kernel.UUID,
	participants []order.Participant,
) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID.Bytes()).Delete(&ParticipantDTO{}).Error; err != nil {
		return err
	}
	return r.insertParticipants(ctx, orderID, participants)
}

// AddParticipant inserts a participant row unless the user already takes part.
func (r *GormOrderRepository) AddParticipant(ctx context.Context, orderID kernel.UUID, p order.Participant) error {
	dto := participantFromDomain(orderID, p)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&dto).Error
}

func (r *GormOrderRepository) AddStatusChange(ctx context.Context, change order.StatusChange) error {
	dto := StatusChangeDTO{
		OrderID:    change.OrderID.Bytes(),
		FromStatus: int(change.From),
		ToStatus:   int(change.To),
		ChangedBy:  change.ChangedBy.Bytes(),
		ChangedAt:  change.ChangedAt,
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormOrderRepository) insertParticipants(
	ctx context.Context,
	orderID kernel.UUID,
	participants []order.Participant,
) error {
	if len(participants) == 0 {
		return nil
	}
	dtos := make([]ParticipantDTO, 0, len(participants))
	for _, p := range participants {
		dtos = append(dtos, participantFromDomain(orderID, p))
	}
	return r.db.WithContext(ctx).Create(&dtos).Error
}
