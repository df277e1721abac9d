// Package outboxrepo stores thread notifications next to the order writes
// that produced them, until the relay job hands them to the message broker.
package outboxrepo

import (
	"encoding/json"
	"time"

	"procurement/internal/core/domain/model/thread"
	"procurement/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MessageDTO is one outbox row. PublishedAt stays nil until the relay succeeds.
type MessageDTO struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Kind        string         `gorm:"not null"`
	OrderID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null"`
	Attempts    int            `gorm:"not null;default:0"`
	LastError   *string
	CreatedAt   time.Time  `gorm:"not null;index"`
	PublishedAt *time.Time `gorm:"index"`
}

func (MessageDTO) TableName() string {
	return "outbox_messages"
}

func fromDomain(n thread.Notification) (MessageDTO, error) {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return MessageDTO{}, err
	}
	orderID, err := uuid.Parse(n.OrderID)
	if err != nil {
		return MessageDTO{}, err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return MessageDTO{}, err
	}
	return MessageDTO{
		ID:        id,
		Kind:      string(n.Kind),
		OrderID:   orderID,
		Payload:   datatypes.JSON(payload),
		CreatedAt: n.OccurredAt,
	}, nil
}

func toDomain(dto MessageDTO) (ports.OutboxMessage, error) {
	var n thread.Notification
	if err := json.Unmarshal(dto.Payload, &n); err != nil {
		return ports.OutboxMessage{}, err
	}
	if err := n.Validate(); err != nil {
		return ports.OutboxMessage{}, err
	}
	return ports.OutboxMessage{
		Notification: n,
		Attempts:     dto.Attempts,
		CreatedAt:    dto.CreatedAt,
	}, nil
}
