package outboxrepo

import (
	"context"
	"fmt"
	"time"

	"procurement/internal/core/domain/model/thread"
	"procurement/internal/core/ports"
	"procurement/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Add(ctx context.Context, n thread.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	dto, err := fromDomain(n)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("notification", err)
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewPersistenceErrorWithCause("outbox message", "insert", n.ID, err)
	}
	return nil
}

// FetchPending locks the returned rows with SKIP LOCKED when called inside a
// transaction, so concurrent relays never pick the same message. A row whose
// payload no longer decodes is retired at maxAttempts and left out of the
// batch.
func (r *GormOutboxRepository) FetchPending(ctx context.Context, limit, maxAttempts int) ([]ports.OutboxMessage, error) {
	var dtos []MessageDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("published_at IS NULL AND attempts < ?", maxAttempts).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	out := make([]ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		msg, err := toDomain(dto)
		if err != nil {
			if err = r.retire(ctx, dto.ID, maxAttempts, err); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (r *GormOutboxRepository) retire(ctx context.Context, id uuid.UUID, maxAttempts int, cause error) error {
	err := r.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   maxAttempts,
			"last_error": fmt.Sprintf("undecodable payload: %v", cause),
		}).Error
	if err != nil {
		return errs.NewPersistenceErrorWithCause("outbox message", "retire", id.String(), err)
	}
	return nil
}

func (r *GormOutboxRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ?", id).
		Update("published_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", id)
	}
	return nil
}

func (r *GormOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", id)
	}
	return nil
}
