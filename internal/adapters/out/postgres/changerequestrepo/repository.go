package changerequestrepo

import (
	"context"
	"errors"
	"fmt"

	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/ports"
	"procurement/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormChangeRequestRepository implements ChangeRequestRepository using GORM.
type GormChangeRequestRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormChangeRequestRepository(db *gorm.DB, tracker aggregateTracker) *GormChangeRequestRepository {
	return &GormChangeRequestRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the change request, its reviews and its line item deltas.
// A number already held by another request of the order surfaces as
// ports.ErrChangeRequestNumberTaken.
func (r *GormChangeRequestRepository) Add(ctx context.Context, cr *changerequest.ChangeRequest) error {
	if err := cr.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(cr)
	if err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err = db.Create(&dto).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrChangeRequestNumberTaken
		}
		return errs.NewPersistenceErrorWithCause("change request", "insert", cr.ID().String(), err)
	}

	if reviews := cr.Reviews(); len(reviews) > 0 {
		rows := make([]ReviewDTO, 0, len(reviews))
		for _, rv := range reviews {
			rows = append(rows, reviewFromDomain(cr.ID(), rv))
		}
		if err = db.Create(&rows).Error; err != nil {
			return errs.NewPersistenceErrorWithCause("change request review", "insert", cr.ID().String(), err)
		}
	}

	if deltas := cr.LineItems(); len(deltas) > 0 {
		rows := make([]LineItemDeltaDTO, 0, len(deltas))
		for i, d := range deltas {
			row, err := deltaFromDomain(cr.ID(), i, d)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		if err = db.Create(&rows).Error; err != nil {
			return errs.NewPersistenceErrorWithCause("change request line item", "insert", cr.ID().String(), err)
		}
	}

	r.tracker.TrackAggregate(cr.ID(), cr)
	return nil
}

func (r *GormChangeRequestRepository) Get(ctx context.Context, id kernel.UUID) (*changerequest.ChangeRequest, error) {
	return r.get(ctx, id, r.db.WithContext(ctx))
}

// GetForUpdate locks the change request row with SELECT ... FOR UPDATE. It
// only serializes anything when called inside a transaction.
func (r *GormChangeRequestRepository) GetForUpdate(
	ctx context.Context,
	id kernel.UUID,
) (*changerequest.ChangeRequest, error) {
	return r.get(ctx, id, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r *GormChangeRequestRepository) get(
	ctx context.Context,
	id kernel.UUID,
	db *gorm.DB,
) (*changerequest.ChangeRequest, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ChangeRequestDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("change request", id.String())
		}
		return nil, err
	}

	loaded, err := r.load(ctx, []ChangeRequestDTO{dto})
	if err != nil {
		return nil, err
	}
	return loaded[0], nil
}

func (r *GormChangeRequestRepository) ListByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) ([]*changerequest.ChangeRequest, error) {
	var dtos []ChangeRequestDTO
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("number").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return r.load(ctx, dtos)
}

func (r *GormChangeRequestRepository) MaxNumber(ctx context.Context, orderID kernel.UUID) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).
		Model(&ChangeRequestDTO{}).
		Where("order_id = ?", orderID.Bytes()).
		Select("COALESCE(MAX(number), 0)").
		Scan(&highest).Error
	return highest, err
}

func (r *GormChangeRequestRepository) HasOpen(ctx context.Context, orderID kernel.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ChangeRequestDTO{}).
		Where("order_id = ? AND status = ?", orderID.Bytes(), int(changerequest.Proposed)).
		Count(&count).Error
	return count > 0, err
}

// UpdateReview writes the decided review row and the request status derived
// from it. A row decided by someone else in the meantime is not overwritten.
func (r *GormChangeRequestRepository) UpdateReview(
	ctx context.Context,
	cr *changerequest.ChangeRequest,
	review changerequest.Review,
) error {
	if err := errors.Join(cr.Validate(), review.Validate()); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&ReviewDTO{}).
		Where("id = ? AND change_request_id = ? AND status = ?",
			review.ID().Bytes(), cr.ID().Bytes(), int(changerequest.Proposed)).
		Updates(map[string]any{
			"status":      int(review.Status()),
			"reviewed_at": review.ReviewedAt(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewBusinessRuleError(
			"change review already decided",
			fmt.Sprintf("review %s of change request %s is no longer Proposed", review.ID(), cr.ID()),
		)
	}

	if err := db.Model(&ChangeRequestDTO{}).
		Where("id = ?", cr.ID().Bytes()).
		Update("status", int(cr.Status())).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(cr.ID(), cr)
	return nil
}

// load fetches the reviews and deltas of dtos in two queries.
func (r *GormChangeRequestRepository) load(
	ctx context.Context,
	dtos []ChangeRequestDTO,
) ([]*changerequest.ChangeRequest, error) {
	if len(dtos) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(dtos))
	for _, dto := range dtos {
		ids = append(ids, dto.ID)
	}

	db := r.db.WithContext(ctx)
	var reviews []ReviewDTO
	if err := db.Where("change_request_id IN ?", ids).Find(&reviews).Error; err != nil {
		return nil, err
	}
	var deltas []LineItemDeltaDTO
	if err := db.Where("change_request_id IN ?", ids).Order("position").Find(&deltas).Error; err != nil {
		return nil, err
	}

	reviewsByRequest := make(map[uuid.UUID][]ReviewDTO, len(dtos))
	for _, rv := range reviews {
		reviewsByRequest[rv.ChangeRequestID] = append(reviewsByRequest[rv.ChangeRequestID], rv)
	}
	deltasByRequest := make(map[uuid.UUID][]LineItemDeltaDTO, len(dtos))
	for _, d := range deltas {
		deltasByRequest[d.ChangeRequestID] = append(deltasByRequest[d.ChangeRequestID], d)
	}

	out := make([]*changerequest.ChangeRequest, 0, len(dtos))
	for _, dto := range dtos {
		cr, err := toDomain(dto, reviewsByRequest[dto.ID], deltasByRequest[dto.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
