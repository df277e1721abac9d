package queries

import (
	"errors"
	"time"

	"procurement/internal/core/domain/model/actor"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/guard"
)

var ErrGetOrderChangeRequestsQueryIsNotConstructed = errors.New(
	"GetOrderChangeRequestsQuery must be created via NewGetOrderChangeRequestsQuery constructor",
)

// GetOrderChangeRequestsQuery lists the change requests of an order by number.
type GetOrderChangeRequestsQuery struct {
	orderID kernel.UUID
	actor   actor.Actor

	guard guard.ConstructorGuard
}

func NewGetOrderChangeRequestsQuery(orderID kernel.UUID, a actor.Actor) (GetOrderChangeRequestsQuery, error) {
	if err := errors.Join(orderID.Validate(), a.Validate()); err != nil {
		return GetOrderChangeRequestsQuery{}, err
	}
	return GetOrderChangeRequestsQuery{orderID: orderID, actor: a, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderChangeRequestsQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderChangeRequestsQueryIsNotConstructed)
}

func (q GetOrderChangeRequestsQuery) OrderID() kernel.UUID { return q.orderID }

func (q GetOrderChangeRequestsQuery) Actor() actor.Actor { return q.actor }

// ChangeRequestSummary is one row of the change request list. PendingReviews
// counts the required approvers who have not decided yet.
type ChangeRequestSummary struct {
	ID             kernel.UUID
	Number         int
	Title          string
	Description    string
	Note           string
	Status         string
	CreatedOn      time.Time
	AuthorID       kernel.UUID
	PendingReviews int
	LineItemDeltas int
}
