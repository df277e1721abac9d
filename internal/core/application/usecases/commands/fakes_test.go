package commands_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"procurement/internal/core/application/usecases/commands"
	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/fulfillment"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/preferences"
	"procurement/internal/core/domain/model/thread"
	"procurement/internal/core/domain/services"
	"procurement/internal/core/ports"
	"procurement/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
)

// memStore is a relational store double. Writes are staged per unit of work
// and become visible on Commit.
type memStore struct {
	mu sync.Mutex

	orders         map[kernel.UUID]*order.Order
	changeRequests []*changerequest.ChangeRequest
	outbox         []thread.Notification
	statusHistory  []order.StatusChange
	mutations      []services.LineItemMutation

	orderUpdates int
	commits      int

	// numberConflicts makes the next n change request inserts lose the race for their number.
	numberConflicts int
	// zeroRows makes matching line item mutations affect no rows.
	zeroRows func(services.LineItemMutation) bool
}

func newMemStore(orders ...*order.Order) *memStore {
	s := &memStore{orders: make(map[kernel.UUID]*order.Order)}
	for _, o := range orders {
		s.orders[o.ID()] = cloneOrder(o, o.LineItems(), o.Participants())
	}
	return s
}

func cloneOrder(o *order.Order, items []order.LineItem, participants []order.Participant) *order.Order {
	c, err := order.RestoreOrder(
		o.ID(), o.BuyerOrgID(), o.Details(), o.Status(), o.IsReadyForBooking(),
		items, participants, o.CreatedAt(), o.UpdatedAt(),
	)
	if err != nil {
		panic(err)
	}
	return c
}

func (s *memStore) order(id kernel.UUID) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[id]
	return cloneOrder(o, o.LineItems(), o.Participants())
}

func (s *memStore) Create() commands.UoW {
	return &memUoW{store: s}
}

// orderFactory exposes the store as an OrderUoWFactory.
type orderFactory struct{ store *memStore }

func (f orderFactory) Create() commands.OrderUoW { return f.store.Create() }

type memUoW struct {
	store  *memStore
	staged []func(s *memStore)
}

func (u *memUoW) Begin(context.Context) error { return nil }

func (u *memUoW) Commit(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, apply := range u.staged {
		apply(u.store)
	}
	u.staged = nil
	u.store.commits++
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	u.staged = nil
	return nil
}

func (u *memUoW) stage(apply func(s *memStore)) {
	u.staged = append(u.staged, apply)
}

func (u *memUoW) OrderRepository() ports.OrderRepository { return memOrderRepo{u} }

func (u *memUoW) ChangeRequestRepository() ports.ChangeRequestRepository {
	return memChangeRequestRepo{u}
}

func (u *memUoW) OutboxRepository() ports.OutboxRepository { return memOutboxRepo{u} }

type memOrderRepo struct{ u *memUoW }

func (r memOrderRepo) Add(_ context.Context, o *order.Order) error {
	c := cloneOrder(o, o.LineItems(), o.Participants())
	r.u.stage(func(s *memStore) { s.orders[c.ID()] = c })
	return nil
}

func (r memOrderRepo) Update(_ context.Context, o *order.Order) error {
	c := o
	r.u.stage(func(s *memStore) {
		stored := s.orders[c.ID()]
		restored, err := order.RestoreOrder(
			c.ID(), c.BuyerOrgID(), c.Details(), c.Status(), c.IsReadyForBooking(),
			stored.LineItems(), stored.Participants(), c.CreatedAt(), c.UpdatedAt(),
		)
		if err != nil {
			panic(err)
		}
		s.orders[c.ID()] = restored
		s.orderUpdates++
	})
	return nil
}

func (r memOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	o, ok := r.u.store.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return cloneOrder(o, o.LineItems(), o.Participants()), nil
}

func (r memOrderRepo) ApplyLineItemMutation(_ context.Context, orderID kernel.UUID, m services.LineItemMutation) (int64, error) {
	s := r.u.store
	s.mu.Lock()
	fail := s.zeroRows != nil && s.zeroRows(m)
	s.mu.Unlock()
	if fail {
		return 0, nil
	}

	r.u.stage(func(s *memStore) {
		s.mutations = append(s.mutations, m)
		if m.Entity != services.LineItemRow {
			return
		}
		o := s.orders[orderID]
		items := o.LineItems()
		switch m.Op {
		case services.OpInsert:
			items = append(items, m.Item)
		case services.OpUpdate:
			for i := range items {
				if items[i].ID() == m.Item.ID() {
					items[i] = m.Item
				}
			}
		case services.OpDelete:
			items = slices.DeleteFunc(items, func(li order.LineItem) bool { return li.ID() == m.Item.ID() })
		}
		s.orders[orderID] = cloneOrder(o, items, o.Participants())
	})
	return 1, nil
}

func (r memOrderRepo) ReplaceParticipants(_ context.Context, orderID kernel.UUID, participants []order.Participant) error {
	ps := slices.Clone(participants)
	r.u.stage(func(s *memStore) {
		o := s.orders[orderID]
		s.orders[orderID] = cloneOrder(o, o.LineItems(), ps)
	})
	return nil
}

func (r memOrderRepo) AddParticipant(_ context.Context, orderID kernel.UUID, p order.Participant) error {
	r.u.stage(func(s *memStore) {
		o := s.orders[orderID]
		s.orders[orderID] = cloneOrder(o, o.LineItems(), append(o.Participants(), p))
	})
	return nil
}

func (r memOrderRepo) AddStatusChange(_ context.Context, change order.StatusChange) error {
	r.u.stage(func(s *memStore) { s.statusHistory = append(s.statusHistory, change) })
	return nil
}

type memChangeRequestRepo struct{ u *memUoW }

func (r memChangeRequestRepo) Add(_ context.Context, cr *changerequest.ChangeRequest) error {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.numberConflicts > 0 {
		s.numberConflicts--
		return ports.ErrChangeRequestNumberTaken
	}
	r.u.stage(func(s *memStore) { s.changeRequests = append(s.changeRequests, cr) })
	return nil
}

func (r memChangeRequestRepo) Get(_ context.Context, id kernel.UUID) (*changerequest.ChangeRequest, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cr := range s.changeRequests {
		if cr.ID() == id {
			return cr, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("change request", id)
}

func (r memChangeRequestRepo) ListByOrder(_ context.Context, orderID kernel.UUID) ([]*changerequest.ChangeRequest, error) {
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*changerequest.ChangeRequest
	for _, cr := range s.changeRequests {
		if cr.OrderID() == orderID {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (r memChangeRequestRepo) MaxNumber(ctx context.Context, orderID kernel.UUID) (int, error) {
	crs, _ := r.ListByOrder(ctx, orderID)
	highest := 0
	for _, cr := range crs {
		highest = max(highest, cr.Number())
	}
	return highest, nil
}

func (r memChangeRequestRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*changerequest.ChangeRequest, error) {
	return r.Get(ctx, id)
}

func (r memChangeRequestRepo) HasOpen(ctx context.Context, orderID kernel.UUID) (bool, error) {
	crs, _ := r.ListByOrder(ctx, orderID)
	return slices.ContainsFunc(crs, func(cr *changerequest.ChangeRequest) bool {
		return cr.Status() == changerequest.Proposed
	}), nil
}

func (r memChangeRequestRepo) UpdateReview(context.Context, *changerequest.ChangeRequest, changerequest.Review) error {
	r.u.stage(func(*memStore) {})
	return nil
}

type memOutboxRepo struct{ u *memUoW }

func (r memOutboxRepo) Add(_ context.Context, n thread.Notification) error {
	r.u.stage(func(s *memStore) { s.outbox = append(s.outbox, n) })
	return nil
}

func (r memOutboxRepo) FetchPending(context.Context, int, int) ([]ports.OutboxMessage, error) {
	return nil, nil
}

func (r memOutboxRepo) MarkPublished(context.Context, string, time.Time) error { return nil }

func (r memOutboxRepo) MarkFailed(context.Context, string, string) error { return nil }

type MockPreferencesProvider struct{ mock.Mock }

func (m *MockPreferencesProvider) Get(ctx context.Context, userID, orgID, buyerOrgID kernel.UUID) (preferences.Preferences, error) {
	args := m.Called(ctx, userID, orgID, buyerOrgID)
	return args.Get(0).(preferences.Preferences), args.Error(1)
}

type MockFulfillmentStore struct{ mock.Mock }

func (m *MockFulfillmentStore) LinkedTo(ctx context.Context, orderID kernel.UUID) (fulfillment.Linked, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(fulfillment.Linked), args.Error(1)
}

type MockStatusCatalog struct{ mock.Mock }

func (m *MockStatusCatalog) StatusID(ctx context.Context, name, domain string) (string, error) {
	args := m.Called(ctx, name, domain)
	return args.String(0), args.Error(1)
}

func (m *MockStatusCatalog) CancelledStatuses(ctx context.Context) (services.CancelledStatuses, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.CancelledStatuses), args.Error(1)
}

type MockBookingResetter struct{ mock.Mock }

func (m *MockBookingResetter) InvalidateBookings(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockOrderCache struct{ mock.Mock }

func (m *MockOrderCache) Get(id kernel.UUID) (*order.Order, bool) {
	args := m.Called(id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Bool(1)
}

func (m *MockOrderCache) Prime(id kernel.UUID, o *order.Order) { m.Called(id, o) }

func (m *MockOrderCache) Invalidate(ids ...kernel.UUID) { m.Called(ids) }

type MockLineItemCache struct{ mock.Mock }

func (m *MockLineItemCache) Get(id kernel.UUID) (ports.LineItemProjection, bool) {
	args := m.Called(id)
	li, _ := args.Get(0).(ports.LineItemProjection)
	return li, args.Bool(1)
}

func (m *MockLineItemCache) Prime(id kernel.UUID, li ports.LineItemProjection) { m.Called(id, li) }

func (m *MockLineItemCache) Invalidate(ids ...kernel.UUID) { m.Called(ids) }

type MockOrderStatusChanger struct{ mock.Mock }

func (m *MockOrderStatusChanger) Handle(ctx context.Context, command commands.ChangeOrderStatusCommand) error {
	args := m.Called(ctx, command)
	return args.Error(0)
}

// setStatus overwrites the stored status, standing in for a status change
// committed by another handler.
func (s *memStore) setStatus(id kernel.UUID, status order.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.orders[id]
	restored, err := order.RestoreOrder(
		o.ID(), o.BuyerOrgID(), o.Details(), status, o.IsReadyForBooking(),
		o.LineItems(), o.Participants(), o.CreatedAt(), o.UpdatedAt(),
	)
	if err != nil {
		panic(err)
	}
	s.orders[id] = restored
}
