package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "procurement/internal/adapters/out/postgres"
	"procurement/internal/core/domain/model/changerequest"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/thread"
	"procurement/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite runs the unit of work against a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(postgres_adapter.Models()...))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest truncates every table to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec(`TRUNCATE TABLE orders, order_line_items, order_line_item_notes, order_participants,
		order_status_history, change_requests, change_request_reviews, change_request_line_items,
		outbox_messages, order_preferences`).Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.ChangeRequestRepository())
	suite.NotNil(uow1.OutboxRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "Should error when committing without active transaction")
	suite.Require().Error(uow.Rollback(ctx), "Should error when rolling back without active transaction")
}

// TestUnitOfWork_ChangeRequestSubmission commits the writes of a change
// request submission together: request, order readiness and thread message.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_ChangeRequestSubmission() {
	ctx := suite.T().Context()
	o := suite.createTestOrder()
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	cr := suite.createChangeRequest(o)
	suite.Require().NoError(uow.ChangeRequestRepository().Add(ctx, cr))
	o.MarkNotReadyForBooking(o.UpdatedAt().Add(time.Minute))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, o))
	n, err := thread.NewChangeRequestSubmitted(cr, participantIDs(o), o.UpdatedAt())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.OutboxRepository().Add(ctx, n))

	suite.Equal([]kernel.UUID{cr.ID(), o.ID()}, uow.(*postgres_adapter.GormUnitOfWork).TrackedAggregates())
	suite.Require().NoError(uow.Commit(ctx))

	fresh := suite.factory.Create()
	open, err := fresh.ChangeRequestRepository().HasOpen(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(open)
	stored, err := fresh.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.False(stored.IsReadyForBooking())
	pending, err := fresh.OutboxRepository().FetchPending(ctx, 10, 5)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 1)
	suite.Equal(thread.KindChangeRequestSubmitted, pending[0].Notification.Kind)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := suite.T().Context()
	o := suite.createTestOrder()
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	cr := suite.createChangeRequest(o)
	suite.Require().NoError(uow.ChangeRequestRepository().Add(ctx, cr))
	_, err := uow.ChangeRequestRepository().Get(ctx, cr.ID())
	suite.Require().NoError(err, "the change request is visible inside its transaction")

	suite.Require().NoError(uow.Rollback(ctx))
	suite.Empty(uow.(*postgres_adapter.GormUnitOfWork).TrackedAggregates())

	_, err = suite.factory.Create().ChangeRequestRepository().Get(ctx, cr.ID())
	suite.Require().Error(err, "Change request should not exist after rollback")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := suite.T().Context()
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()
	order1 := suite.createTestOrder()
	order2 := suite.createTestOrder()

	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))
	suite.Require().NoError(uow1.OrderRepository().Add(ctx, order1))
	suite.Require().NoError(uow2.OrderRepository().Add(ctx, order2))

	_, err := uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see order2")
	_, err = uow2.OrderRepository().Get(ctx, order1.ID())
	suite.Require().Error(err, "UOW2 should not see order1")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	newUow := suite.factory.Create()
	_, err = newUow.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "Order1 should persist after commit")
	_, err = newUow.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "Order2 should not persist after rollback")
}

func (suite *UnitOfWorkIntegrationTestSuite) createTestOrder() *order.Order {
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	buyer, err := order.NewParticipant(kernel.NewUUID(), true)
	suite.Require().NoError(err)
	supplier, err := order.NewParticipant(kernel.NewUUID(), true)
	suite.Require().NoError(err)

	o, err := order.RestoreOrder(
		kernel.NewUUID(), kernel.NewUUID(),
		order.Details{PONumber: "PO-7", Destination: "Felixstowe", SupplierOrgID: kernel.NewUUID()},
		order.Accepted, true, nil,
		[]order.Participant{buyer, supplier},
		now, now,
	)
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) createChangeRequest(o *order.Order) *changerequest.ChangeRequest {
	author := o.Participants()[0].UserID()
	cr, err := changerequest.NewChangeRequest(kernel.NewUUID(), 1, changerequest.Draft{
		OrderID:      o.ID(),
		AuthorID:     author,
		Description:  "Destination: Felixstowe → Rotterdam",
		FieldChanges: []order.FieldChange{{Field: order.FieldDestination, From: "Felixstowe", To: "Rotterdam"}},
	}, o.Participants(), o.UpdatedAt())
	suite.Require().NoError(err)
	return cr
}

func participantIDs(o *order.Order) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(o.Participants()))
	for _, p := range o.Participants() {
		ids = append(ids, p.UserID())
	}
	return ids
}
