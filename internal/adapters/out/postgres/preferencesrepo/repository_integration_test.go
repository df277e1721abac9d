package preferencesrepo_test

import (
	"context"
	"testing"
	"time"

	"procurement/internal/adapters/out/postgres/preferencesrepo"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/preferences"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PreferencesProviderIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	provider  *preferencesrepo.GormPreferencesProvider
}

func TestPreferencesProviderIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PreferencesProviderIntegrationTestSuite))
}

func (suite *PreferencesProviderIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&preferencesrepo.PreferencesDTO{}))
	suite.provider = preferencesrepo.NewGormPreferencesProvider(db)
}

func (suite *PreferencesProviderIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE order_preferences").Error)
}

func (suite *PreferencesProviderIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *PreferencesProviderIntegrationTestSuite) TestGet_UnconfiguredOrganization_ReturnsDefault() {
	prefs, err := suite.provider.Get(suite.T().Context(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID())

	suite.Require().NoError(err)
	suite.Equal(preferences.Default(), prefs)
}

func (suite *PreferencesProviderIntegrationTestSuite) TestSave_Get_MergesConfiguredRulesOverDefaults() {
	ctx := suite.T().Context()
	buyerOrg := kernel.NewUUID()
	err := suite.provider.Save(ctx, buyerOrg, preferences.Preferences{
		ChangeControlEnabled: true,
		Fields: map[order.Field]preferences.FieldRule{
			order.FieldDeliveryDate: {
				EditableBy:               []order.Role{order.RoleBuyer, order.RoleForwarder},
				ExcludeFromChangeControl: true,
			},
		},
	})
	suite.Require().NoError(err)

	prefs, err := suite.provider.Get(ctx, kernel.NewUUID(), kernel.NewUUID(), buyerOrg)

	suite.Require().NoError(err)
	suite.True(prefs.ChangeControlEnabled)
	suite.True(prefs.IsEditableBy(order.FieldDeliveryDate, []order.Role{order.RoleForwarder}))
	suite.False(prefs.IsChangeControlled(order.FieldDeliveryDate))
	suite.False(prefs.IsChangeControlled(order.FieldIsHot), "unconfigured fields keep the default rule")
	suite.True(prefs.IsChangeControlled(order.FieldDestination))
}

func (suite *PreferencesProviderIntegrationTestSuite) TestSave_OverwritesPreviousConfiguration() {
	ctx := suite.T().Context()
	buyerOrg := kernel.NewUUID()
	suite.Require().NoError(suite.provider.Save(ctx, buyerOrg, preferences.Preferences{ChangeControlEnabled: true}))
	suite.Require().NoError(suite.provider.Save(ctx, buyerOrg, preferences.Preferences{ChangeControlEnabled: false}))

	prefs, err := suite.provider.Get(ctx, kernel.NewUUID(), kernel.NewUUID(), buyerOrg)

	suite.Require().NoError(err)
	suite.False(prefs.ChangeControlEnabled)
}
