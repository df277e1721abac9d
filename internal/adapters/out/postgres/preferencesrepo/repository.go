// Package preferencesrepo reads the purchase order preferences of buyer organizations.
package preferencesrepo

import (
	"context"
	"encoding/json"
	"errors"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/domain/model/preferences"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferencesDTO holds one organization's configuration. FieldRules only
// lists the fields the organization configured.
type PreferencesDTO struct {
	BuyerOrgID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ChangeControlEnabled bool           `gorm:"not null;default:false"`
	FieldRules           datatypes.JSON `gorm:"type:jsonb"`
}

func (PreferencesDTO) TableName() string {
	return "order_preferences"
}

// GormPreferencesProvider implements PreferencesProvider. Organizations
// without a row get preferences.Default.
type GormPreferencesProvider struct {
	db *gorm.DB
}

func NewGormPreferencesProvider(db *gorm.DB) *GormPreferencesProvider {
	return &GormPreferencesProvider{db: db}
}

// Get returns the preferences of buyerOrgID. The acting user and
// organization do not change the result.
func (p *GormPreferencesProvider) Get(ctx context.Context, _, _, buyerOrgID kernel.UUID) (preferences.Preferences, error) {
	var dto PreferencesDTO
	err := p.db.WithContext(ctx).First(&dto, "buyer_org_id = ?", buyerOrgID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return preferences.Default(), nil
	}
	if err != nil {
		return preferences.Preferences{}, err
	}

	prefs := preferences.Default()
	prefs.ChangeControlEnabled = dto.ChangeControlEnabled
	if len(dto.FieldRules) == 0 {
		return prefs, nil
	}

	var rules map[order.Field]preferences.FieldRule
	if err = json.Unmarshal(dto.FieldRules, &rules); err != nil {
		return preferences.Preferences{}, err
	}
	for f, rule := range rules {
		if _, err := order.ParseField(string(f)); err != nil {
			return preferences.Preferences{}, err
		}
		prefs.Fields[f] = rule
	}
	return prefs, nil
}

// Save upserts the configuration of buyerOrgID.
func (p *GormPreferencesProvider) Save(ctx context.Context, buyerOrgID kernel.UUID, prefs preferences.Preferences) error {
	raw, err := json.Marshal(prefs.Fields)
	if err != nil {
		return err
	}
	dto := PreferencesDTO{
		BuyerOrgID:           buyerOrgID.Bytes(),
		ChangeControlEnabled: prefs.ChangeControlEnabled,
		FieldRules:           datatypes.JSON(raw),
	}
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&dto).Error
}
