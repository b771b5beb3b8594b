package rule

import (
	"errors"

	"gorm.io/gorm"

	entity "plmsync.GO/model/entity"
)

type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// FindEnabled returns the enabled rule for key, or gorm.ErrRecordNotFound.
func (r *RuleRepository) FindEnabled(key string) (*entity.SyncRule, error) {
	var rule entity.SyncRule
	err := r.db.Where("rule_key = ? AND is_enabled = ?", key, true).Order("id ASC").First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *RuleRepository) Get(key string) (*entity.SyncRule, error) {
	var rule entity.SyncRule
	if err := r.db.Where("rule_key = ?", key).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *RuleRepository) All() ([]entity.SyncRule, error) {
	var rules []entity.SyncRule
	err := r.db.Order("id ASC").Find(&rules).Error
	return rules, err
}

// CreateIfMissing inserts rule unless its key already exists. Existing rules are never overwritten.
func (r *RuleRepository) CreateIfMissing(rule entity.SyncRule) (bool, error) {
	_, err := r.Get(rule.RuleKey)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := r.db.Create(&rule).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Update changes value and/or enabled flag; nil leaves a field as is.
func (r *RuleRepository) Update(key string, value *string, enabled *bool) (*entity.SyncRule, error) {
	rule, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if value != nil {
		updates["rule_value"] = *value
	}
	if enabled != nil {
		updates["is_enabled"] = *enabled
	}
	if len(updates) == 0 {
		return rule, nil
	}
	if err := r.db.Model(rule).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.Get(key)
}
