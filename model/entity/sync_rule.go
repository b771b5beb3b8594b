package entity

// SyncRule is a named business default consulted by the sync engine.
type SyncRule struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RuleKey   string `gorm:"column:rule_key;type:varchar(64);not null;uniqueIndex" json:"rule_key"`
	RuleName  string `gorm:"column:rule_name;type:varchar(255);not null" json:"rule_name"`
	RuleValue string `gorm:"column:rule_value;type:varchar(255);not null;default:''" json:"rule_value"`
	IsEnabled bool   `gorm:"column:is_enabled;not null" json:"is_enabled"`
}

func (SyncRule) TableName() string {
	return "sync_rule"
}
