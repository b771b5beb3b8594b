package entity

import "time"

// PrefixWildcard in ItemPrefixFilter means "no filter".
const PrefixWildcard = "*"

// Configuration is the connector singleton. The row with the lowest ID is authoritative.
type Configuration struct {
	ID               uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ArenaWorkspaceID string     `gorm:"column:arena_workspace_id;type:varchar(64);not null;default:''" json:"arena_workspace_id"`
	ArenaEmail       string     `gorm:"column:arena_email;type:varchar(255);not null;default:''" json:"arena_email"`
	ArenaPassword    string     `gorm:"column:arena_password;type:varchar(255);not null;default:''" json:"arena_password,omitempty"`
	Cin7APIUser      string     `gorm:"column:cin7_api_user;type:varchar(255);not null;default:''" json:"cin7_api_user"`
	Cin7APIKey       string     `gorm:"column:cin7_api_key;type:varchar(255);not null;default:''" json:"cin7_api_key,omitempty"`
	ItemPrefixFilter string     `gorm:"column:item_prefix_filter;type:varchar(64);not null;default:'*'" json:"item_prefix_filter"`
	LastSyncTime     *time.Time `gorm:"column:last_sync_time" json:"last_sync_time"`
	AutoSyncEnabled  bool       `gorm:"column:auto_sync_enabled;not null;default:false" json:"auto_sync_enabled"`
	IsArenaConnected bool       `gorm:"column:is_arena_connected;not null;default:false" json:"is_arena_connected"`
	IsCin7Connected  bool       `gorm:"column:is_cin7_connected;not null;default:false" json:"is_cin7_connected"`
}

func (Configuration) TableName() string {
	return "configuration"
}

// Prefix returns the item-number prefix to harvest, "" meaning all items.
func (c Configuration) Prefix() string {
	if c.ItemPrefixFilter == PrefixWildcard {
		return ""
	}
	return c.ItemPrefixFilter
}

// HasArenaCredentials reports whether a PLM login can be attempted.
func (c Configuration) HasArenaCredentials() bool {
	return c.ArenaWorkspaceID != "" && c.ArenaEmail != ""
}

// HasCin7Credentials reports whether ERP calls can be authenticated.
func (c Configuration) HasCin7Credentials() bool {
	return c.Cin7APIUser != "" && c.Cin7APIKey != ""
}
