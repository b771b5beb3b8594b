// Package custom holds site-specific extensions registered at init.
package custom

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"plmsync.GO/api"
	"plmsync.GO/cmd"
	"plmsync.GO/config"
	"plmsync.GO/core/lock"
	itemRepo "plmsync.GO/model/repository/item"
	settingsRepo "plmsync.GO/model/repository/settings"
)

// Status summarizes the connector state.
type Status struct {
	AutoSyncEnabled  bool       `json:"auto_sync_enabled"`
	ItemPrefixFilter string     `json:"item_prefix_filter"`
	LastSyncTime     *time.Time `json:"last_sync_time"`
	ArenaConnected   bool       `json:"is_arena_connected"`
	Cin7Connected    bool       `json:"is_cin7_connected"`
	HarvestedItems   int64      `json:"harvested_items"`
}

// LoadStatus reads the configuration row and the local item count.
func LoadStatus(ctx context.Context, db *gorm.DB) (Status, error) {
	cfg, err := settingsRepo.NewSettingsRepository(db, lock.New(config.RedisClient)).Get(ctx)
	if err != nil {
		return Status{}, err
	}
	n, err := itemRepo.NewItemRepository(db).Count()
	if err != nil {
		return Status{}, err
	}
	return Status{
		AutoSyncEnabled:  cfg.AutoSyncEnabled,
		ItemPrefixFilter: cfg.ItemPrefixFilter,
		LastSyncTime:     cfg.LastSyncTime,
		ArenaConnected:   cfg.IsArenaConnected,
		Cin7Connected:    cfg.IsCin7Connected,
		HarvestedItems:   n,
	}, nil
}

func init() {
	cmd.Register(&cobra.Command{
		Use:   "sync:status",
		Short: "Show auto sync state, last sync time and local item count",
		RunE: func(c *cobra.Command, args []string) error {
			db, err := config.NewDB()
			if err != nil {
				return err
			}
			s, err := LoadStatus(c.Context(), db)
			if err != nil {
				return err
			}
			last := "never"
			if s.LastSyncTime != nil {
				last = s.LastSyncTime.Format(time.RFC3339)
			}
			c.Printf("Auto sync:       %v\nPrefix filter:   %s\nLast sync:       %s\nArena connected: %v\nCin7 connected:  %v\nHarvested items: %d\n",
				s.AutoSyncEnabled, s.ItemPrefixFilter, last, s.ArenaConnected, s.Cin7Connected, s.HarvestedItems)
			return nil
		},
	})

	// GET /api/status
	api.RegisterModule("status", func(g *echo.Group, db *gorm.DB) {
		g.GET("/status", func(c echo.Context) error {
			s, err := LoadStatus(c.Request().Context(), db)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusOK, s)
		})
	})
}
