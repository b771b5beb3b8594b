package settings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"plmsync.GO/api"
	"plmsync.GO/config"
	"plmsync.GO/core/lock"
	entity "plmsync.GO/model/entity"
	itemRepo "plmsync.GO/model/repository/item"
	settingsRepo "plmsync.GO/model/repository/settings"
	"plmsync.GO/service/rules"
)

func init() {
	api.RegisterModule("settings", RegisterSettingsRoutes)
}

// settingsView is what GET /settings returns. Secrets are never echoed back.
type settingsView struct {
	entity.Configuration
	ArenaPasswordSet bool `json:"arena_password_set"`
	Cin7APIKeySet    bool `json:"cin7_api_key_set"`
}

func view(cfg entity.Configuration) settingsView {
	v := settingsView{
		Configuration:    cfg,
		ArenaPasswordSet: cfg.ArenaPassword != "",
		Cin7APIKeySet:    cfg.Cin7APIKey != "",
	}
	v.ArenaPassword = ""
	v.Cin7APIKey = ""
	return v
}

type ruleUpdate struct {
	Value     *string `json:"rule_value"`
	IsEnabled *bool   `json:"is_enabled"`
}

func RegisterSettingsRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo := settingsRepo.NewSettingsRepository(db, lock.New(config.RedisClient))
	provider := rules.NewProvider(db)
	items := itemRepo.NewItemRepository(db)

	// GET /api/settings
	apiGroup.GET("/settings", func(c echo.Context) error {
		cfg, err := repo.Get(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, view(cfg))
	})

	// POST /api/settings – empty secrets keep the stored ones
	apiGroup.POST("/settings", func(c echo.Context) error {
		ctx := c.Request().Context()
		var in entity.Configuration
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		current, err := repo.Get(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		if in.ArenaPassword == "" {
			in.ArenaPassword = current.ArenaPassword
		}
		if in.Cin7APIKey == "" {
			in.Cin7APIKey = current.Cin7APIKey
		}
		saved, err := repo.Save(ctx, in)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, view(saved))
	})

	// GET /api/rules
	apiGroup.GET("/rules", func(c echo.Context) error {
		all, err := provider.List()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, all)
	})

	// PUT /api/rules/:key
	apiGroup.PUT("/rules/:key", func(c echo.Context) error {
		var body ruleUpdate
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		rule, err := provider.Update(c.Param("key"), body.Value, body.IsEnabled)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rule not found: " + c.Param("key")})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, rule)
	})

	// POST /api/rules/seed
	apiGroup.POST("/rules/seed", func(c echo.Context) error {
		n, err := provider.Seed()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"created": n})
	})

	// GET /api/items?prefix=06- – harvested items in the local store
	apiGroup.GET("/items", func(c echo.Context) error {
		start := time.Now()
		list, err := items.ListByPrefix(c.QueryParam("prefix"))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{"count": len(list), "items": list})
	})
}
