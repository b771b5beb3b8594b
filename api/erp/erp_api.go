// Package erp exposes the sync engine over HTTP under /api.
package erp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"plmsync.GO/api"
	"plmsync.GO/client/arena"
	"plmsync.GO/config"
	"plmsync.GO/core/lock"
	"plmsync.GO/core/syncerr"
	entity "plmsync.GO/model/entity"
	settingsRepo "plmsync.GO/model/repository/settings"
	"plmsync.GO/service/erpsync"
)

func init() {
	api.RegisterModule("erp", RegisterSyncRoutes)
}

// Runner is the part of erpsync.Engine the handlers drive.
type Runner interface {
	Harvest(ctx context.Context, prefix string) (*erpsync.HarvestResult, error)
	Push(ctx context.Context, opts erpsync.PushOptions) (*erpsync.SyncResult, error)
	SyncSingleItem(ctx context.Context, sku string, dryRun bool) (*erpsync.SyncResult, error)
	PollChanges(ctx context.Context, dryRun bool) (*erpsync.SyncResult, error)
	PerformFullSync(ctx context.Context, cfg entity.Configuration, dryRun bool) (*erpsync.FullSyncResult, error)
}

// SourceProbe and TargetProbe back the connection test endpoints.
type SourceProbe interface {
	Authenticate(ctx context.Context) error
	GetItem(ctx context.Context, guid string) (*arena.Item, error)
	GetBOM(ctx context.Context, guid string) ([]arena.BOMLine, error)
}

type TargetProbe interface {
	Verify(ctx context.Context) error
}

// NewRunner and NewProbes build collaborators from the stored configuration.
var (
	NewRunner = func(db *gorm.DB, cfg entity.Configuration) Runner {
		return erpsync.Build(db, cfg, config.LoadAppConfig())
	}
	NewProbes = func(cfg entity.Configuration) (SourceProbe, TargetProbe) {
		src, dst := erpsync.Clients(cfg, config.LoadAppConfig())
		return src, dst
	}
)

func RegisterSyncRoutes(apiGroup *echo.Group, db *gorm.DB) {
	settings := settingsRepo.NewSettingsRepository(db, lock.New(config.RedisClient))
	h := &handler{db: db, settings: settings}

	g := apiGroup.Group("/sync")
	// POST /api/sync/arena – harvest PLM items into the local store
	g.POST("/arena", h.timed(h.harvest))
	// POST /api/sync/cin7?dry_run=true – push local items to the ERP
	g.POST("/cin7", h.timed(h.push))
	// POST /api/sync/on-demand?item_number=X&dry_run=true
	g.POST("/on-demand", h.timed(h.single))
	// POST /api/sync/changes?dry_run=true – sync items of completed changes
	g.POST("/changes", h.timed(h.changes))
	// POST /api/sync?dry_run=false – harvest then push
	g.POST("", h.timed(h.full))

	t := apiGroup.Group("/test")
	t.POST("/arena/connection", h.timed(h.testArena))
	t.POST("/cin7/connection", h.timed(h.testCin7))
	t.GET("/arena/item/:guid", h.timed(h.inspectItem))
}

type handler struct {
	db       *gorm.DB
	settings *settingsRepo.SettingsRepository
}

type timedFunc func(c echo.Context, cfg entity.Configuration) (interface{}, error)

// timed loads the configuration, runs fn and writes its result with the request duration.
func (h *handler) timed(fn timedFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		cfg, err := h.settings.Get(c.Request().Context())
		var out interface{}
		if err == nil {
			out, err = fn(c, cfg)
		}
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if err != nil {
			body := echo.Map{
				"status":              "error",
				"error":               err.Error(),
				"error_kind":          syncerr.Classify(err),
				"request_duration_ms": duration,
			}
			if out != nil {
				body["result"] = out
			}
			return c.JSON(statusFor(err), body)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, erpsync.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, syncerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, syncerr.ErrValidation), errors.Is(err, syncerr.ErrMissingField):
		return http.StatusUnprocessableEntity
	case errors.Is(err, syncerr.ErrAuthentication), errors.Is(err, syncerr.ErrTransientIO):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// dryRun reads the dry_run query flag. Invalid values fall back to def.
func dryRun(c echo.Context, def bool) bool {
	v, err := strconv.ParseBool(c.QueryParam("dry_run"))
	if err != nil {
		return def
	}
	return v
}

func (h *handler) harvest(c echo.Context, cfg entity.Configuration) (interface{}, error) {
	res, err := NewRunner(h.db, cfg).Harvest(c.Request().Context(), cfg.Prefix())
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (h *handler) push(c echo.Context, cfg entity.Configuration) (interface{}, error) {
	res, err := NewRunner(h.db, cfg).Push(c.Request().Context(), erpsync.PushOptions{
		Prefix: cfg.Prefix(),
		DryRun: dryRun(c, true),
	})
	if err != nil {
		if res == nil {
			return nil, err
		}
		return res, err
	}
	return res, nil
}

func (h *handler) single(c echo.Context, cfg entity.Configuration) (interface{}, error) {
	sku := c.QueryParam("item_number")
	if sku == "" {
		return nil, syncerr.MissingField("request", "item_number")
	}
	res, err := NewRunner(h.db, cfg).SyncSingleItem(c.Request().Context(), sku, dryRun(c, true))
	if res == nil {
		return nil, err
	}
	return res, err
}

func (h *handler) changes(c echo.Context, cfg entity.Configuration) (interface{}, error) {
	res, err := NewRunner(h.db, cfg).PollChanges(c.Request().Context(), dryRun(c, true))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (h *handler) full(c echo.Context, cfg entity.Configuration) (interface{}, error) {
	res, err := NewRunner(h.db, cfg).PerformFullSync(c.Request().Context(), cfg, dryRun(c, false))
	if res == nil {
		return nil, err
	}
	return res, err
}

func (h *handler) testArena(c echo.Context, cfg entity.Configuration) (interface{}, error) {
	ctx := c.Request().Context()
	src, _ := NewProbes(cfg)
	err := src.Authenticate(ctx)
	ok := err == nil
	if serr := h.settings.SetConnectivity(ctx, &ok, nil); serr != nil {
		return nil, serr
	}
	if err != nil {
		return nil, err
	}
	return echo.Map{"status": "success", "message": "Arena connection successful"}, nil
}

func (h *handler) testCin7(c echo.Context, cfg entity.Configuration) (interface{}, error) {
	ctx := c.Request().Context()
	_, dst := NewProbes(cfg)
	err := dst.Verify(ctx)
	ok := err == nil
	if serr := h.settings.SetConnectivity(ctx, nil, &ok); serr != nil {
		return nil, serr
	}
	if err != nil {
		return nil, err
	}
	return echo.Map{"status": "success", "message": "Cin7 connection successful"}, nil
}

// inspectItem returns the typed detail record and BOM of one PLM item.
func (h *handler) inspectItem(c echo.Context, cfg entity.Configuration) (interface{}, error) {
	ctx := c.Request().Context()
	src, _ := NewProbes(cfg)
	guid := c.Param("guid")
	item, err := src.GetItem(ctx, guid)
	if err != nil {
		return nil, err
	}
	bom, err := src.GetBOM(ctx, guid)
	if err != nil {
		return nil, err
	}
	return echo.Map{
		"item":       item,
		"bom":        bom,
		"attributes": erpsync.ExtractAttributes(erpsync.MapAttributes(item.AdditionalAttributes)),
	}, nil
}
