//go:build !cli

package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"plmsync.GO/api"
	_ "plmsync.GO/api/erp"
	_ "plmsync.GO/api/settings"
	"plmsync.GO/config"
	"plmsync.GO/core/auth"
	"plmsync.GO/core/observability"
	"plmsync.GO/cron"
	"plmsync.GO/cron/jobs"
	_ "plmsync.GO/custom"
)

func main() {
	config.LoadEnv()
	app := config.LoadAppConfig()

	fonts := []string{"standard", "slant", "small", "big", "doom"}
	figure.NewFigure("PLM -> ERP", fonts[rand.Intn(len(fonts))], true).Print()

	shutdownTracing, err := observability.Init(context.Background(), app.AppName)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	log.Println(config.InitRedis(context.Background()))

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("Database connection successful.")

	if config.GetEnv("CRON_ENABLED", "") == "true" {
		jobs.Bind(db)
		c, err := cron.StartCron(jobs.Schedules(app))
		if err != nil {
			log.Fatalf("failed to start cron: %v", err)
		}
		defer c.Stop()
		log.Println("Cron scheduler started in-process.")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				if c.Response().Header().Get("X-Request-Duration-ms") == "" {
					c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
				}
			})
			return next(c)
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "app": app.AppName})
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	api.ApplyModules(apiGroup, db)
	api.ApplyRoutes(e, db)

	go func() {
		log.Printf("Server running on :%s", app.Port)
		if err := e.Start(":" + app.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
