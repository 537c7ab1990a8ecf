package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/carryit/rentpay/app/models"
	"github.com/carryit/rentpay/app/repository"
	"github.com/carryit/rentpay/internal/pkg/cache"
	"github.com/carryit/rentpay/internal/pkg/database"
	"github.com/carryit/rentpay/internal/pkg/env"
	"github.com/carryit/rentpay/internal/pkg/monitor"
	"github.com/carryit/rentpay/internal/pkg/qrpay"
	"github.com/carryit/rentpay/internal/pkg/reconcile"
	"github.com/carryit/rentpay/internal/pkg/router"
	"github.com/carryit/rentpay/internal/pkg/scheduler"
)

func main() {
	app := NewApplication()

	// Graceful shutdown: stop the scheduler before the HTTP server goes away.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		scheduler.GetManager().Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)
	if err := models.LoadSettings(db); err != nil {
		log.Printf("Warning: could not load settings, using defaults: %v", err)
	}

	repos := repository.GetGlobalRepositories()
	manager := scheduler.GetManager()
	manager.Configure(
		monitor.NewService(repos),
		reconcile.NewService(repos),
		qrpay.NewService(repos.PaymentRequest),
	)
	manager.Start()

	app := fiber.New(fiber.Config{
		AppName: models.GetAppSettings().MerchantName,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
