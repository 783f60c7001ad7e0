package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/hotel_booking/configs"
	"github.com/anjiri1684/hotel_booking/database"
	"github.com/anjiri1684/hotel_booking/events"
	"github.com/anjiri1684/hotel_booking/handlers"
	"github.com/anjiri1684/hotel_booking/jobs"
	"github.com/anjiri1684/hotel_booking/notifications"
	"github.com/anjiri1684/hotel_booking/routes"
	"github.com/anjiri1684/hotel_booking/services"
	"github.com/anjiri1684/hotel_booking/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("🔥 Failed to load configuration: %v", err)
	}

	database.ConnectDB()
	database.Migrate()
	if err := database.SeedStatuses(database.DB); err != nil {
		log.Fatalf("🔥 Failed to seed status catalog: %v", err)
	}
	database.SeedAdmin()
	notifications.InitEmailService()

	statuses, err := services.LoadStatusCatalog(database.DB)
	if err != nil {
		log.Fatalf("🔥 Failed to load status catalog: %v", err)
	}

	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURL, cfg.EventExchange)
		if err != nil {
			log.Printf("⚠️ Event publisher unavailable, lifecycle events will be dropped: %v", err)
		} else {
			defer publisher.Close()
		}
	}

	hub := websocket.NewHub()
	go hub.Run()

	bookingService := services.NewBookingService(database.DB, statuses, hub, publisher)
	statusService := services.NewStatusService(database.DB, statuses, hub, publisher)
	handlers.SetServices(bookingService, statusService, hub)

	sweeper := jobs.NewExpirySweeper(database.DB, statuses, statusService, cfg.SweepInterval, cfg.PendingGraceWindow)
	sweeper.Start()

	c := cron.New()
	c.AddFunc("0 * * * *", func() {
		jobs.SendCheckInReminders(database.DB, statuses, statusService)
	})
	c.Start()
	log.Println("✅ Cron job for check-in reminders scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Hotel Booking",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Hotel Booking API",
		})
	})

	routes.PublicRoutes(app)
	routes.BookingRoutes(app)
	routes.AdminRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		sweeper.Stop()
		c.Stop()
		hub.Stop()
		_ = app.Shutdown()
	}()

	log.Printf("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
