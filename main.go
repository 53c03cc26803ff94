package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/sehee-xx/DO-DREAM-sub000/bootstrap"
	"github.com/sehee-xx/DO-DREAM-sub000/config"
	"github.com/sehee-xx/DO-DREAM-sub000/middleware"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
	"github.com/sehee-xx/DO-DREAM-sub000/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Logger.Warn("no .env file loaded", "error", err)
	}
	logging.Init()

	cfg := config.LoadConfig()

	application, err := bootstrap.NewApp(cfg)
	if err != nil {
		logging.Logger.Error("fail NewApp", "error", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxFileSize),
	})
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	routes.RegisterFileRoutes(app, application.Handlers.FileHandler)
	routes.SetupWebSocketRoutes(app, application.Handlers.WSHandler)

	application.Workers.Start()

	// graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logging.Logger.Info("Shutting down")
		if err := app.Shutdown(); err != nil {
			logging.Logger.Error("fail shutting down http server", "error", err)
		}
	}()

	port := cfg.HttpPort
	if port == "" {
		port = "3000"
	}
	logging.Logger.Info("Server running", "port", port)
	if err := app.Listen(":" + port); err != nil {
		logging.Logger.Error("server stopped", "error", err)
	}

	if err := application.Shutdown(); err != nil {
		logging.Logger.Error("fail shutting down app", "error", err)
	}
}
