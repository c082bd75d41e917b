package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mnas4716/Vapi-medical-assistant/internal/config"
	"github.com/mnas4716/Vapi-medical-assistant/internal/handler"
	"github.com/mnas4716/Vapi-medical-assistant/internal/observability"
	"github.com/mnas4716/Vapi-medical-assistant/internal/service"
)

func main() {
	ctx := context.Background()

	config.Load()
	observability.Init()

	services, err := initServices(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.RequestContextMiddleware())
	router.Use(observability.AccessLogMiddleware())

	webhookHandler := handler.NewWebhookHandler(services.Clinic)

	router.GET("/", webhookHandler.Root)
	router.POST("/", handler.VapiAuthMiddleware(), webhookHandler.HandleFunctionCall)
	router.POST("/agent", handler.VapiAuthMiddleware(), webhookHandler.HandleFunctionCall)
	router.POST("/webhooks/*path", webhookHandler.GenericWebhook)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initServices builds the Google clients and wires the clinic orchestrator.
func initServices(ctx context.Context) (*service.Services, error) {
	sheetsClient, err := service.NewSheetsClient(ctx)
	if err != nil {
		return nil, err
	}

	calendarClient, err := service.NewCalendarClient(ctx)
	if err != nil {
		return nil, err
	}

	notifier := service.NewDiscordNotifier(config.DiscordWebhookURL)
	if notifier == nil {
		log.Printf("Warning: DISCORD_WEBHOOK_URL not configured, notifications disabled")
	}

	clinic := service.NewClinic(sheetsClient, calendarClient, notifier)

	return &service.Services{
		SheetsClient:    sheetsClient,
		CalendarClient:  calendarClient,
		DiscordNotifier: notifier,
		Clinic:          clinic,
	}, nil
}
