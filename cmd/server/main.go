package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asset-report/internal/api"
	"asset-report/internal/config"
	"asset-report/internal/database"
	"asset-report/internal/services"
	"asset-report/internal/workflow"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MongoDB holds both the bookkeeping data and the generated reports
	log.Printf("Initializing MongoDB connection (Host: %s, Port: %s, Database: %s)",
		cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
	mongoClient, err := database.NewMongoDBClient(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close()

	if cfg.OpenAI.APIKey == "" {
		log.Printf("WARNING: OPENAI_API_KEY not set, requests without their own key use rule-based fallbacks")
	}
	aiService := services.NewAIService(cfg.OpenAI)

	engine, err := workflow.NewEngine(mongoClient, mongoClient, aiService, cfg.Workflow,
		workflow.WithTemperature(cfg.OpenAI.Temperature))
	if err != nil {
		log.Fatalf("Failed to build report workflow: %v", err)
	}

	// Initialize services
	taskService := services.NewTaskService(engine, cfg.Worker)
	taskService.Start()

	pdfService := services.NewPDFService()
	reportService := services.NewReportService(mongoClient, taskService, pdfService, cfg.OpenAI)

	emailService := services.NewEmailService(cfg.Email)
	if !emailService.Enabled() {
		log.Printf("SendGrid not configured, scheduled reports will not be emailed")
	}

	var scheduleService *services.ScheduleService
	if cfg.Schedule.Enabled {
		scheduleService = services.NewScheduleService(reportService, mongoClient, pdfService, emailService)
		if err := scheduleService.Start(); err != nil {
			log.Fatalf("Failed to start report scheduler: %v", err)
		}
		defer scheduleService.Stop()
	} else {
		log.Printf("Periodic reports disabled")
	}

	handlers := api.NewHandlers(reportService, scheduleService, mongoClient)
	router := api.SetupRoutes(handlers)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("WARNING: HTTP server shutdown: %v", err)
	}
	// Let queued and running reports reach a terminal record
	if err := taskService.Shutdown(ctx); err != nil {
		log.Printf("WARNING: Report workers did not finish: %v", err)
	}
}
