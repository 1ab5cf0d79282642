package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"asana-ticket-numbering/config"
	_ "asana-ticket-numbering/docs" // Swagger docs
	"asana-ticket-numbering/internal/httpserver"
	ticketHTTP "asana-ticket-numbering/internal/ticket/delivery/http"
	asanaRepo "asana-ticket-numbering/internal/ticket/repository/asana"
	"asana-ticket-numbering/internal/ticket/usecase"
	"asana-ticket-numbering/internal/webhook"
	"asana-ticket-numbering/pkg/asana"
	"asana-ticket-numbering/pkg/log"
)

// @title       Asana Ticket Numbering API
// @description Numbers Asana tasks with a per-project ticket prefix when they are created or renamed.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config: ", err)
		os.Exit(1)
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Asana Ticket Numbering...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)
	logger.Infof(ctx, "Store driver: %s", cfg.Store.Driver)

	// 3. Secret and counter store
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Errorf(ctx, "Failed to open %s store: %v", cfg.Store.Driver, err)
		os.Exit(1)
	}
	defer st.close()

	// 4. Ticket domain
	asanaClient := asana.NewClient(cfg.Asana.BaseURL, cfg.Asana.PersonalAccessToken, cfg.Asana.Timeout)
	taskRepo := asanaRepo.New(asanaClient, logger)

	ticketUC := usecase.New(logger, st.repo, taskRepo, usecase.Config{
		Workers:     cfg.Ticket.Workers,
		CallTimeout: cfg.Ticket.CallTimeout,
	})

	security := webhook.NewSecurityValidator(webhook.SecurityConfig{
		AllowedIPs:      cfg.Webhook.AllowedIPs,
		RateLimitPerMin: cfg.Webhook.RateLimitPerMin,
	})
	ticketHandler := ticketHTTP.New(logger, ticketUC, security, ticketHTTP.Config{
		MaxBodySize: cfg.Webhook.MaxBodySize,
	})

	// 5. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:        logger,
		Port:          cfg.HTTPServer.Port,
		Mode:          cfg.HTTPServer.Mode,
		Environment:   cfg.Environment.Name,
		TicketHandler: ticketHandler,
		ReadyCheck:    st.ping,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 6. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
