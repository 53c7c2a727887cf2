package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursemaster/config"
	"coursemaster/database"
	"coursemaster/logger"
	"coursemaster/payment"
	"coursemaster/server"
	"coursemaster/services"
	"coursemaster/utils"
)

func main() {
	cfg := config.LoadConfig()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer appLog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := database.Connect(ctx, cfg, appLog)
	cancel()
	if err != nil {
		appLog.Fatal("Failed to connect to the database", "driver", cfg.DBDriver, "error", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			appLog.Error("Failed to close the database", "error", err)
		}
	}()

	var mailer utils.Mailer = utils.NopMailer{Log: appLog}
	if emailService := utils.NewEmailService(cfg, appLog); emailService != nil {
		mailer = emailService
	} else {
		appLog.Warn("SENDGRID_API_KEY or EMAIL_SENDER not set, emails are disabled")
	}

	provider := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	svc := services.New(cfg, st, provider, mailer, appLog)

	app := server.New(server.Options{
		Config:    cfg,
		Store:     st,
		Provider:  provider,
		Services:  svc,
		Log:       appLog,
		AccessLog: true,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		appLog.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			appLog.Error("Server shutdown failed", "error", err)
		}
	}()

	appLog.Info("Server is running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Error("Server stopped", "error", err)
	}
}
