package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/otp-auth-api/internal/config"
	"github.com/otp-auth-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/otp-auth-api/internal/infrastructure/jwt"
	"github.com/otp-auth-api/internal/infrastructure/sns"
	transporthttp "github.com/otp-auth-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			log.Fatal("FATAL: JWT_SECRET must be set in production")
		}
		log.Println("WARN: JWT_SECRET not set, using insecure development secret")
		cfg.JWTSecret = "dev-only-insecure-secret"
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist) and enable
	// TTL-based OTP reclamation.
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// SNS SMS sender (optional — without it, dev mode returns the OTP inline).
	var smsSender sns.SMSSender
	if cfg.SMSEnabled {
		sender, err := sns.NewSender(cfg)
		if err != nil {
			log.Fatalf("SNS sender: %v", err)
		}
		smsSender = sender
	} else if cfg.IsProduction() {
		log.Println("WARN: SMS_ENABLED=false in production, OTPs will not be delivered")
	}

	deps := &transporthttp.Deps{
		OtpRepo:     dynamo.NewOtpRepo(dynamoClient, cfg.DynamoTables.Otps),
		AccountRepo: dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts),
		SMSSender:   smsSender,
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
