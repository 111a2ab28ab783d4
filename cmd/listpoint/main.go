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

	"github.com/handfistface/ListPoint/internal/blob"
	"github.com/handfistface/ListPoint/internal/database"
	"github.com/handfistface/ListPoint/internal/logging"
	"github.com/handfistface/ListPoint/internal/server"
)

func main() {
	port := os.Getenv("LISTPOINT_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("LISTPOINT_DB_PATH")
	if dbPath == "" {
		dbPath = "listpoint.db"
	}

	logger := logging.Setup(os.Getenv("LISTPOINT_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		SecureCookies: os.Getenv("LISTPOINT_SECURE_COOKIES") != "false",
		Blob: blob.Config{
			Endpoint:      os.Getenv("LISTPOINT_S3_ENDPOINT"),
			Bucket:        os.Getenv("LISTPOINT_S3_BUCKET"),
			Region:        os.Getenv("LISTPOINT_S3_REGION"),
			AccessKey:     os.Getenv("LISTPOINT_S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("LISTPOINT_S3_SECRET_KEY"),
			PublicBaseURL: os.Getenv("LISTPOINT_S3_PUBLIC_URL"),
		},
	}

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}

	// Periodic cleanup of expired sessions and stale rate-limit buckets.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("session cleanup", "deleted", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("ListPoint running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
