// Package main provides a local HTTP server for development and testing.
// It serves the comparables lookup and batch report endpoints over uploaded
// CSV datasets or the properties table.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/cors"

	"hotel-comparables-engine/internal/config"
	"hotel-comparables-engine/internal/services/database"
	"hotel-comparables-engine/internal/services/matcher"
	"hotel-comparables-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	opts, err := matcher.OptionsFromConfig(cfg)
	if err != nil {
		logger.Fatal("Invalid matcher configuration", utils.Error(err))
	}
	m, err := matcher.NewMatcher(opts)
	if err != nil {
		logger.Fatal("Failed to create matcher", utils.Error(err))
	}

	server := NewServer(m, filepath.Join(os.TempDir(), "hotel-comparables"))

	db, err := database.New(cfg)
	if err != nil {
		logger.Warn("Could not connect to database, postgres datasets disabled", utils.Error(err))
	} else {
		defer db.Close()
		server.WithDatabase(db)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(server.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Hotel comparables API server listening",
			utils.String("addr", addr),
			utils.String("ratio_band", string(m.RatioBand())),
			utils.String("ordering", string(m.Ordering())))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", utils.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", utils.Error(err))
	}
}
