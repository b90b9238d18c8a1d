package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/sirupsen/logrus"

	"github.com/yanivhq/yaniv-service/internal/auth"
	"github.com/yanivhq/yaniv-service/internal/cache"
	"github.com/yanivhq/yaniv-service/internal/database"
	"github.com/yanivhq/yaniv-service/internal/handlers"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	for _, arg := range os.Args[1:] {
		if arg == "-v" {
			logger.SetLevel(logrus.DebugLevel)
			logger.Debug("verbose mode enabled")
		}
	}

	// Persistence and the result queue are both optional; the service runs
	// fully in memory when neither is configured.
	if err := database.Connect(context.Background()); err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()
	if database.Enabled() {
		logger.Info("guest persistence enabled")
	}

	if err := cache.Connect(); err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	if cache.Enabled() {
		logger.Info("round result queue enabled")
	}

	// init signing keys for participant tokens; persistent keys keep
	// reconnect tokens valid across restarts and instances
	privKey, pubKey := os.Getenv("AUTH_PRIVATE_KEY_FILE"), os.Getenv("AUTH_PUBLIC_KEY_FILE")
	if privKey != "" && pubKey != "" {
		if err := auth.InitFromPath(privKey, pubKey); err != nil {
			logger.Fatalf("failed to load signing keys: %v", err)
		}
	} else {
		auth.Init()
	}

	srv := handlers.NewServer(logger)
	defer srv.Close()

	server := &http.Server{
		Handler:     srv.Handler(),
		ReadTimeout: time.Second * 10,
	}

	port := os.Getenv("YANIV_SERVICE_PORT")
	if port == "" {
		port = "8080"
	}
	l, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}
