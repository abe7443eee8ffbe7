package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redoublet/formrelay/internal/api"
	"github.com/redoublet/formrelay/internal/app"
	"github.com/redoublet/formrelay/internal/config"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %v", addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file (empty for defaults)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handlers, err := app.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize relay: %v", err)
	}
	log.Printf("Email provider: %s (environment %s)", handlers.Provider, cfg.Environment)

	router := api.NewRouter(api.Routes{
		Signup:    handlers.Signup,
		BugReport: handlers.BugReport,
		Health:    api.NewHealthChecker(handlers.Provider).HandleHealth,
	}, api.Options{
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		RequestLogging: true,
	})
	server := api.NewServer(router)

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		log.Fatalf("%v", err)
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
