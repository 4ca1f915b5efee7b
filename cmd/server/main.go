package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/connhub/console/internal/config"
	"github.com/connhub/console/internal/server"
)

func main() {
	port := flag.String("port", "", "Server port (overrides PORT)")
	modulesDir := flag.String("modules", "", "Installed modules directory (overrides MODULES_DIR)")
	storeURL := flag.String("store", "", "Store registry base URL (overrides STORE_URL)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *modulesDir != "" {
		cfg.Modules.Dir = *modulesDir
	}
	if *storeURL != "" {
		cfg.Store.BaseURL = *storeURL
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
