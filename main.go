package main

import (
	"context"
	"fmt"
	"kiosk/cli"
	"kiosk/config"
	"kiosk/core"
	"kiosk/handlers"
	"kiosk/kiosk"
	"kiosk/service"
	"kiosk/version"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()

	logFile, err := setupLogging(config.Settings.LogFilePath)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Check if CLI mode is requested
	if config.Settings.CLIMode {
		mainCLI()
		return
	}

	// Configure log format
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Printf("Kiosk %s starting up...", version.GetFullVersion())

	diag := core.Diag
	if config.Settings.DiagnosticsCapacity > 0 {
		diag = core.NewDiagnostics(config.Settings.DiagnosticsCapacity)
		core.Diag = diag
	}

	// Initialize services and the kiosk
	svc := service.NewServices(config.Settings, diag)
	app := kiosk.New(config.Settings, svc, diag)
	if err := app.Start(); err != nil {
		app.Shutdown()
		log.Fatalf("Failed to start kiosk: %v", err)
	}

	// Set Gin mode
	if !config.Settings.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()

	// Disable Gin color logs to avoid ANSI issues on Windows terminals
	gin.DisableConsoleColor()

	acl, err := core.ParseAccessList(config.Settings.APIAllow, config.Settings.APIDeny)
	if err != nil {
		app.Shutdown()
		log.Fatalf("Invalid API access list: %v", err)
	}

	r := handlers.NewRouter(handlers.New(app, svc), acl)

	// Listen on the configured port or the next free one
	listener, port, err := core.ListenFirstFree(config.Settings.APIHost, config.Settings.Port, 100)
	if err != nil {
		app.Shutdown()
		log.Fatalf("Failed to listen: %v", err)
	}
	if port != config.Settings.Port {
		log.Printf("Default port %d is busy. Switched to %d", config.Settings.Port, port)
	}

	srv := &http.Server{Handler: r}

	// Start server in a goroutine
	go func() {
		log.Printf("Kiosk API listening on http://%s", listener.Addr())
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for OS interrupt, escape in the hall or API-triggered shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("Received interrupt signal")
	case <-app.Done():
		log.Println("Quit requested")
	}

	log.Println("Kiosk shutting down...")

	// Persist settings and close the exhibit database
	app.Shutdown()

	// Gracefully shut down HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Kiosk exited")
}

// mainCLI entrypoint for the operator console (HTTP client mode)
func mainCLI() {
	log.SetFlags(log.Ldate | log.Ltime)

	serverURL, err := cli.ResolveServer(config.Settings.CLIServer)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Kiosk console - connecting to %s\n", serverURL)

	console, err := cli.NewConsole(serverURL)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the kiosk is running:")
		fmt.Println("     ./kiosk")
		fmt.Println("  2. Or specify a different server:")
		fmt.Printf("     ./kiosk -cli -server http://127.0.0.1:%d\n", config.Settings.Port)
		os.Exit(1)
	}

	// Start console loop (readline handles Ctrl+C automatically)
	console.Start()
}
