package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deemkeen/mammut/activitypub"
	"github.com/deemkeen/mammut/db"
	"github.com/deemkeen/mammut/util"
	"github.com/deemkeen/mammut/web"
)

// App represents the main application with all its servers and dependencies
type App struct {
	config     *util.AppConfig
	httpServer *http.Server
	deliverer  *activitypub.Deliverer
	done       chan os.Signal
}

// New creates a new App instance with the given configuration
func New(conf *util.AppConfig) (*App, error) {
	return &App{
		config: conf,
		done:   make(chan os.Signal, 1),
	}, nil
}

// Initialize sets up the database, runs migrations, and initializes servers
func (a *App) Initialize() error {
	database := db.GetDB()
	if err := database.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations complete")

	// Initialize HTTP router and server
	router, err := web.Router(a.config)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP router: %w", err)
	}

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Conf.HttpPort),
		Handler: router,
	}

	if a.config.Conf.WithAp {
		factories := activitypub.NewFactories(a.config.Conf.SslDomain, a.config.Conf.DefaultMagazine, database)
		a.deliverer = activitypub.NewDeliverer(
			factories.Resolver,
			database,
			activitypub.NewDefaultHTTPClient(30*time.Second),
		)
	}

	return nil
}

// Start starts all servers and blocks until a shutdown signal is received
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start ActivityPub delivery worker if enabled
	if a.deliverer != nil {
		a.deliverer.StartWorker(ctx)
	}

	// Setup signal handling
	signal.Notify(a.done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server
	log.Printf("Starting HTTP server on %s:%d", a.config.Conf.Host, a.config.Conf.HttpPort)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-a.done
	log.Println("Shutdown signal received")

	cancel()
	return a.Shutdown()
}

// Shutdown gracefully stops all servers with a 30 second timeout
func (a *App) Shutdown() error {
	log.Println("Initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Stopping HTTP server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return err
	}

	log.Println("HTTP server stopped gracefully")
	return nil
}
