/*
Package main
File: main.go
Description: Server entry point. Loads the galaxy catalog, opens storage, starts
the persistence outbox and the real-time WebSocket hub, and runs the heartbeat
that expires notifications and closes finished days.
*/

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everforgeworks/habit-galaxy/internal/api"
	"github.com/everforgeworks/habit-galaxy/internal/auth"
	"github.com/everforgeworks/habit-galaxy/internal/config"
	"github.com/everforgeworks/habit-galaxy/internal/game"
	"github.com/everforgeworks/habit-galaxy/internal/outbox"
	"github.com/everforgeworks/habit-galaxy/internal/session"
	"github.com/everforgeworks/habit-galaxy/internal/storage"
)

func main() {
	// 1. Runtime settings from the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config Fail: %v", err)
	}

	// 2. Load the static universe configuration from YAML
	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Catalog Fail: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage and the write-behind outbox
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("Storage Fail: %v", err)
	}
	store := storage.NewStore(db)
	defer store.Close()

	box := outbox.New(cfg.OutboxSize, cfg.OutboxMaxElapsed)
	box.Start(context.Background())

	// 4. Real-time hub, sessions and handlers
	hub := api.NewHub(nil)
	go hub.Run()

	sessions := session.NewManager(catalog, session.Deps{
		Profiles:        store.Profiles(),
		Inventory:       store.Inventory(),
		Bosses:          store.Bosses(),
		HabitLogs:       store.HabitLogs(),
		Queue:           box,
		Pusher:          hub,
		Presence:        hub,
		NotificationTTL: cfg.NotificationTTL,
		IdleTTL:         cfg.SessionIdleTTL,
	})
	authSvc := auth.NewService(store.Users(), cfg.JWTSecret, cfg.TokenTTL)
	handler := api.NewHandler(authSvc, sessions, store.Profiles(), hub)
	hub.SetInbound(handler.HandleInbound)

	// 5. THE HEARTBEAT
	// Expires notifications and settles streaks when the calendar day turns.
	go func() {
		ticker := time.NewTicker(cfg.Heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rep := sessions.Tick(now)
				if rep.DaysClosed > 0 {
					log.Printf("Heartbeat: closed %d days", rep.DaysClosed)
				}
				if rep.Evicted > 0 {
					log.Printf("Heartbeat: released %d idle sessions", rep.Evicted)
				}
			}
		}
	}()

	// 6. Hot-reload logic: Listen for SIGHUP to refresh the catalog without restart
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
				log.Println("SIGNAL: Reloading catalog...")
				c, err := loadCatalog(cfg.CatalogPath)
				if err != nil {
					log.Printf("Reload failed, keeping current catalog: %v", err)
					continue
				}
				sessions.SetCatalog(c)
			}
		}
	}()

	// 7. Setup Router and start the Server
	mux := http.NewServeMux()
	handler.Routes(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.CORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		// Tell connected apps to reconnect once the server is back.
		if err := hub.BroadcastEvent("server_shutdown", nil); err != nil {
			log.Printf("Error marshaling shutdown notice: %v", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
		// Hijacked WebSocket connections outlive srv.Shutdown.
		if err := hub.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: sockets: %v", err)
		}
	}()

	log.Printf("HABIT GALAXY Server live on %s", cfg.Addr)
	log.Printf("Real-time Hub: Online")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-stopped

	// Flush pending writes before the database closes.
	box.Close()
	log.Printf("Outbox drained: %+v", box.Stats())
}

// loadCatalog reads galaxy.yaml, falling back to the built-in catalog when
// the file does not exist.
func loadCatalog(path string) (*game.Catalog, error) {
	c, err := game.LoadCatalog(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Catalog %s not found, using built-in defaults", path)
		return game.DefaultCatalog(), nil
	}
	return c, err
}
