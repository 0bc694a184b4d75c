package main

import (
	"Go-Shopping-Sync/cmd/config"
	migration "Go-Shopping-Sync/cmd/database/migrate"
	"Go-Shopping-Sync/internal/utils"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("error connecting database: %v", err)
	}
	if err := migration.Migrate(db); err != nil {
		log.Fatalf("error migrating database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayPool, err := config.ConnectRelayPool(ctx)
	if err != nil {
		log.Fatalf("error connecting relay: %v", err)
	}

	app, hub, err := config.NewApp(db, relayPool)
	if err != nil {
		log.Fatalf("error creating app: %v", err)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		hub.Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorw("error shutting down server", "error", err)
		}
	}()

	if err := app.Listen(":" + utils.GetConfig("APP_PORT")); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
	if relayPool != nil {
		relayPool.Close()
	}
}
