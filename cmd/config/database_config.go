package config

import (
	"Go-Shopping-Sync/internal/utils"
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dataSourceName() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Jakarta",
		utils.GetConfig("DB_HOST"),
		utils.GetConfig("DB_USER"),
		utils.GetConfig("DB_PASSWORD"),
		utils.GetConfig("DB_NAME"),
		utils.GetConfig("DB_PORT"),
	)
}

func ConnectDB() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dataSourceName()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
		return nil, err
	}
	return db, nil
}

// ConnectRelayPool opens the pgx pool used for LISTEN/NOTIFY. It returns nil
// when RELAY_ENABLED is off.
func ConnectRelayPool(ctx context.Context) (*pgxpool.Pool, error) {
	if !utils.GetConfigBool("RELAY_ENABLED") {
		return nil, nil
	}

	pool, err := pgxpool.New(ctx, dataSourceName())
	if err != nil {
		return nil, fmt.Errorf("relay pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("relay pool ping: %w", err)
	}
	return pool, nil
}
