package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

//go:embed schema.sql
var schemaSQL string

// Klíč ve Valkey s poslední přijatou hodnotou. Čte ho road-api.
const lastReadingKey = "road:last"

// Jak dlouho drží Valkey poslední hodnotu. Když senzor přestane posílat, klíč zmizí.
const lastReadingTTL = 24 * time.Hour

// Repository zapouzdřuje práci s databázemi.
type Repository struct {
	pgPool *pgxpool.Pool
	redis  *redis.Client
}

// NewRepository vytvoří a ověří připojení k oběma databázím.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("chyba konfigurace DB: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("DB není dostupná: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.ValkeyAddr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		pool.Close()
		rdb.Close()
		return nil, fmt.Errorf("Valkey není dostupný: %w", err)
	}

	return &Repository{pgPool: pool, redis: rdb}, nil
}

// EnsureSchema vytvoří tabulku road_readings (hypertable), pokud ještě neexistuje.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pgPool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("vytvoření schématu selhalo: %w", err)
	}
	return nil
}

func (r *Repository) Close() {
	r.pgPool.Close()
	r.redis.Close()
}

// SaveReading uloží měření do TimescaleDB (historie) a do Valkey (poslední stav).
// Chybějící hodnoty se ukládají jako NULL.
func (r *Repository) SaveReading(ctx context.Context, reading RoadReading) error {
	query := `
		INSERT INTO road_readings (
			time,
			orientation_alpha, orientation_beta, orientation_gamma,
			acceleration_x, acceleration_y, acceleration_z,
			location_lat, location_lon, location_acc
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pgPool.Exec(ctx, query,
		reading.Time(),
		reading.OrientationAlpha, reading.OrientationBeta, reading.OrientationGamma,
		reading.AccelerationX, reading.AccelerationY, reading.AccelerationZ,
		reading.LocationLat, reading.LocationLon, reading.LocationAcc,
	)
	if err != nil {
		return fmt.Errorf("chyba insertu do PG: %w", err)
	}

	// Do Valkey jde celá zpráva jako JSON, road-api ji vrací beze změny.
	last, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("serializace pro Valkey: %w", err)
	}
	if err := r.redis.Set(ctx, lastReadingKey, last, lastReadingTTL).Err(); err != nil {
		return fmt.Errorf("chyba update Valkey: %w", err)
	}

	return nil
}
