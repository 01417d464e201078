package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const lastReadingKey = "road:last"

var (
	ErrNoReading    = errors.New("zatím žádné měření")
	ErrInvalidRange = errors.New("neplatný rozsah (např. 1h, 30m)")
)

// Service čte historii z TimescaleDB a poslední stav z Valkey.
type Service struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewService(db *pgxpool.Pool, rdb *redis.Client) *Service {
	return &Service{db: db, redis: rdb}
}

// Latest vrátí poslední přijaté měření. Když klíč ve Valkey není (nic nepřišlo nebo expiroval), vrací ErrNoReading.
func (s *Service) Latest(ctx context.Context) (ReadingDTO, error) {
	raw, err := s.redis.Get(ctx, lastReadingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return ReadingDTO{}, ErrNoReading
	}
	if err != nil {
		return ReadingDTO{}, fmt.Errorf("čtení z Valkey: %w", err)
	}

	var last lastReading
	if err := json.Unmarshal(raw, &last); err != nil {
		return ReadingDTO{}, fmt.Errorf("poškozený záznam ve Valkey: %w", err)
	}
	return last.toDTO(), nil
}

// History vrací měření za posledních durationStr (formát Go duration), od nejstaršího.
func (s *Service) History(ctx context.Context, durationStr string) ([]ReadingDTO, error) {
	dur, err := parseRange(durationStr)
	if err != nil {
		return nil, err
	}
	startTime := time.Now().UTC().Add(-dur)

	query := `
		SELECT time,
			orientation_alpha, orientation_beta, orientation_gamma,
			acceleration_x, acceleration_y, acceleration_z,
			location_lat, location_lon, location_acc
		FROM road_readings
		WHERE time >= $1
		ORDER BY time ASC
	`
	rows, err := s.db.Query(ctx, query, startTime)
	if err != nil {
		return nil, fmt.Errorf("chyba načítání historie: %w", err)
	}
	defer rows.Close()

	readings := make([]ReadingDTO, 0, 100)
	for rows.Next() {
		var r ReadingDTO
		if err := rows.Scan(&r.Time,
			&r.OrientationAlpha, &r.OrientationBeta, &r.OrientationGamma,
			&r.AccelerationX, &r.AccelerationY, &r.AccelerationZ,
			&r.LocationLat, &r.LocationLon, &r.LocationAcc,
		); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chyba načítání historie: %w", err)
	}

	return readings, nil
}

// parseRange přijme jen kladnou Go duration.
func parseRange(s string) (time.Duration, error) {
	dur, err := time.ParseDuration(s)
	if err != nil || dur <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return dur, nil
}
