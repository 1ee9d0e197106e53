package monitor

import (
	"context"
	"fmt"

	"github.com/EdgesSeeker/ma-monitor/internal/marketdata"
	"github.com/EdgesSeeker/ma-monitor/pkg/database"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

// Store persists positions and an alert log across restarts. The
// monitor runs memory-only when no store is configured.
type Store interface {
	LoadPositions(ctx context.Context) ([]*Position, error)
	SavePosition(ctx context.Context, p *Position) error
	UpdatePosition(ctx context.Context, p *Position) error
	DeletePosition(ctx context.Context, id string) error
	RecordAlert(ctx context.Context, a Alert) error
}

// PostgresStore implements Store on PostgreSQL
type PostgresStore struct {
	db     *database.DB
	logger *logger.Logger
}

// NewPostgresStore creates a new PostgreSQL-backed store
func NewPostgresStore(db *database.DB, log *logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: log}
}

// EnsureSchema creates the tables if they do not exist yet
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			ma_period TEXT NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			alert_active BOOLEAN NOT NULL DEFAULT FALSE,
			added_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id BIGSERIAL PRIMARY KEY,
			position_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			ma_period TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			ma_value DOUBLE PRECISION NOT NULL,
			source TEXT NOT NULL,
			triggered_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// LoadPositions returns all persisted positions
func (s *PostgresStore) LoadPositions(ctx context.Context) ([]*Position, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, symbol, direction, ma_period, entry_price, alert_active, added_at
		FROM positions
		ORDER BY added_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	defer rows.Close()

	var positions []*Position
	for rows.Next() {
		var p Position
		var direction, maPeriod string
		if err := rows.Scan(&p.ID, &p.Symbol, &direction, &maPeriod, &p.EntryPrice, &p.AlertActive, &p.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Direction = Direction(direction)
		p.MAPeriod = marketdata.MAPeriod(maPeriod)
		positions = append(positions, &p)
	}

	return positions, rows.Err()
}

// SavePosition inserts a new position
func (s *PostgresStore) SavePosition(ctx context.Context, p *Position) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO positions (id, symbol, direction, ma_period, entry_price, alert_active, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Symbol, string(p.Direction), string(p.MAPeriod), p.EntryPrice, p.AlertActive, p.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// UpdatePosition updates the alert latch of an existing position
func (s *PostgresStore) UpdatePosition(ctx context.Context, p *Position) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE positions SET alert_active = $2 WHERE id = $1
	`, p.ID, p.AlertActive)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	return nil
}

// DeletePosition removes a position
func (s *PostgresStore) DeletePosition(ctx context.Context, id string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}

// RecordAlert appends a fired alert to the log
func (s *PostgresStore) RecordAlert(ctx context.Context, a Alert) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO alerts (position_id, symbol, direction, ma_period, price, ma_value, source, triggered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.PositionID, a.Symbol, string(a.Direction), string(a.MAPeriod), a.Price, a.MAValue, string(a.Source), a.TriggeredAt)
	if err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	return nil
}
