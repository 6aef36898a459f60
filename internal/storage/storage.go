// Package storage provides SQLite-backed persistence for tracked positions
// and the fired-alert log.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/models"
)

// AlertRecord captures one fired price alert for auditing.
type AlertRecord struct {
	ID            string
	Slug          string
	Side          models.Side
	CurrentPrice  float64
	LimitPrice    float64
	DistanceCents float64
	DepthAhead    decimal.Decimal
	CreatedAt     time.Time
}

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db           *sql.DB
	maxAlertRows int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/lp-watch/data.db.
func New(dbPath string, maxAlertRows int) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "lp-watch", "data.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db, maxAlertRows: maxAlertRows}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			slug        TEXT NOT NULL,
			side        TEXT NOT NULL,
			limit_price REAL NOT NULL,
			notes       TEXT NOT NULL DEFAULT '',
			ord         INTEGER NOT NULL,
			PRIMARY KEY (slug, side)
		)`,
		`CREATE TABLE IF NOT EXISTS alert_log (
			id             TEXT PRIMARY KEY,
			slug           TEXT NOT NULL,
			side           TEXT NOT NULL,
			current_price  REAL NOT NULL,
			limit_price    REAL NOT NULL,
			distance_cents REAL NOT NULL,
			depth_ahead    TEXT NOT NULL,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_log_created_at ON alert_log(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadPositions returns the persisted position set in saved order.
func (s *Storage) LoadPositions() ([]models.Position, error) {
	rows, err := s.db.Query(`SELECT slug, side, limit_price, notes FROM positions ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		var side string
		if err := rows.Scan(&p.MarketSlug, &side, &p.LimitPrice, &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Side = models.Side(side)
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// SavePositions replaces the persisted position set with the given one.
// The (slug, side) primary key enforces identity-key uniqueness at the
// store as well as in memory.
func (s *Storage) SavePositions(positions []models.Position) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM positions`); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}
	for i, p := range positions {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid position %d: %w", i+1, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO positions (slug, side, limit_price, notes, ord)
			VALUES (?,?,?,?,?)`,
			p.MarketSlug, string(p.Side), p.LimitPrice, p.Notes, i,
		); err != nil {
			return fmt.Errorf("failed to insert position: %w", err)
		}
	}
	return tx.Commit()
}

// LogAlert records a fired alert, pruning the log to the configured cap.
func (s *Storage) LogAlert(a AlertRecord) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`
		INSERT INTO alert_log
			(id, slug, side, current_price, limit_price, distance_cents, depth_ahead, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		a.ID, a.Slug, string(a.Side), a.CurrentPrice, a.LimitPrice, a.DistanceCents,
		a.DepthAhead.String(), a.CreatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM alert_log WHERE id NOT IN (
			SELECT id FROM alert_log ORDER BY created_at DESC LIMIT ?
		)`, s.maxAlertRows); err != nil {
		return fmt.Errorf("failed to prune alert log: %w", err)
	}

	return tx.Commit()
}

// RecentAlerts returns the newest fired alerts, newest first.
func (s *Storage) RecentAlerts(limit int) ([]AlertRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, slug, side, current_price, limit_price, distance_cents, depth_ahead, created_at
		FROM alert_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []AlertRecord
	for rows.Next() {
		var a AlertRecord
		var side, depth string
		var createdAtNano int64
		if err := rows.Scan(&a.ID, &a.Slug, &side, &a.CurrentPrice, &a.LimitPrice,
			&a.DistanceCents, &depth, &createdAtNano); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Side = models.Side(side)
		d, err := decimal.NewFromString(depth)
		if err != nil {
			return nil, fmt.Errorf("failed to parse depth: %w", err)
		}
		a.DepthAhead = d
		a.CreatedAt = time.Unix(0, createdAtNano)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
