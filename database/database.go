package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jaliph/qrrapido/models"
	"github.com/jaliph/qrrapido/utils"
	_ "modernc.org/sqlite"
)

// Database is the local SQLite generation history
type Database struct {
	db     *sql.DB
	gormDB *GormDB
	now    func() time.Time
}

// NewDatabase opens (and creates if needed) the history database at path.
// path may be ":memory:". gormDB is an optional MSSQL mirror and may be nil.
func NewDatabase(path string, gormDB *GormDB) (*Database, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers; one connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	database := &Database{db: db, gormDB: gormDB, now: time.Now}
	if err := database.init(); err != nil {
		db.Close()
		return nil, err
	}

	return database, nil
}

// init initializes the database tables
func (d *Database) init() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS qr_generations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL DEFAULT '',
			content_type TEXT NOT NULL,
			size INTEGER NOT NULL,
			payload_length INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create qr_generations table: %w", err)
	}

	_, err = d.db.Exec(`CREATE INDEX IF NOT EXISTS idx_qr_generations_created_at ON qr_generations (created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create qr_generations index: %w", err)
	}

	utils.L().Debug("History database initialized")
	return nil
}

// RecordGeneration stores g and mirrors it to MSSQL when configured.
// A zero CreatedAt is set to the current time.
func (d *Database) RecordGeneration(g *models.Generation) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = d.now()
	}

	res, err := d.db.Exec(
		"INSERT INTO qr_generations (session, content_type, size, payload_length, created_at) VALUES (?, ?, ?, ?, ?)",
		g.Session, g.ContentType, g.Size, g.PayloadLength, g.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		g.ID = uint(id)
	}

	if d.gormDB != nil {
		mirrored := *g
		mirrored.ID = 0
		if err := d.gormDB.RecordGeneration(&mirrored); err != nil {
			utils.L().Warn("Failed to mirror generation to MSSQL", "error", err)
		}
	}
	return nil
}

// RecentGenerations returns up to limit generations, newest first.
func (d *Database) RecentGenerations(limit int) ([]models.Generation, error) {
	rows, err := d.db.Query(`
		SELECT id, session, content_type, size, payload_length, created_at
		FROM qr_generations ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	generations := []models.Generation{}
	for rows.Next() {
		var g models.Generation
		var createdAt int64
		if err := rows.Scan(&g.ID, &g.Session, &g.ContentType, &g.Size, &g.PayloadLength, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		g.CreatedAt = time.Unix(createdAt, 0).UTC()
		generations = append(generations, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read generations: %w", err)
	}
	return generations, nil
}

// Stats returns generation counts overall, for today, and per content type.
func (d *Database) Stats() (*models.GenerationStats, error) {
	stats := &models.GenerationStats{ByContentType: map[string]int64{}}

	if err := d.db.QueryRow("SELECT COUNT(*) FROM qr_generations").Scan(&stats.TotalGenerations); err != nil {
		return nil, fmt.Errorf("failed to count generations: %w", err)
	}

	today := d.now().UTC().Truncate(24 * time.Hour)
	if err := d.db.QueryRow("SELECT COUNT(*) FROM qr_generations WHERE created_at >= ?", today.Unix()).Scan(&stats.GenerationsToday); err != nil {
		return nil, fmt.Errorf("failed to count today's generations: %w", err)
	}

	rows, err := d.db.Query("SELECT content_type, COUNT(*) FROM qr_generations GROUP BY content_type")
	if err != nil {
		return nil, fmt.Errorf("failed to count generations by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ct string
		var n int64
		if err := rows.Scan(&ct, &n); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		stats.ByContentType[ct] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read type counts: %w", err)
	}

	return stats, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}
