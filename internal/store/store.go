// Package store persists day records keyed by user and calendar day.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dailybrief/internal/core"

	"github.com/google/uuid"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultUser is used when a request carries no user id.
const DefaultUser = "default"

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("day record not found")

// Store is a day-record store backed by SQLite or PostgreSQL.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to the database and creates the schema if needed.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite3":
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "postgres" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// SQLite serializes writers anyway.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, driver: driver, now: time.Now}
	if err := s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func ensureDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (s *Store) initialize(ctx context.Context) error {
	timestamp := "DATETIME"
	if s.driver == "postgres" {
		timestamp = "TIMESTAMPTZ"
	}

	daysTable := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS days (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		day TEXT NOT NULL,
		research TEXT NOT NULL DEFAULT '{}',
		concepts TEXT NOT NULL DEFAULT '[]',
		journal TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		created_at %[1]s NOT NULL,
		updated_at %[1]s NOT NULL,
		PRIMARY KEY (user_id, day)
	);`, timestamp)

	if _, err := s.db.ExecContext(ctx, daysTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the record for userID and date, or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID, date string) (*core.DayRecord, error) {
	query := `
	SELECT id, user_id, day, research, concepts, journal, status, created_at, updated_at
	FROM days
	WHERE user_id = ? AND day = ?`

	row := s.db.QueryRowContext(ctx, s.rebind(query), normalizeUser(userID), date)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get day %s: %w", date, err)
	}
	return rec, nil
}

// SaveBrief upserts the research and concepts of a day, leaving the journal untouched.
func (s *Store) SaveBrief(ctx context.Context, userID, date string, res core.GenerationResult) (*core.DayRecord, error) {
	research, err := json.Marshal(res.Research)
	if err != nil {
		return nil, fmt.Errorf("failed to encode research: %w", err)
	}
	concepts := res.Concepts
	if concepts == nil {
		concepts = []core.ConceptCard{}
	}
	conceptsJSON, err := json.Marshal(concepts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode concepts: %w", err)
	}

	query := `
	INSERT INTO days (id, user_id, day, research, concepts, journal, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, '', ?, ?, ?)
	ON CONFLICT (user_id, day) DO UPDATE SET
		research = excluded.research,
		concepts = excluded.concepts,
		status = excluded.status,
		updated_at = excluded.updated_at`

	now := s.now().UTC()
	if _, err := s.db.ExecContext(ctx, s.rebind(query),
		uuid.NewString(), normalizeUser(userID), date,
		string(research), string(conceptsJSON), string(res.Status),
		now, now,
	); err != nil {
		return nil, fmt.Errorf("failed to save brief for %s: %w", date, err)
	}
	return s.Get(ctx, userID, date)
}

// SaveJournal upserts the journal text of a day, leaving the brief untouched.
func (s *Store) SaveJournal(ctx context.Context, userID, date, journal string) (*core.DayRecord, error) {
	query := `
	INSERT INTO days (id, user_id, day, journal, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, day) DO UPDATE SET
		journal = excluded.journal,
		updated_at = excluded.updated_at`

	now := s.now().UTC()
	if _, err := s.db.ExecContext(ctx, s.rebind(query),
		uuid.NewString(), normalizeUser(userID), date, journal, now, now,
	); err != nil {
		return nil, fmt.Errorf("failed to save journal for %s: %w", date, err)
	}
	return s.Get(ctx, userID, date)
}

// List returns up to limit records for userID, newest day first.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]core.DayRecord, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
	SELECT id, user_id, day, research, concepts, journal, status, created_at, updated_at
	FROM days
	WHERE user_id = ?
	ORDER BY day DESC
	LIMIT ?`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), normalizeUser(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []core.DayRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*core.DayRecord, error) {
	var (
		rec       core.DayRecord
		research  string
		concepts  string
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Date, &research, &concepts,
		&rec.Journal, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(research), &rec.Research); err != nil {
		return nil, fmt.Errorf("failed to decode research: %w", err)
	}
	if err := json.Unmarshal([]byte(concepts), &rec.Concepts); err != nil {
		return nil, fmt.Errorf("failed to decode concepts: %w", err)
	}
	rec.Status = core.Status(status)
	rec.CreatedAt = createdAt.UTC()
	rec.UpdatedAt = updatedAt.UTC()
	return &rec, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeUser(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return DefaultUser
	}
	return userID
}
