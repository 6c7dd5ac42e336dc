package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/authdemo/sessionkit/identity/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// SQLiteStore is the local, file-backed identity store. It plays the role of
// browser local storage for a single device.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at dsn and applies migrations.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if dsn == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// RunMigrations brings the schema at db up to date.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (UserRecord, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM user_records WHERE token = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, false, nil
	}
	if err != nil {
		return UserRecord{}, false, fmt.Errorf("%w: get user record: %v", ErrUnavailable, err)
	}

	var rec UserRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return UserRecord{}, false, fmt.Errorf("decode user record: %w", err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value UserRecord) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_records (token, email, payload, updated_at, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM user_records))
		ON CONFLICT(token) DO UPDATE SET
			email = excluded.email,
			payload = excluded.payload,
			updated_at = excluded.updated_at,
			seq = excluded.seq
	`, key, value.Email, payload, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: set user record: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_records WHERE token = ?`, key)
	if err != nil {
		return false, fmt.Errorf("%w: delete user record: %v", ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: delete user record: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Has(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_records WHERE token = ?`, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: has user record: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_records`); err != nil {
		return fmt.Errorf("%w: clear user records: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count user records: %v", ErrUnavailable, err)
	}
	return n, nil
}

// Records lists entries by write sequence. Every Set, including an overwrite,
// moves the entry to the end.
func (s *SQLiteStore) Records(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, payload FROM user_records ORDER BY seq, token`)
	if err != nil {
		return nil, fmt.Errorf("%w: list user records: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			token   string
			payload []byte
		)
		if err := rows.Scan(&token, &payload); err != nil {
			return nil, fmt.Errorf("scan user record: %w", err)
		}
		var rec UserRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode user record %s: %w", token, err)
		}
		out = append(out, Entry{Key: token, Record: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user records: %w", err)
	}
	return out, nil
}
