package simulate

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// StorageStore persists simulated user storage across conversations, standing
// in for the retention the real platform provides.
type StorageStore interface {
	LoadUserStorage(ctx context.Context, userID string) (string, error)
	SaveUserStorage(ctx context.Context, userID, token string) error
	Close() error
}

type SQLiteStore struct {
	db *sql.DB
}

var _ StorageStore = &SQLiteStore{}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite storage store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS user_storage (
		user_id TEXT NOT NULL PRIMARY KEY,
		token TEXT NOT NULL DEFAULT '',
		updated_at_ms INTEGER NOT NULL
	);`)
	return errors.Wrap(err, "migrate user_storage")
}

func (s *SQLiteStore) LoadUserStorage(ctx context.Context, userID string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM user_storage WHERE user_id = ?`, userID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "load user storage")
	}
	return token, nil
}

func (s *SQLiteStore) SaveUserStorage(ctx context.Context, userID, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_storage (user_id, token, updated_at_ms) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET token = excluded.token, updated_at_ms = excluded.updated_at_ms`,
		userID, token, time.Now().UnixMilli())
	return errors.Wrap(err, "save user storage")
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MemoryStore is the default store; state lasts for the process lifetime.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

var _ StorageStore = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: map[string]string{}}
}

func (m *MemoryStore) LoadUserStorage(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID], nil
}

func (m *MemoryStore) SaveUserStorage(_ context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
	return nil
}

func (m *MemoryStore) Close() error { return nil }
