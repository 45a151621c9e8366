package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/aonescu/kubelens/internal/types"
)

type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.RWMutex
	// In-memory cache for fast reads
	latest    types.EventSnapshot
	hasLatest bool
}

func NewPostgresStore(connStr string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store := &PostgresStore{db: db, logger: logger}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Load the newest snapshot into cache
	if err := store.loadCache(); err != nil {
		logger.Warn("failed to load cache", zap.Error(err))
	}

	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	-- One row per published polling tick
	CREATE TABLE IF NOT EXISTS event_snapshots (
		id SERIAL PRIMARY KEY,
		collected_at TIMESTAMPTZ NOT NULL,
		namespaces JSONB NOT NULL,
		rows JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_event_snapshots_collected ON event_snapshots(collected_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) Record(snapshot types.EventSnapshot) error {
	namespacesJSON, err := json.Marshal(snapshot.Namespaces)
	if err != nil {
		return fmt.Errorf("failed to encode namespaces: %w", err)
	}
	rowsJSON, err := json.Marshal(snapshot.Rows)
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(context.Background(), `
		INSERT INTO event_snapshots (collected_at, namespaces, rows)
		VALUES ($1, $2, $3)
	`, snapshot.CollectedAt, namespacesJSON, rowsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	// Update in-memory cache
	s.latest = snapshot
	s.hasLatest = true
	return nil
}

func (s *PostgresStore) Latest() (types.EventSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasLatest
}

func (s *PostgresStore) History(limit int) []types.EventSnapshot {
	snapshots, err := s.query(limit)
	if err != nil {
		s.logger.Warn("failed to query snapshot history", zap.Error(err))
		return nil
	}
	return snapshots
}

func (s *PostgresStore) query(limit int) ([]types.EventSnapshot, error) {
	query := `
		SELECT collected_at, namespaces, rows
		FROM event_snapshots
		ORDER BY collected_at DESC, id DESC
	`
	args := make([]interface{}, 0)
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []types.EventSnapshot
	for rows.Next() {
		var snapshot types.EventSnapshot
		var namespacesJSON, rowsJSON []byte
		if err := rows.Scan(&snapshot.CollectedAt, &namespacesJSON, &rowsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(namespacesJSON, &snapshot.Namespaces); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rowsJSON, &snapshot.Rows); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

func (s *PostgresStore) loadCache() error {
	snapshots, err := s.query(1)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(snapshots) == 1 {
		s.latest = snapshots[0]
		s.hasLatest = true
	}
	s.logger.Info("loaded event snapshot cache", zap.Bool("has_latest", s.hasLatest))
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *PostgresStore) Ping() error {
	return s.db.Ping()
}
