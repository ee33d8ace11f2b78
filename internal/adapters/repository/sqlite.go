package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/kickhub/internal/domain/model"
	"github.com/okian/kickhub/pkg/logger"
	"github.com/okian/kickhub/pkg/metrics"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps the archive in a SQLite database.
type SQLiteStore struct {
	conn   *sql.DB
	logger logger.Logger
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		conn.SetMaxOpenConns(1)
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &SQLiteStore{conn: conn}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("store")
	}
	s.logger.Info(ctx, "historical store opened", logger.String("path", path))
	return s, nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

func (s *SQLiteStore) PlayerKicks(ctx context.Context, name string) (model.KickResult, error) {
	defer observe("player_kicks", time.Now())

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, from_name = ?, to_name = ?, payload FROM kicks WHERE from_name = ? OR to_name = ?`,
		name, name, name, name)
	if err != nil {
		return model.KickResult{}, fmt.Errorf("query kicks of %s: %w", name, err)
	}
	defer rows.Close()

	kr := model.EmptyKickResult(name)
	found := false
	for rows.Next() {
		var (
			id       string
			from, to bool
			payload  string
		)
		if err := rows.Scan(&id, &from, &to, &payload); err != nil {
			return model.KickResult{}, fmt.Errorf("scan kick: %w", err)
		}
		var e model.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return model.KickResult{}, fmt.Errorf("decode kick %s: %w", id, err)
		}
		found = true
		if from {
			kr.From[id] = e
		}
		if to {
			kr.To[id] = e
		}
	}
	if err := rows.Err(); err != nil {
		return model.KickResult{}, fmt.Errorf("iterate kicks: %w", err)
	}
	if !found {
		return model.KickResult{}, fmt.Errorf("%s: %w", name, ErrPlayerNotFound)
	}
	return kr, nil
}

func (s *SQLiteStore) FinalScores(ctx context.Context, matchIDs []string) (map[string]model.FinalScore, error) {
	defer observe("final_scores", time.Now())

	out := make(map[string]model.FinalScore, len(matchIDs))
	if len(matchIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(matchIDs))
	for i, id := range matchIDs {
		args[i] = id
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT match_id, score_red, score_blue FROM final_scores WHERE match_id IN (`+placeholders(len(args))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query final scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id string
			f  model.FinalScore
		)
		if err := rows.Scan(&id, &f.Red, &f.Blue); err != nil {
			return nil, fmt.Errorf("scan final score: %w", err)
		}
		out[id] = f
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Players(ctx context.Context) ([]string, error) {
	defer observe("players", time.Now())

	rows, err := s.conn.QueryContext(ctx, `
		SELECT name FROM (
			SELECT from_name AS name FROM kicks WHERE from_name <> ''
			UNION
			SELECT to_name FROM kicks WHERE to_name <> ''
		) ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveKicks bulk-inserts kicks in a transaction. Uses INSERT OR REPLACE for idempotency.
func (s *SQLiteStore) SaveKicks(ctx context.Context, kicks []model.Record) error {
	defer observe("save_kicks", time.Now())

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertKicks(ctx, tx, kicks); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceMatch deletes every kick of matchID and inserts kicks in the same
// transaction.
func (s *SQLiteStore) ReplaceMatch(ctx context.Context, matchID string, kicks []model.Record) error {
	defer observe("replace_match", time.Now())

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kicks WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("delete kicks of %s: %w", matchID, err)
	}
	if err := insertKicks(ctx, tx, kicks); err != nil {
		return err
	}
	return tx.Commit()
}

func insertKicks(ctx context.Context, tx *sql.Tx, kicks []model.Record) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO kicks(id, match_id, saved, from_name, to_name, payload)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range kicks {
		if err := validateKick(r); err != nil {
			return err
		}
		payload, err := json.Marshal(r.Event)
		if err != nil {
			return fmt.Errorf("encode kick %s: %w", r.Key, err)
		}
		if _, err := stmt.ExecContext(ctx, r.Key, r.Event.MatchID, r.Event.Saved,
			r.Event.FromName, r.Event.ToName, string(payload)); err != nil {
			return fmt.Errorf("insert kick %s: %w", r.Key, err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveFinalScore(ctx context.Context, matchID string, score model.FinalScore) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO final_scores(match_id, score_red, score_blue) VALUES (?, ?, ?)`,
		matchID, score.Red, score.Blue)
	if err != nil {
		return fmt.Errorf("save final score %s: %w", matchID, err)
	}
	return nil
}

func (s *SQLiteStore) SaveMessage(ctx context.Context, stream, child, msg string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO stream_children(stream, child) VALUES (?, ?)`, stream, child); err != nil {
		return fmt.Errorf("save child %s/%s: %w", stream, child, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO stream_messages(stream, child, message) VALUES (?, ?, ?)`,
		stream, child, msg); err != nil {
		return fmt.Errorf("save message in %s/%s: %w", stream, child, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Children(ctx context.Context, stream string) ([]string, error) {
	defer observe("children", time.Now())

	rows, err := s.conn.QueryContext(ctx,
		`SELECT child FROM stream_children WHERE stream = ? ORDER BY seq`, stream)
	if err != nil {
		return nil, fmt.Errorf("query children of %s: %w", stream, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var child string
		if err := rows.Scan(&child); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		out = append(out, child)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) HasMessage(ctx context.Context, stream, child, msg string) (bool, error) {
	var one int
	err := s.conn.QueryRowContext(ctx,
		`SELECT 1 FROM stream_messages WHERE stream = ? AND child = ? AND message = ? LIMIT 1`,
		stream, child, msg).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query message: %w", err)
	}
	return true, nil
}

// Close closes the underlying connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
