package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/record"
	"github.com/okian/schedluck/pkg/logger"
	"github.com/okian/schedluck/pkg/metrics"
)

const sqlitePragmas = "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"

// SQLiteStore persists state in a SQLite file. Rows are scoped to a run id,
// so several runs can share one database.
type SQLiteStore struct {
	opts storeOptions
	db   *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and migrates it.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultOptions("sqlite-store")
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", "file:"+path+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// A single writer; workers only reach the store through the simmer.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(time.Minute)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	o.logger.Info(ctx, "result store opened", logger.String("path", path), logger.String("run_id", o.runID))
	return &SQLiteStore{opts: o, db: db}, nil
}

// RunID returns the run the store writes under.
func (s *SQLiteStore) RunID() string { return s.opts.runID }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Reset deletes every row of the current run.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_count WHERE run_id = ?`, s.opts.runID); err != nil {
		return fmt.Errorf("reset record counts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM team_state WHERE run_id = ?`, s.opts.runID); err != nil {
		return fmt.Errorf("reset team state: %w", err)
	}
	return tx.Commit()
}

// SetState moves team to state.
func (s *SQLiteStore) SetState(ctx context.Context, team model.TeamID, state State) error {
	if err := checkSettable(team, state); err != nil {
		return err
	}
	return s.transition(ctx, team, state, "", nil)
}

// SaveResult stores dist and marks team aggregated.
func (s *SQLiteStore) SaveResult(ctx context.Context, team model.TeamID, dist record.Distribution) error {
	return s.transition(ctx, team, StateAggregated, "", dist.Records())
}

// MarkFailed marks team failed.
func (s *SQLiteStore) MarkFailed(ctx context.Context, team model.TeamID, cause error) error {
	msg := "unknown failure"
	if cause != nil {
		msg = cause.Error()
	}
	return s.transition(ctx, team, StateFailed, msg, nil)
}

func (s *SQLiteStore) transition(ctx context.Context, team model.TeamID, to State, errText string, counts []record.Count) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var from State
	err = tx.QueryRowContext(ctx,
		`SELECT state FROM team_state WHERE run_id = ? AND team = ?`, s.opts.runID, string(team),
	).Scan(&from)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read state of %q: %w", team, err)
	}
	if err := checkTransition(team, from, to); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_transition")
		return err
	}

	now := s.opts.now().UnixNano()
	if from == "" {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO team_state (run_id, seq, team, state, error, updated_at)
			VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM team_state WHERE run_id = ?), ?, ?, ?, ?)`,
			s.opts.runID, s.opts.runID, string(team), string(to), errText, now)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE team_state SET state = ?, error = ?, updated_at = ?
			WHERE run_id = ? AND team = ?`,
			string(to), errText, now, s.opts.runID, string(team))
	}
	if err != nil {
		return fmt.Errorf("write state of %q: %w", team, err)
	}

	for _, c := range counts {
		if c.Count > math.MaxInt64 {
			return fmt.Errorf("count %d for %s of %q overflows storage", c.Count, c.Record, team)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO record_count (run_id, team, wins, losses, ties, count)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.opts.runID, string(team), c.Record.Wins, c.Record.Losses, c.Record.Ties, int64(c.Count),
		); err != nil {
			return fmt.Errorf("write record %s of %q: %w", c.Record, team, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state of %q: %w", team, err)
	}
	metrics.RecordStoreWrite()
	return nil
}

// Get returns one team.
func (s *SQLiteStore) Get(ctx context.Context, team model.TeamID) (Entry, error) {
	var (
		e  = Entry{Team: team}
		ns int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state, error, updated_at FROM team_state WHERE run_id = ? AND team = ?`,
		s.opts.runID, string(team),
	).Scan(&e.State, &e.Err, &ns)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, team)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read %q: %w", team, err)
	}
	e.UpdatedAt = time.Unix(0, ns)

	if e.State == StateAggregated {
		dists, err := s.distributions(ctx, `AND team = ?`, string(team))
		if err != nil {
			return Entry{}, err
		}
		e.Distribution = dists[team]
	}
	return e, nil
}

// List returns every team of the run in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT team, state, error, updated_at FROM team_state WHERE run_id = ? ORDER BY seq`,
		s.opts.runID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			team string
			ns   int64
		)
		if err := rows.Scan(&team, &e.State, &e.Err, &ns); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		e.Team = model.TeamID(team)
		e.UpdatedAt = time.Unix(0, ns)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	// The connection is released before the second query.
	_ = rows.Close()

	dists, err := s.distributions(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		if d, ok := dists[out[i].Team]; ok {
			out[i].Distribution = d
		}
	}
	return out, nil
}

func (s *SQLiteStore) distributions(ctx context.Context, filter string, args ...any) (map[model.TeamID]record.Distribution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT team, wins, losses, ties, count FROM record_count WHERE run_id = ? `+filter,
		append([]any{s.opts.runID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	defer rows.Close()

	out := make(map[model.TeamID]record.Distribution)
	for rows.Next() {
		var (
			team  string
			r     model.Record
			count int64
		)
		if err := rows.Scan(&team, &r.Wins, &r.Losses, &r.Ties, &count); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		d, ok := out[model.TeamID(team)]
		if !ok {
			d = record.NewDistribution()
			out[model.TeamID(team)] = d
		}
		d.Add(r, uint64(count))
	}
	return out, rows.Err()
}

// Count returns the number of teams per state.
func (s *SQLiteStore) Count(ctx context.Context) (map[State]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT state, COUNT(*) FROM team_state WHERE run_id = ? GROUP BY state`, s.opts.runID)
	if err != nil {
		return nil, fmt.Errorf("count teams: %w", err)
	}
	defer rows.Close()

	counts := make(map[State]int, len(States))
	for _, st := range States {
		counts[st] = 0
	}
	for rows.Next() {
		var (
			st State
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}
