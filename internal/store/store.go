// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/celestat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for save snapshots.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			slot TEXT NOT NULL,
			taken_at TEXT NOT NULL,
			digest TEXT NOT NULL,
			version TEXT NOT NULL,
			player TEXT NOT NULL,
			total_berries INTEGER NOT NULL,
			gems INTEGER NOT NULL,
			cheat_mode INTEGER NOT NULL,
			assist_mode INTEGER NOT NULL,
			variant_mode INTEGER NOT NULL,
			UNIQUE (slot, digest)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshot_areas (
			snapshot_id INTEGER NOT NULL,
			area_id INTEGER NOT NULL,
			red_berries INTEGER NOT NULL,
			a_completed INTEGER NOT NULL,
			b_completed INTEGER NOT NULL,
			c_completed INTEGER NOT NULL,
			a_single_run_ns INTEGER,
			full_clear_ns INTEGER,
			cassette INTEGER NOT NULL,
			heart INTEGER NOT NULL,
			golden_count INTEGER NOT NULL,
			PRIMARY KEY (snapshot_id, area_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_slot ON snapshots(slot);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// HasSnapshot reports whether a snapshot with this digest is already stored for the slot.
func (s *Store) HasSnapshot(ctx context.Context, slot, digest string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots WHERE slot = ? AND digest = ?`, slot, digest).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertSnapshot stores a snapshot and its per-area rows. A snapshot whose
// slot and digest are already stored is skipped and inserted is false.
func (s *Store) InsertSnapshot(ctx context.Context, snap model.Snapshot, areas []model.AreaSnapshot) (id int64, inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() {
		if err != nil || !inserted {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, slot, taken_at, digest, version, player, total_berries, gems, cheat_mode, assist_mode, variant_mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (slot, digest) DO NOTHING`,
		snap.RunID,
		snap.Slot,
		snap.TakenAt.UTC().Format(time.RFC3339Nano),
		snap.Digest,
		snap.Version,
		snap.Name,
		snap.TotalBerries,
		snap.Gems,
		snap.CheatMode,
		snap.AssistMode,
		snap.VariantMode,
	)
	if err != nil {
		return 0, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if affected == 0 {
		return 0, false, nil
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, err
	}

	if len(areas) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO snapshot_areas (snapshot_id, area_id, red_berries, a_completed, b_completed, c_completed, a_single_run_ns, full_clear_ns, cassette, heart, golden_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, false, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, a := range areas {
			if _, err := stmt.ExecContext(ctx, id, a.Area.ID(), a.RedBerries, a.ACompleted, a.BCompleted, a.CCompleted,
				nullDuration(a.ASingleRun), nullDuration(a.FullClear), a.Cassette, a.Heart, a.GoldenCount); err != nil {
				return 0, false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// ListSnapshots returns snapshots matching the filter, oldest first.
func (s *Store) ListSnapshots(ctx context.Context, filter model.HistoryFilter) ([]model.Snapshot, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Slot != "" {
		clauses = append(clauses, "slot = ?")
		args = append(args, filter.Slot)
	}
	if filter.Since != nil {
		clauses = append(clauses, "taken_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, run_id, slot, taken_at, digest, version, player, total_berries, gems, cheat_mode, assist_mode, variant_mode
		FROM snapshots
		WHERE %s
		ORDER BY taken_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var snapshots []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		var takenAt string
		if err := rows.Scan(&snap.ID, &snap.RunID, &snap.Slot, &takenAt, &snap.Digest, &snap.Version, &snap.Name,
			&snap.TotalBerries, &snap.Gems, &snap.CheatMode, &snap.AssistMode, &snap.VariantMode); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, takenAt)
		if err != nil {
			return nil, err
		}
		snap.TakenAt = parsed
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// ListAreaSnapshots returns the per-area rows of a snapshot in area order.
func (s *Store) ListAreaSnapshots(ctx context.Context, snapshotID int64) ([]model.AreaSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT area_id, red_berries, a_completed, b_completed, c_completed, a_single_run_ns, full_clear_ns, cassette, heart, golden_count
		 FROM snapshot_areas
		 WHERE snapshot_id = ?
		 ORDER BY area_id ASC`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.AreaSnapshot
	for rows.Next() {
		var a model.AreaSnapshot
		var areaID uint32
		var singleRun, fullClear sql.NullInt64
		if err := rows.Scan(&areaID, &a.RedBerries, &a.ACompleted, &a.BCompleted, &a.CCompleted,
			&singleRun, &fullClear, &a.Cassette, &a.Heart, &a.GoldenCount); err != nil {
			return nil, err
		}
		area, ok := model.AreaFromID(areaID)
		if !ok {
			return nil, fmt.Errorf("snapshot %d: unknown area id %d", snapshotID, areaID)
		}
		a.Area = area
		a.ASingleRun = durationFromNull(singleRun)
		a.FullClear = durationFromNull(fullClear)
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullDuration(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*d), Valid: true}
}

func durationFromNull(v sql.NullInt64) *time.Duration {
	if !v.Valid {
		return nil
	}
	d := time.Duration(v.Int64)
	return &d
}
