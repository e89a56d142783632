package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autothread-bot/models"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
	"github.com/rs/zerolog/log"
)

// HistoryDB stores one row per completed onboarding run.
type HistoryDB struct {
	db *sql.DB
}

// InitHistoryDB opens (and creates if needed) the history database at dbPath.
func InitHistoryDB(dbPath string) (*HistoryDB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers anyway; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createRunsTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create onboarding_runs table: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("connected to the onboarding history database")
	return &HistoryDB{db: db}, nil
}

func createRunsTable(db *sql.DB) error {
	query := `
    CREATE TABLE IF NOT EXISTS onboarding_runs (
        run_id TEXT PRIMARY KEY,
        guild_id TEXT NOT NULL,
        thread_id TEXT NOT NULL,
        parent_id TEXT,
        creator_id TEXT,
        final_name TEXT,
        pinned INTEGER DEFAULT 0,
        added_users TEXT,
        removed_users TEXT,
        timestamp INTEGER
    );
    CREATE INDEX IF NOT EXISTS idx_runs_guild_time ON onboarding_runs (guild_id, timestamp);`
	_, err := db.Exec(query)
	return err
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Record saves a completed run.
func (h *HistoryDB) Record(run models.OnboardingRun) error {
	query := `
    INSERT OR REPLACE INTO onboarding_runs (
        run_id, guild_id, thread_id, parent_id, creator_id, final_name, pinned, added_users, removed_users, timestamp
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	stmt, err := h.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for saving run: %w", err)
	}
	defer stmt.Close()

	pinned := 0
	if run.Pinned {
		pinned = 1
	}
	_, err = stmt.Exec(
		run.RunID,
		run.GuildID,
		run.ThreadID,
		run.ParentID,
		run.CreatorID,
		run.FinalName,
		pinned,
		strings.Join(run.AddedUsers, ","),
		strings.Join(run.RemovedUsers, ","),
		run.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to execute statement for saving run of thread %s: %w", run.ThreadID, err)
	}
	return nil
}

// Recent returns the latest runs of a guild, newest first.
func (h *HistoryDB) Recent(guildID string, limit int) ([]models.OnboardingRun, error) {
	rows, err := h.db.Query(`
    SELECT run_id, guild_id, thread_id, parent_id, creator_id, final_name, pinned, added_users, removed_users, timestamp
    FROM onboarding_runs WHERE guild_id = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var runs []models.OnboardingRun
	for rows.Next() {
		var run models.OnboardingRun
		var pinned int
		var added, removed string
		if err := rows.Scan(&run.RunID, &run.GuildID, &run.ThreadID, &run.ParentID, &run.CreatorID,
			&run.FinalName, &pinned, &added, &removed, &run.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Pinned = pinned == 1
		run.AddedUsers = splitIDs(added)
		run.RemovedUsers = splitIDs(removed)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CleanupOlderThan deletes runs older than the given number of days and
// returns how many rows were removed.
func (h *HistoryDB) CleanupOlderThan(days int, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -days).Unix()
	res, err := h.db.Exec("DELETE FROM onboarding_runs WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	return res.RowsAffected()
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
