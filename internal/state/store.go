package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/openclaw/clawevolve/controller/internal/runlog"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	snapshot_id    TEXT PRIMARY KEY,
	schema_version INTEGER NOT NULL,
	created_at     TEXT NOT NULL,
	payload        BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS active_snapshot (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	snapshot_id TEXT NOT NULL,
	FOREIGN KEY (snapshot_id) REFERENCES snapshots(snapshot_id)
);

CREATE TABLE IF NOT EXISTS events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT,
	event_type   TEXT NOT NULL,
	payload_json TEXT,
	created_at   TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store persists snapshots and the durable event log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region save-snapshot
// SaveSnapshot persists a snapshot and moves the active pointer to it
// atomically. Returns the new snapshot id.
func (s *Store) SaveSnapshot(snap Snapshot) (string, error) {
	payload, err := Encode(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO snapshots (snapshot_id, schema_version, created_at, payload)
		 VALUES (?, ?, ?, ?)`,
		id, SchemaVersion, now.Format(time.RFC3339Nano), payload,
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_snapshot (id, snapshot_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET snapshot_id = excluded.snapshot_id`,
		id,
	)
	if err != nil {
		return "", fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// #endregion save-snapshot

// #region load-latest
// LoadLatest reads the active snapshot. ok is false when none exists yet.
func (s *Store) LoadLatest() (Snapshot, bool, error) {
	var payload []byte
	err := s.db.QueryRow(
		`SELECT p.payload FROM active_snapshot a
		 JOIN snapshots p ON p.snapshot_id = a.snapshot_id
		 WHERE a.id = 1`,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	return Decode(payload), true, nil
}

// #endregion load-latest

// #region list-snapshots
// SnapshotInfo is one row of snapshot metadata, payload omitted.
type SnapshotInfo struct {
	SnapshotID    string
	SchemaVersion int
	CreatedAt     time.Time
	Active        bool
}

// ListSnapshots returns the most recent snapshot rows, newest first.
func (s *Store) ListSnapshots(limit int) ([]SnapshotInfo, error) {
	rows, err := s.db.Query(
		`SELECT p.snapshot_id, p.schema_version, p.created_at,
		        EXISTS (SELECT 1 FROM active_snapshot a WHERE a.snapshot_id = p.snapshot_id)
		 FROM snapshots p ORDER BY p.created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var createdStr string
		if err := rows.Scan(&info.SnapshotID, &info.SchemaVersion, &createdStr, &info.Active); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, info)
	}
	return out, rows.Err()
}

// #endregion list-snapshots

// #region append-event
// AppendEvent writes an event to the durable events table.
func (s *Store) AppendEvent(ev runlog.Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	var payload interface{}
	if len(ev.Payload) > 0 {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		payload = string(data)
	}
	var runID interface{}
	if ev.RunID != "" {
		runID = ev.RunID
	}
	_, err := s.db.Exec(
		`INSERT INTO events (run_id, event_type, payload_json, created_at)
		 VALUES (?, ?, ?, ?)`,
		runID, ev.Type, payload, ev.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// #endregion append-event

// #region recent-events
// RecentEvents returns the newest events, oldest first.
func (s *Store) RecentEvents(limit int) ([]runlog.Event, error) {
	rows, err := s.db.Query(
		`SELECT run_id, event_type, payload_json, created_at FROM
		 (SELECT id, run_id, event_type, payload_json, created_at
		  FROM events ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var out []runlog.Event
	for rows.Next() {
		var ev runlog.Event
		var runID, payload sql.NullString
		var createdStr string
		if err := rows.Scan(&runID, &ev.Type, &payload, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if runID.Valid {
			ev.RunID = runID.String
		}
		if payload.Valid {
			// Tolerate unreadable payloads; the event row still counts.
			_ = json.Unmarshal([]byte(payload.String), &ev.Payload)
		}
		ev.Timestamp, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// #endregion recent-events
