package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version. Bump when adding migrations.
const CurrentSchemaVersion = 1

// maxRecoveryAttempts caps corruption-recovery rebuilds so a persistently
// failing disk cannot recurse into endless re-initialization.
const maxRecoveryAttempts = 2

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("history entry not found")

// Store is the durable history collection. Write operations are serialized
// so no two saves for the collection interleave under the poller's cadence.
type Store struct {
	db   *sql.DB
	path string

	wmu sync.Mutex
}

// Open initializes the history database at dir/history.db, recovering from
// corruption by salvaging whatever rows remain readable and rebuilding a
// fresh store seeded with them.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	path := filepath.Join(dir, "history.db")

	var salvaged []Entry
	for attempt := 0; ; attempt++ {
		db, err := openDB(path)
		if err == nil {
			s := &Store{db: db, path: path}
			if len(salvaged) > 0 {
				s.seed(salvaged)
			}
			return s, nil
		}
		if attempt >= maxRecoveryAttempts {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		slog.Warn("history store unreadable, attempting recovery",
			"attempt", attempt+1, "err", err)
		salvaged = salvage(path)
		if moveErr := os.Rename(path, fmt.Sprintf("%s.corrupt.%d", path, time.Now().Unix())); moveErr != nil {
			// Can't move the damaged file aside; remove it so the rebuild
			// starts clean.
			_ = os.Remove(path)
		}
	}
}

func openDB(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var result string
	if err := db.QueryRow("PRAGMA integrity_check;").Scan(&result); err != nil || result != "ok" {
		db.Close()
		if err == nil {
			err = fmt.Errorf("integrity check: %s", result)
		}
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	_ = os.Chmod(path, 0o600)
	return db, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS entries (
		  id            TEXT PRIMARY KEY,
		  preview       TEXT NOT NULL,
		  full_text     TEXT,
		  payload_paths TEXT NOT NULL DEFAULT '[]',
		  ts            INTEGER NOT NULL,
		  pinned        INTEGER NOT NULL DEFAULT 0,
		  sensitive     INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_entries_order ON entries (pinned DESC, ts DESC);
		CREATE INDEX IF NOT EXISTS idx_entries_compare ON entries (COALESCE(full_text, preview));
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("apply schema v1: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d;", CurrentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// salvage performs a best-effort partial read of a damaged database,
// skipping unreadable rows rather than aborting.
func salvage(path string) []Entry {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(1000)")
	if err != nil {
		return nil
	}
	defer db.Close()

	rows, err := db.Query(`SELECT id, preview, full_text, payload_paths, ts, pinned, sensitive FROM entries`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	if len(out) > 0 {
		slog.Info("salvaged history entries from damaged store", "count", len(out))
	}
	return out
}

// seed inserts salvaged entries into a freshly rebuilt store, best-effort.
func (s *Store) seed(entries []Entry) {
	for _, e := range entries {
		if err := s.Insert(e); err != nil {
			slog.Warn("could not re-insert salvaged entry", "id", e.ID, "err", err)
		}
	}
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (Entry, error) {
	var (
		e         Entry
		fullText  sql.NullString
		pathsJSON string
		tsNano    int64
		pinned    int
		sensitive int
	)
	if err := r.Scan(&e.ID, &e.Preview, &fullText, &pathsJSON, &tsNano, &pinned, &sensitive); err != nil {
		return Entry{}, err
	}
	if fullText.Valid {
		e.FullText = &fullText.String
	}
	if err := json.Unmarshal([]byte(pathsJSON), &e.PayloadPaths); err != nil {
		e.PayloadPaths = nil
	}
	e.Timestamp = time.Unix(0, tsNano)
	e.Pinned = pinned != 0
	e.Sensitive = sensitive != 0
	return e, nil
}

// Insert adds an entry.
func (s *Store) Insert(e Entry) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	paths, err := json.Marshal(e.PayloadPaths)
	if err != nil {
		return fmt.Errorf("marshal payload paths: %w", err)
	}
	var fullText any
	if e.FullText != nil {
		fullText = *e.FullText
	}
	_, err = s.db.Exec(
		`INSERT INTO entries (id, preview, full_text, payload_paths, ts, pinned, sensitive)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Preview, fullText, string(paths), e.Timestamp.UnixNano(),
		boolInt(e.Pinned), boolInt(e.Sensitive),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// List returns all entries ordered pinned-first, newest-first within each tier.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, preview, full_text, payload_paths, ts, pinned, sensitive
		 FROM entries ORDER BY pinned DESC, ts DESC`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// FindByComparison returns the entry whose comparison text (full text when
// present, else preview) equals text, or ErrNotFound.
func (s *Store) FindByComparison(text string) (Entry, error) {
	row := s.db.QueryRow(
		`SELECT id, preview, full_text, payload_paths, ts, pinned, sensitive
		 FROM entries WHERE COALESCE(full_text, preview) = ? LIMIT 1`, text)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("find entry: %w", err)
	}
	return e, nil
}

// SetPinned toggles an entry's pin status.
func (s *Store) SetPinned(id string, pinned bool) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	res, err := s.db.Exec(`UPDATE entries SET pinned = ? WHERE id = ?`, boolInt(pinned), id)
	if err != nil {
		return fmt.Errorf("update pin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entry and then deletes its payload files. The record
// delete is primary; payload deletion is best-effort and logged, so a
// failed record delete never orphans the metadata while removing the blobs.
func (s *Store) Delete(id string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	row := s.db.QueryRow(`SELECT payload_paths FROM entries WHERE id = ?`, id)
	var pathsJSON string
	if err := row.Scan(&pathsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("read entry: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	var paths []string
	_ = json.Unmarshal([]byte(pathsJSON), &paths)
	RemovePayloads(paths)
	return nil
}

// Prune evicts the oldest unpinned entries beyond limit and returns them,
// after deleting their payload files. Pinned entries are never evicted.
func (s *Store) Prune(limit int) ([]Entry, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, preview, full_text, payload_paths, ts, pinned, sensitive
		 FROM entries WHERE pinned = 0 ORDER BY ts DESC LIMIT -1 OFFSET ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select eviction candidates: %w", err)
	}
	var evicted []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan eviction candidate: %w", err)
		}
		evicted = append(evicted, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range evicted {
		if _, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, e.ID); err != nil {
			return nil, fmt.Errorf("evict entry %s: %w", e.ID, err)
		}
		RemovePayloads(e.PayloadPaths)
	}
	return evicted, nil
}

// Counts returns the total and pinned entry counts.
func (s *Store) Counts() (total, pinned int, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(pinned), 0) FROM entries`).Scan(&total, &pinned); err != nil {
		return 0, 0, fmt.Errorf("count entries: %w", err)
	}
	return total, pinned, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
