// Package catalog records indexing runs in a local SQLite database.
//
// Every build run stores its metadata (input path, blake3 fingerprint,
// locator mode, counts, duration) together with an xz-compressed snapshot
// of the annotated source, keyed by a UUID. The history and show commands
// read the catalog back.
//
// Build modes:
//   - Default (CGO_ENABLED=0): uses pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): uses mattn/go-sqlite3
//
// Use Open() instead of sql.Open() so the correct driver is selected.
package catalog

import (
	"bytes"
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
	"github.com/FocuswithJustin/TextIndex/internal/fileutil"
)

// ErrNoRun is returned when no recorded run matches the requested id.
var ErrNoRun = errors.New("no such run")

// ErrAmbiguousRun is returned when an id prefix matches more than one run.
var ErrAmbiguousRun = errors.New("run id prefix is ambiguous")

// DriverName returns the SQL driver name in use.
func DriverName() string {
	return driverName
}

// DriverType returns "purego" for modernc.org/sqlite, "cgo" for mattn/go-sqlite3.
func DriverType() string {
	return driverType
}

// DriverPackage returns the import path of the active SQLite driver.
func DriverPackage() string {
	return driverPackage
}

// IsCGO reports whether the CGO driver is in use.
func IsCGO() bool {
	return driverType == "cgo"
}

// Run is one recorded indexing run.
type Run struct {
	ID          string
	Path        string
	Fingerprint string
	Mode        string
	Tokens      int
	Entries     int
	Occurrences int
	Warnings    int
	Duration    time.Duration
	CreatedAt   time.Time
}

// Store is an open run catalog.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the catalog database at path, creating the file, its parent
// directory, and the schema as needed. A leading ~ is expanded.
func Open(path string) (*Store, error) {
	expanded, err := fileutil.ExpandUser(path)
	if err != nil {
		return nil, ierr.Wrap(err, "resolving catalog path")
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return nil, ierr.Wrap(err, "creating catalog directory")
	}
	db, err := sql.Open(driverName, expanded)
	if err != nil {
		return nil, ierr.Wrap(err, "opening catalog")
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: expanded}, nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		path        TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		mode        TEXT NOT NULL,
		tokens      INTEGER NOT NULL,
		entries     INTEGER NOT NULL,
		occurrences INTEGER NOT NULL,
		warnings    INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at  TEXT NOT NULL
	)`); err != nil {
		return ierr.Wrap(err, "creating runs table")
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT PRIMARY KEY REFERENCES runs(id),
		source BLOB NOT NULL
	)`); err != nil {
		return ierr.Wrap(err, "creating snapshots table")
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS runs_path_index ON runs (path)`); err != nil {
		return ierr.Wrap(err, "creating runs index")
	}
	return nil
}

// Close closes the catalog database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem location of the catalog database.
func (s *Store) Path() string {
	return s.path
}

// Record stores one run and the xz-compressed source it indexed.
// The returned Run has ID, Fingerprint, and CreatedAt filled in.
func (s *Store) Record(run Run, source string) (Run, error) {
	run.ID = uuid.New().String()
	run.Fingerprint = Fingerprint(source)
	// RFC3339 storage keeps second precision; truncate so the returned
	// value round-trips identically through List.
	run.CreatedAt = time.Now().UTC().Truncate(time.Second)

	snapshot, err := compress(source)
	if err != nil {
		return Run{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, ierr.Wrap(err, "recording run")
	}
	if _, err := tx.Exec(`INSERT INTO runs
		(id, path, fingerprint, mode, tokens, entries, occurrences, warnings, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Path, run.Fingerprint, run.Mode,
		run.Tokens, run.Entries, run.Occurrences, run.Warnings,
		run.Duration.Milliseconds(), run.CreatedAt.Format(time.RFC3339)); err != nil {
		tx.Rollback()
		return Run{}, ierr.Wrap(err, "recording run")
	}
	if _, err := tx.Exec(`INSERT INTO snapshots (run_id, source) VALUES (?, ?)`,
		run.ID, snapshot); err != nil {
		tx.Rollback()
		return Run{}, ierr.Wrap(err, "recording snapshot")
	}
	if err := tx.Commit(); err != nil {
		return Run{}, ierr.Wrap(err, "recording run")
	}
	return run, nil
}

const runColumns = `id, path, fingerprint, mode, tokens, entries, occurrences, warnings, duration_ms, created_at`

// List returns recorded runs, newest first. An empty path matches every
// run; limit <= 0 lists all.
func (s *Store) List(path string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	var (
		rows *sql.Rows
		err  error
	)
	if path == "" {
		rows, err = s.db.Query(`SELECT `+runColumns+` FROM runs
			ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(`SELECT `+runColumns+` FROM runs WHERE path = ?
			ORDER BY created_at DESC, rowid DESC LIMIT ?`, path, limit)
	}
	if err != nil {
		return nil, ierr.Wrap(err, "listing runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.Wrap(err, "listing runs")
	}
	return runs, nil
}

// Get returns the run with the given id. A unique id prefix is accepted,
// so history output can be pasted without the full UUID.
func (s *Store) Get(id string) (Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`,
		escapeLike(id)+"%")
	if err != nil {
		return Run{}, ierr.Wrap(err, "looking up run")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, ierr.Wrap(err, "looking up run")
	}
	switch len(runs) {
	case 0:
		return Run{}, ierr.Wrapf(ErrNoRun, "run %q", id)
	case 1:
		return runs[0], nil
	default:
		return Run{}, ierr.Wrapf(ErrAmbiguousRun, "run %q", id)
	}
}

// Snapshot returns the decompressed source stored for a run. The id may
// be a unique prefix, as with Get.
func (s *Store) Snapshot(id string) (Run, string, error) {
	run, err := s.Get(id)
	if err != nil {
		return Run{}, "", err
	}
	var blob []byte
	if err := s.db.QueryRow(`SELECT source FROM snapshots WHERE run_id = ?`,
		run.ID).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, "", ierr.Wrapf(ErrNoRun, "snapshot for run %q", id)
		}
		return Run{}, "", ierr.Wrap(err, "reading snapshot")
	}
	source, err := decompress(blob)
	if err != nil {
		return Run{}, "", err
	}
	return run, source, nil
}

// Fingerprint returns the blake3 hash of a document as a hex string.
func Fingerprint(document string) string {
	sum := blake3.Sum256([]byte(document))
	return hex.EncodeToString(sum[:])
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run        Run
		durationMS int64
		createdAt  string
	)
	if err := rows.Scan(&run.ID, &run.Path, &run.Fingerprint, &run.Mode,
		&run.Tokens, &run.Entries, &run.Occurrences, &run.Warnings,
		&durationMS, &createdAt); err != nil {
		return Run{}, ierr.Wrap(err, "scanning run")
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Run{}, ierr.Wrap(err, "parsing run timestamp")
	}
	run.CreatedAt = ts
	return run, nil
}

// escapeLike escapes LIKE wildcards in a run id prefix. UUIDs contain
// neither, but ids arrive from the command line.
func escapeLike(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func compress(source string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, ierr.Wrap(err, "compressing snapshot")
	}
	if _, err := w.Write([]byte(source)); err != nil {
		return nil, ierr.Wrap(err, "compressing snapshot")
	}
	if err := w.Close(); err != nil {
		return nil, ierr.Wrap(err, "compressing snapshot")
	}
	return buf.Bytes(), nil
}

func decompress(blob []byte) (string, error) {
	r, err := xz.NewReader(bytes.NewReader(blob))
	if err != nil {
		return "", ierr.Wrap(err, "decompressing snapshot")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", ierr.Wrap(err, "decompressing snapshot")
	}
	return string(data), nil
}
