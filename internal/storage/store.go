package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/neuroanim/internal/cell"
	"github.com/san-kum/neuroanim/internal/codec"
	"github.com/san-kum/neuroanim/internal/engine"
)

const (
	catalogFile  = "catalog.db"
	metadataFile = "metadata.json"
	tracesFile   = "traces.csv"
	payloadFile  = "payload.json"
	recordsFile  = "records.msgpack"
)

// ErrRunNotFound indicates a run ID missing from the catalog.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir and indexes runs in a
// SQLite catalog. A Store is not safe for concurrent Init/Close.
type Store struct {
	baseDir string
	db      *sql.DB
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(s.baseDir, catalogFile))
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	if s.db == nil {
		return nil, errors.New("storage: store not initialized")
	}
	return s.db, nil
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Source    string             `json:"source"`
	Timestamp time.Time          `json:"timestamp"`
	Engine    string             `json:"engine"`
	Step      string             `json:"export_step"`
	Config    cell.EngineConfig  `json:"engine_config"`
	Stimuli   []cell.Stimulus    `json:"stimuli,omitempty"`
	Frames    int                `json:"frames"`
	Sections  int                `json:"sections"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Run is everything a conversion produced.
type Run struct {
	Meta      RunMetadata
	Model     *cell.Model
	Recording *cell.Recording
	Payload   *codec.Payload
	Records   []codec.Record
}

// Dir is the run's directory.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// Save assigns a run ID, writes the run directory and indexes the run. A
// failed save leaves no run directory behind.
func (s *Store) Save(ctx context.Context, run Run) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}

	meta := run.Meta
	meta.ID = uuid.NewString()
	meta.Timestamp = s.now().UTC()
	if run.Payload != nil {
		meta.Frames = run.Payload.Metadata.FrameCount
		meta.Sections = len(run.Payload.Sections)
	}

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(ctx, db, runDir, meta, run); err != nil {
		_ = os.RemoveAll(runDir)
		return "", err
	}
	return meta.ID, nil
}

func writeRun(ctx context.Context, db *sql.DB, runDir string, meta RunMetadata, run Run) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if run.Recording != nil {
		if err := writeTraces(filepath.Join(runDir, tracesFile), run.Model, run.Recording); err != nil {
			return fmt.Errorf("write traces: %w", err)
		}
	}
	if run.Payload != nil {
		if err := codec.WriteFile(filepath.Join(runDir, payloadFile), run.Payload); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
	}
	if run.Records != nil {
		if err := codec.WriteRecordsFile(filepath.Join(runDir, recordsFile), run.Records); err != nil {
			return fmt.Errorf("write records: %w", err)
		}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO runs (id, name, source, created_at, engine, export_step, frames, sections)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, meta.ID, meta.Name, meta.Source, meta.Timestamp.UnixNano(), meta.Engine, meta.Step, meta.Frames, meta.Sections)
	if err != nil {
		return fmt.Errorf("index run: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return file.Close()
}

func writeTraces(path string, m *cell.Model, rec *cell.Recording) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := engine.WriteTraces(file, m, rec); err != nil {
		return err
	}
	return file.Close()
}

// List returns catalog entries, newest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, source, created_at, engine, export_step, frames, sections
		FROM runs ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var meta RunMetadata
		var created int64
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Source, &created, &meta.Engine, &meta.Step, &meta.Frames, &meta.Sections); err != nil {
			return nil, err
		}
		meta.Timestamp = time.Unix(0, created).UTC()
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// Load reads the full metadata of a catalogued run.
func (s *Store) Load(ctx context.Context, runID string) (*RunMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var id string
	err = db.QueryRowContext(ctx, `SELECT id FROM runs WHERE id = ?`, runID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTraces(runID string) (*engine.Replay, error) {
	return engine.ReadTracesFile(filepath.Join(s.Dir(runID), tracesFile))
}

func (s *Store) LoadPayload(runID string) (*codec.Payload, error) {
	return codec.ReadFile(filepath.Join(s.Dir(runID), payloadFile))
}

func (s *Store) LoadRecords(runID string) ([]codec.Record, error) {
	return codec.ReadRecordsFile(filepath.Join(s.Dir(runID), recordsFile))
}

// Delete removes a run from the catalog and disk.
func (s *Store) Delete(ctx context.Context, runID string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return os.RemoveAll(s.Dir(runID))
}
