// Package sqlite implements a persistent vector store backed by a SQLite
// database. Rows are the durable copy; searches run over an in-memory
// mirror loaded at open time. A store written by one process and reopened
// by another yields byte-identical vectors and chunks.
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"santerag/internal/domain"
	"santerag/internal/vectorstore/memory"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	chunk_id      TEXT UNIQUE NOT NULL,
	document_id   TEXT NOT NULL,
	document_path TEXT NOT NULL,
	position      INTEGER NOT NULL,
	text          TEXT NOT NULL,
	vector        BLOB NOT NULL
);
`

const dimensionKey = "dimension"

// Storage persists chunks and vectors to a SQLite file and mirrors them in
// an in-memory store for search.
type Storage struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
	mem  *memory.Storage
}

// NewStorage opens (or creates) the store at path and loads any existing
// records into memory.
func NewStorage(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	s := &Storage{db: db, path: path, mem: memory.NewStorage()}
	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Storage) Path() string { return s.path }

func (s *Storage) Init(dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Init(dimension); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return s.putMetaLocked(dimensionKey, []byte(strconv.Itoa(dimension)))
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Upsert(chunks, vectors); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO chunks
		(chunk_id, document_id, document_path, position, text, vector)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for i, ch := range chunks {
		if _, err := stmt.Exec(ch.ChunkID, ch.DocumentID, ch.DocumentPath, ch.Index, ch.Text, encodeVector(vectors[i])); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting chunk %s: %w", ch.ChunkID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	return s.mem.Search(vector, topK)
}

func (s *Storage) Chunks() []domain.Chunk { return s.mem.Chunks() }

func (s *Storage) Dimension() int { return s.mem.Dimension() }

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Clear(); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM chunks`)
	return err
}

// PutMeta stores a named blob (embedder state, model identifier).
func (s *Storage) PutMeta(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putMetaLocked(key, value)
}

func (s *Storage) putMetaLocked(key string, value []byte) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// GetMeta retrieves a named blob; the second return reports presence.
func (s *Storage) GetMeta(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// loadAll mirrors the persisted rows into the in-memory store.
func (s *Storage) loadAll() error {
	raw, ok, err := s.GetMeta(dimensionKey)
	if err != nil {
		return fmt.Errorf("reading dimension: %w", err)
	}
	if !ok {
		return nil // fresh store, Init will set the dimension
	}
	dimension, err := strconv.Atoi(string(raw))
	if err != nil {
		return fmt.Errorf("invalid persisted dimension %q", raw)
	}
	if err := s.mem.Init(dimension); err != nil {
		return err
	}

	rows, err := s.db.Query(`SELECT chunk_id, document_id, document_path, position, text, vector
		FROM chunks ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("loading chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	var vectors [][]float64
	for rows.Next() {
		var ch domain.Chunk
		var blob []byte
		if err := rows.Scan(&ch.ChunkID, &ch.DocumentID, &ch.DocumentPath, &ch.Index, &ch.Text, &blob); err != nil {
			return fmt.Errorf("scanning chunk: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return fmt.Errorf("decoding vector for %s: %w", ch.ChunkID, err)
		}
		chunks = append(chunks, ch)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	return s.mem.Upsert(chunks, vectors)
}

// encodeVector stores each float64 as its little-endian bit pattern so the
// round trip is exact.
func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("vector blob length %d not a multiple of 8", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
