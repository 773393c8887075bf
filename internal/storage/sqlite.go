package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"

	"semgraph/internal/knowledge"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ knowledge.VectorStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			file_path TEXT NOT NULL,
			start_line INTEGER,
			end_line INTEGER,
			content TEXT,
			embedding BLOB
		);`,
		`CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			mtime INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_path);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Add(ctx context.Context, items []knowledge.VectorItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, file_path, start_line, end_line, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_path=excluded.file_path,
			start_line=excluded.start_line,
			end_line=excluded.end_line,
			content=excluded.content,
			embedding=excluded.embedding
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		blob, err := encodeVector(item.Embedding)
		if err != nil {
			return err
		}
		c := item.Chunk
		if _, err := stmt.ExecContext(ctx, c.ID, c.FilePath, c.StartLine, c.EndLine, c.Content, blob); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeleteFile(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE file_path = ?", path); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

// Search scores every stored chunk against queryVector in memory.
func (s *SQLiteStore) Search(ctx context.Context, queryVector []float32, topK int) ([]knowledge.Hit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT file_path, start_line, end_line, content, embedding FROM chunks")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []knowledge.Hit
	for rows.Next() {
		var h knowledge.Hit
		var blob []byte
		if err := rows.Scan(&h.FilePath, &h.StartLine, &h.EndLine, &h.Content, &blob); err != nil {
			return nil, err
		}
		embedding, err := decodeVector(blob)
		if err != nil {
			continue
		}
		h.Score = knowledge.CosineSimilarity(queryVector, embedding)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return knowledge.TopHits(hits, topK), nil
}

func (s *SQLiteStore) FileStates(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path, mtime FROM files")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		states[path] = mtime
	}
	return states, rows.Err()
}

func (s *SQLiteStore) SetFileState(ctx context.Context, path string, modTime int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO files (path, mtime) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET mtime=excluded.mtime
	`, path, modTime)
	return err
}

// ChunkCount returns the number of stored chunks.
func (s *SQLiteStore) ChunkCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

func encodeVector(v []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob has %d bytes", len(blob))
	}
	v := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &v); err != nil {
		return nil, err
	}
	return v, nil
}
