package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/logger"
)

const (
	documentsFile = "documents.json"
	matrixFile    = "embeddings.bin"
)

func artifactPaths(dir string) (docsPath, matrixPath string) {
	return filepath.Join(dir, documentsFile), filepath.Join(dir, matrixFile)
}

// Save writes both artifacts to disk: the document records as indented
// JSON and the embedding matrix as a binary row-major float32 dump.
// Each file is written to a temporary sibling and renamed into place,
// so a crash mid-write never leaves a truncated artifact. Saves are
// serialized: concurrent callers would otherwise race on the shared
// temporary siblings and could persist documents and embeddings from
// different generations.
func (idx *Index) Save() error {
	idx.saveMu.Lock()
	defer idx.saveMu.Unlock()

	idx.mu.RLock()
	docs := make([]domain.DocumentRecord, len(idx.documents))
	copy(docs, idx.documents)
	matrix := make([][]float32, len(idx.embeddings))
	copy(matrix, idx.embeddings)
	idx.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(idx.docsPath), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	if err := writeAtomic(idx.docsPath, data); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}

	blob, err := encodeMatrix(matrix)
	if err != nil {
		return fmt.Errorf("encode embeddings: %w", err)
	}
	if err := writeAtomic(idx.matrixPath, blob); err != nil {
		return fmt.Errorf("write embeddings: %w", err)
	}

	logger.Debug("Saved %d documents to %s", len(docs), filepath.Dir(idx.docsPath))
	return nil
}

// Load restores the index from disk. A missing, unreadable or
// inconsistent pair of artifacts is not an error: the index starts
// empty and the condition is logged, so a damaged store never blocks
// startup.
func (idx *Index) Load() error {
	docs, err := readDocuments(idx.docsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Resetting index: %v", err)
		}
		return idx.reset()
	}

	matrix, err := readMatrix(idx.matrixPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Resetting index: %v", err)
		}
		return idx.reset()
	}

	if len(matrix) != len(docs) {
		logger.Warn("Resetting index: %v: %d documents but %d embedding rows",
			domain.ErrCorruptIndex, len(docs), len(matrix))
		return idx.reset()
	}

	idx.mu.Lock()
	idx.documents = docs
	idx.embeddings = matrix
	idx.mu.Unlock()

	logger.Info("Loaded %d documents from %s", len(docs), filepath.Dir(idx.docsPath))
	return nil
}

func (idx *Index) reset() error {
	idx.mu.Lock()
	idx.documents = nil
	idx.embeddings = nil
	idx.mu.Unlock()
	return nil
}

func (idx *Index) removeArtifacts() error {
	for _, path := range []string{idx.docsPath, idx.matrixPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

func readDocuments(path string) ([]domain.DocumentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []domain.DocumentRecord
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return docs, nil
}

// The matrix artifact is a little-endian header of two uint32 values,
// row and column counts, followed by rows*cols float32 values in row
// order.
func encodeMatrix(matrix [][]float32) ([]byte, error) {
	rows := len(matrix)
	cols := 0
	if rows > 0 {
		cols = len(matrix[0])
	}

	buf := make([]byte, 8+rows*cols*4)
	binary.LittleEndian.PutUint32(buf[0:], uint32(rows))
	binary.LittleEndian.PutUint32(buf[4:], uint32(cols))

	off := 8
	for _, row := range matrix {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged embedding matrix")
		}
		for _, v := range row {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			off += 4
		}
	}
	return buf, nil
}

func readMatrix(path string) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("decode %s: %w: short header", path, domain.ErrCorruptIndex)
	}

	rows := int(binary.LittleEndian.Uint32(data[0:]))
	cols := int(binary.LittleEndian.Uint32(data[4:]))
	if len(data) != 8+rows*cols*4 {
		return nil, fmt.Errorf("decode %s: %w: size mismatch for %dx%d matrix",
			path, domain.ErrCorruptIndex, rows, cols)
	}

	matrix := make([][]float32, rows)
	off := 8
	for i := range matrix {
		row := make([]float32, cols)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		matrix[i] = row
	}
	return matrix, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
