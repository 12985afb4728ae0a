// Package journal provides small mutex-guarded JSON list stores for
// the service's side records: curated training pairs, questions the
// service failed to answer, and the rolling conversation memory.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// listFile is a JSON array persisted to a single file. Every mutation
// rewrites the whole file through a temporary sibling; an unreadable
// or corrupt file reads back as an empty list.
type listFile[T any] struct {
	path string
	mu   sync.Mutex
}

func (f *listFile[T]) load() []T {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

func (f *listFile[T]) store(items []T) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// update applies fn to the current list and persists the result.
func (f *listFile[T]) update(fn func([]T) ([]T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := fn(f.load())
	if err != nil {
		return err
	}
	return f.store(items)
}

func (f *listFile[T]) list() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}
