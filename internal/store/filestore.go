package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pizzashack/internal/domain"
)

// Store keeps one JSON file per record under <baseDir>/<collection>/. It is
// the flat-file stand-in for a database: records are independent, there are
// no cross-record transactions.
type Store struct {
	baseDir string
}

// New creates baseDir if needed and returns a Store rooted there.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("init store at %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Ping verifies the data directory is still reachable.
func (s *Store) Ping() error {
	_, err := os.Stat(s.baseDir)
	return err
}

// Create writes a new record, failing with ErrAlreadyExists when the key is
// taken. The exclusive open makes create-if-absent atomic.
func (s *Store) Create(ctx context.Context, collection, key string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(collection, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s/%s: %w", collection, key, domain.ErrAlreadyExists)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s/%s: %w", collection, key, err)
	}
	return f.Close()
}

// Read unmarshals the record into v, failing with ErrNotFound when absent.
func (s *Store) Read(ctx context.Context, collection, key string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(collection, key)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", collection, key, domain.ErrNotFound)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return nil
}

// Update overwrites an existing record. The write goes to a temp file first
// and is renamed into place so readers never see a partial record.
func (s *Store) Update(ctx context.Context, collection, key string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(collection, key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", collection, key, domain.ErrNotFound)
		}
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, key, err)
	}
	return os.Rename(tmp, path)
}

// Delete removes the record, failing with ErrNotFound when absent.
func (s *Store) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(collection, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", collection, key, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

// List returns every key in the collection. A collection that was never
// written to lists as empty.
func (s *Store) List(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validComponent(collection); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.baseDir, collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}

func (s *Store) path(collection, key string) (string, error) {
	if err := validComponent(collection); err != nil {
		return "", err
	}
	if err := validComponent(key); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, collection, key+".json"), nil
}

func validComponent(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid record path component %q", name)
	}
	return nil
}
