package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// ObjectStore persists uploaded bytes and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// FileStore writes objects below a local directory that is served under
// PublicPath.
type FileStore struct {
	Dir        string
	PublicPath string
}

// NewFileStore creates the directory when missing.
func NewFileStore(dir, publicPath string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("media: file store directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create upload dir: %w", err)
	}
	return &FileStore{Dir: dir, PublicPath: normalizePublicPath(publicPath)}, nil
}

func (s *FileStore) Put(ctx context.Context, key string, body io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("media: create object dir: %w", err)
	}
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("media: create object: %w", err)
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("media: write object: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("media: close object: %w", err)
	}
	return publicURL(s.PublicPath, key), nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: delete object: %w", err)
	}
	return nil
}

func (s *FileStore) resolve(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	if cleaned == "/" {
		return "", fmt.Errorf("media: object key required")
	}
	return filepath.Join(s.Dir, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}

// MemoryStore keeps objects in memory for tests.
type MemoryStore struct {
	mu         sync.RWMutex
	objects    map[string][]byte
	PublicPath string
}

func NewMemoryStore(publicPath string) *MemoryStore {
	return &MemoryStore{
		objects:    make(map[string][]byte),
		PublicPath: normalizePublicPath(publicPath),
	}
}

func (s *MemoryStore) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return publicURL(s.PublicPath, key), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Object returns the stored bytes for key.
func (s *MemoryStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return bytes.Clone(data), ok
}

func normalizePublicPath(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "/uploads"
	}
	return "/" + strings.Trim(value, "/")
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
