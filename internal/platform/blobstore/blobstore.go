// Package blobstore holds raw scan payloads. Metadata lives in Postgres;
// the store only maps an object key to its bytes, size, and SHA-256 hash.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectTooLarge = errors.New("object exceeds maximum allowed size")
	ErrEmptyKey       = errors.New("object key is required")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key  string
	Size int64
	Hash string
}

// Store is the contract for scan payload storage backends.
type Store interface {
	Put(ctx context.Context, key string, content io.Reader) (*ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

type storedObject struct {
	info ObjectInfo
	data []byte
}

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	objects  map[string]*storedObject
	maxBytes int64
}

// NewMemoryStore returns a MemoryStore that rejects objects larger than
// maxBytes.
func NewMemoryStore(maxBytes int64) *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string]*storedObject),
		maxBytes: maxBytes,
	}
}

// Put reads the content, computes its SHA-256 hash, and stores it under key.
// An existing object under the same key is replaced.
func (s *MemoryStore) Put(_ context.Context, key string, content io.Reader) (*ObjectInfo, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrObjectTooLarge
	}

	h := sha256.Sum256(data)
	info := ObjectInfo{
		Key:  key,
		Size: int64(len(data)),
		Hash: fmt.Sprintf("%x", h),
	}

	s.mu.Lock()
	s.objects[key] = &storedObject{info: info, data: data}
	s.mu.Unlock()

	out := info
	return &out, nil
}

// Get returns an io.ReadCloser over the object content and its info.
func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrObjectNotFound
	}

	info := obj.info
	return io.NopCloser(bytes.NewReader(obj.data)), &info, nil
}

// Delete removes an object by key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}
