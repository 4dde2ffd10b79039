package storage

import (
	"context"
	"sync"
)

// Object is an image held by MemoryStore
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps images in process memory. Used in tests and when the
// server runs without S3 configuration; its contents are lost on restart.
type MemoryStore struct {
	// BaseURL prefixes keys in URL, defaults to "/media"
	BaseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{BaseURL: "/media", objects: make(map[string]Object)}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	s.objects[key] = Object{Data: buf, ContentType: contentType}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) URL(key string) string {
	return publicURL(s.BaseURL, key)
}

// Get returns a stored object
func (s *MemoryStore) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

var _ ImageStore = (*MemoryStore)(nil)
