package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store reads and writes JSON documents in object storage.
type Store interface {
	// DownloadJSON fetches the object at bucket/key and unmarshals it into v.
	DownloadJSON(ctx context.Context, bucket, key string, v any) error
	// UploadJSON marshals v and writes it to bucket/key.
	UploadJSON(ctx context.Context, bucket, key string, v any) error
	// Exists reports whether bucket/key exists.
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// Memory is an in-process Store used by tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func memKey(bucket, key string) string { return bucket + "/" + key }

// DownloadJSON fetches and unmarshals a stored document.
func (m *Memory) DownloadJSON(_ context.Context, bucket, key string, v any) error {
	m.mu.RLock()
	data, ok := m.objects[memKey(bucket, key)]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("store: object %s not found in bucket %s", key, bucket)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: object %s is not valid JSON: %w", key, err)
	}
	return nil
}

// UploadJSON marshals and stores a document.
func (m *Memory) UploadJSON(_ context.Context, bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}
	m.mu.Lock()
	m.objects[memKey(bucket, key)] = data
	m.mu.Unlock()
	return nil
}

// Exists reports whether a document is stored.
func (m *Memory) Exists(_ context.Context, bucket, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[memKey(bucket, key)]
	return ok, nil
}

// PutRaw stores pre-marshaled bytes. Test helper for planting raw
// recognizer output.
func (m *Memory) PutRaw(bucket, key string, data []byte) {
	m.mu.Lock()
	m.objects[memKey(bucket, key)] = data
	m.mu.Unlock()
}
