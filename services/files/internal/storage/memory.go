package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

type memoryObject struct {
	contentType string
	data        []byte
}

// MemoryStorage keeps objects in process. It serves local runs without
// MinIO; presigned URLs are not actually signed.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{objects: map[string]memoryObject{}, baseURL: baseURL}
}

func objectKey(bucket, name string) string { return bucket + "/" + name }

func (m *MemoryStorage) PutObject(_ context.Context, bucket, name, contentType string, r io.Reader, _ int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey(bucket, name)] = memoryObject{contentType: contentType, data: buf.Bytes()}
	return nil
}

func (m *MemoryStorage) StatObject(_ context.Context, bucket, name string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[objectKey(bucket, name)]; !ok {
		return ErrObjectNotFound
	}
	return nil
}

func (m *MemoryStorage) RemoveObject(_ context.Context, bucket, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey(bucket, name))
	return nil
}

func (m *MemoryStorage) PresignedGetObject(_ context.Context, bucket, name string, ttl time.Duration) (string, error) {
	q := url.Values{}
	q.Set("expires", fmt.Sprintf("%d", int(ttl.Seconds())))
	return m.PublicURL(bucket, name) + "?" + q.Encode(), nil
}

func (m *MemoryStorage) PublicURL(bucket, name string) string {
	return m.baseURL + "/" + bucket + "/" + url.PathEscape(name)
}

func (m *MemoryStorage) Ping(context.Context) error { return nil }

// Object returns a stored object's bytes.
func (m *MemoryStorage) Object(bucket, name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[objectKey(bucket, name)]
	return o.data, ok
}
