// Package blob stores uploaded study files and hands back public URLs.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"
)

// ErrUnknownURL is returned when a URL does not point into the storage.
var ErrUnknownURL = errors.New("url does not belong to this storage")

// Storage uploads objects under a key and deletes them by public URL.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// PublicURL joins key onto base the way the object is served.
func PublicURL(base, key string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid public base URL %q: %w", base, err)
	}
	u.Path = path.Join("/", u.Path, key)
	return u.String(), nil
}

// KeyFromURL maps a public URL produced by PublicURL back to its key.
func KeyFromURL(base, fileURL string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid public base URL %q: %w", base, err)
	}
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownURL, err)
	}
	if !strings.EqualFold(u.Host, b.Host) {
		return "", fmt.Errorf("%w: %s", ErrUnknownURL, fileURL)
	}
	prefix := strings.TrimSuffix(b.Path, "/") + "/"
	if !strings.HasPrefix(u.Path, prefix) || len(u.Path) == len(prefix) {
		return "", fmt.Errorf("%w: %s", ErrUnknownURL, fileURL)
	}
	return strings.TrimPrefix(u.Path, prefix), nil
}

// Memory keeps objects in process memory. It serves development setups
// without a bucket and tests.
type Memory struct {
	base string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemory returns an empty Memory whose URLs start with base.
func NewMemory(base string) *Memory {
	return &Memory{base: base, objects: make(map[string][]byte)}
}

func (m *Memory) Upload(ctx context.Context, key, _ string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("failed to read upload %s: %w", key, err)
	}
	u, err := PublicURL(m.base, key)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()
	return u, nil
}

func (m *Memory) Delete(ctx context.Context, fileURL string) error {
	key, err := KeyFromURL(m.base, fileURL)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("object %s not found", key)
	}
	delete(m.objects, key)
	return nil
}

// Object returns a stored object and whether it exists.
func (m *Memory) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Len is the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
