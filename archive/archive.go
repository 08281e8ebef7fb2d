// Package archive persists generated HL7 message text before delivery
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
)

// Store persists the text of one generated message. A write failure must not
// block delivery; callers log it and submit the in-memory text anyway.
type Store interface {
	Put(ctx context.Context, name string, text string) error
}

// ObjectName returns the deterministic archive name for one record.
func ObjectName(prefix string, patientID string, index int) string {
	return fmt.Sprintf("%s-%s-%d.hl7", prefix, patientID, index)
}

// Bucket is a Store writing each message to an object-store bucket.
type Bucket struct {
	Client *minio.Client
	Bucket string
	Prefix string // key prefix within the bucket, e.g. "flshots-hl7-messages/"
}

// Put writes the message under Prefix+name.
func (b *Bucket) Put(ctx context.Context, name string, text string) error {
	key := b.Prefix + name
	_, err := b.Client.PutObject(ctx, b.Bucket, key, strings.NewReader(text), int64(len(text)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("archive: writing %s: %w", key, err)
	}
	return nil
}

// Dir is a Store writing each message to a local directory.
type Dir struct {
	Path string
}

// Put writes the message as a file under Path, creating the directory if
// needed.
func (d Dir) Put(ctx context.Context, name string, text string) error {
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return fmt.Errorf("archive: creating %s: %w", d.Path, err)
	}
	target := filepath.Join(d.Path, name)
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return fmt.Errorf("archive: writing %s: %w", target, err)
	}
	return nil
}

// Memory is an in-process Store for tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	objects map[string]string
}

// Put records the message in memory.
func (m *Memory) Put(ctx context.Context, name string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string]string)
	}
	m.objects[name] = text
	return nil
}

// Get returns a previously stored message.
func (m *Memory) Get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.objects[name]
	return text, ok
}

// Len returns the number of stored messages.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
