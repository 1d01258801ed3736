package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tartampluch/go-contacts/internal/engine"
)

// Memory is a process-local store. Contents are lost on exit.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) List(ctx context.Context) ([]engine.ContactRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.ContactRecord, 0, len(m.data))
	for name, phone := range m.data {
		out = append(out, engine.ContactRecord{Name: name, Phone: phone})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Get(ctx context.Context, name string) (engine.ContactRecord, error) {
	if err := ctx.Err(); err != nil {
		return engine.ContactRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	phone, ok := m.data[name]
	if !ok {
		return engine.ContactRecord{}, engine.ErrNotFound
	}
	return engine.ContactRecord{Name: name, Phone: phone}, nil
}

func (m *Memory) Upsert(ctx context.Context, rec engine.ContactRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data[rec.Name] = rec.Phone
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, name)
	m.mu.Unlock()
	return nil
}

// Rename swaps the key under a single lock.
func (m *Memory) Rename(ctx context.Context, oldName string, rec engine.ContactRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, oldName)
	m.data[rec.Name] = rec.Phone
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }
