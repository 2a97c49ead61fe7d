package docstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Records are copied on the way in and out.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	order []string
	docs  map[string]Record
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memoryCollection)}
}

func (m *Memory) collection(name string) *memoryCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]Record)}
		m.collections[name] = c
	}
	return c
}

func (m *Memory) Query(ctx context.Context, collection string, filters ...Filter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return []Record{}, nil
	}

	result := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		doc := c.docs[id]
		if !doc.Matches(filters...) {
			continue
		}
		out := doc.Clone()
		out[IDField] = id
		result = append(result, out)
	}
	return result, nil
}

func (m *Memory) GetByID(ctx context.Context, collection, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := doc.Clone()
	out[IDField] = id
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, collection string, rec Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	id := NewID()
	c.docs[id] = rec.Clone()
	c.order = append(c.order, id)
	return id, nil
}

func (m *Memory) Replace(ctx context.Context, collection, id string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	c.docs[id] = rec.Clone()
	return nil
}

func (m *Memory) Patch(ctx context.Context, collection, id string, fields Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	updated := doc.Clone()
	for k, v := range fields.Clone() {
		updated[k] = v
	}
	c.docs[id] = updated
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)

	order := c.order[:0]
	for _, existing := range c.order {
		if existing != id {
			order = append(order, existing)
		}
	}
	c.order = order
	return nil
}
