package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/shoplist/internal/domain/model"
	"github.com/okian/shoplist/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const backendMemory = "memory"

// MemoryStore is an in-memory Store. Items are kept in insertion order and
// indexed by ObjectID; a single RWMutex makes each operation atomic.
type MemoryStore struct {
	mu     sync.RWMutex
	order  []primitive.ObjectID
	byID   map[primitive.ObjectID]string
	closed bool

	newID func() primitive.ObjectID
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithIDGenerator replaces primitive.NewObjectID as the id source.
func WithIDGenerator(gen func() primitive.ObjectID) MemoryOption {
	return func(s *MemoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		byID:  make(map[primitive.ObjectID]string),
		newID: primitive.NewObjectID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return backendMemory }

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, item model.Item) (_ model.Item, err error) {
	defer observe(backendMemory, "create", time.Now(), &err)

	if !model.ValidName(item.Name) {
		return model.Item{}, fmt.Errorf("%w: name is required", ErrInvalidDocument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Item{}, ErrClosed
	}

	oid := s.newID()
	if _, exists := s.byID[oid]; exists {
		return model.Item{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidDocument, oid.Hex())
	}
	s.byID[oid] = item.Name
	s.order = append(s.order, oid)
	metrics.UpdateItemsTotal(len(s.order))

	return model.Item{ID: oid.Hex(), Name: item.Name}, nil
}

// Find implements Store.
func (s *MemoryStore) Find(_ context.Context) (_ []model.Item, err error) {
	defer observe(backendMemory, "find", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out := make([]model.Item, 0, len(s.order))
	for _, oid := range s.order {
		out = append(out, model.Item{ID: oid.Hex(), Name: s.byID[oid]})
	}
	return out, nil
}

// FindByIDAndUpdate implements Store.
func (s *MemoryStore) FindByIDAndUpdate(_ context.Context, id string, patch model.ItemPatch) (_ model.Item, err error) {
	defer observe(backendMemory, "update", time.Now(), &err)

	oid, err := ParseID(id)
	if err != nil {
		return model.Item{}, err
	}
	if patch.Empty() {
		return model.Item{}, fmt.Errorf("%w: empty patch", ErrInvalidDocument)
	}
	if !model.ValidName(*patch.Name) {
		return model.Item{}, fmt.Errorf("%w: name is required", ErrInvalidDocument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Item{}, ErrClosed
	}

	if _, ok := s.byID[oid]; !ok {
		return model.Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.byID[oid] = *patch.Name
	return model.Item{ID: oid.Hex(), Name: *patch.Name}, nil
}

// FindByIDAndRemove implements Store.
func (s *MemoryStore) FindByIDAndRemove(_ context.Context, id string) (_ model.Item, err error) {
	defer observe(backendMemory, "remove", time.Now(), &err)

	oid, err := ParseID(id)
	if err != nil {
		return model.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Item{}, ErrClosed
	}

	name, ok := s.byID[oid]
	if !ok {
		return model.Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.byID, oid)
	for i, o := range s.order {
		if o == oid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	metrics.UpdateItemsTotal(len(s.order))

	return model.Item{ID: oid.Hex(), Name: name}, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (_ int, err error) {
	defer observe(backendMemory, "count", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.order), nil
}

// Close implements Store. Closing twice is a no-op.
func (s *MemoryStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.order = nil
	s.byID = make(map[primitive.ObjectID]string)
	return nil
}
