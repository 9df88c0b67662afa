// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	repository "github.com/okian/shoplist/internal/adapters/repository"
	"github.com/okian/shoplist/internal/domain/model"
	"github.com/okian/shoplist/pkg/logger"
	"github.com/okian/shoplist/pkg/metrics"
)

// Service maps shopping-list operations onto an item store.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	ownsStore bool

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the item store. The caller keeps ownership and closes it.
// Without this option Start creates an in-memory store that Stop closes.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a new Service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start prepares the service for requests.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.ownsStore = true
	}

	n, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	metrics.UpdateItemsTotal(n)

	s.started = true
	s.logger.Info(ctx, "shopping list service started",
		logger.String("store", s.store.Backend()),
		logger.Int("items", n),
	)
	return nil
}

// Stop shuts the service down, closing the store if the service created it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	if s.ownsStore {
		if err := s.store.Close(ctx); err != nil {
			s.logger.Warn(ctx, "closing store failed", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(ctx, "shopping list service stopped")
}

// storeFor returns the active store or ErrNotStarted.
func (s *Service) storeFor() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// List returns all items in insertion order.
func (s *Service) List(ctx context.Context) ([]model.Item, error) {
	store, err := s.storeFor()
	if err != nil {
		return nil, err
	}
	items, err := store.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Create stores a new item named name.
func (s *Service) Create(ctx context.Context, name string) (model.Item, error) {
	store, err := s.storeFor()
	if err != nil {
		return model.Item{}, err
	}
	if !model.ValidName(name) {
		metrics.RecordValidationFailure()
		return model.Item{}, fmt.Errorf("create item: %w", ErrInvalidName)
	}

	item, err := store.Create(ctx, model.Item{Name: name})
	if err != nil {
		return model.Item{}, s.translate(ctx, "create item", err)
	}

	metrics.RecordItemCreated()
	s.logger.Debug(ctx, "item created", logger.String("id", item.ID), logger.String("name", item.Name))
	return item, nil
}

// Update renames the item with the given id.
func (s *Service) Update(ctx context.Context, id, name string) (model.Item, error) {
	store, err := s.storeFor()
	if err != nil {
		return model.Item{}, err
	}
	if !model.ValidName(name) {
		metrics.RecordValidationFailure()
		return model.Item{}, fmt.Errorf("update item %s: %w", id, ErrInvalidName)
	}

	item, err := store.FindByIDAndUpdate(ctx, id, model.ItemPatch{Name: &name})
	if err != nil {
		return model.Item{}, s.translate(ctx, "update item "+id, err)
	}

	metrics.RecordItemUpdated()
	s.logger.Debug(ctx, "item updated", logger.String("id", item.ID), logger.String("name", item.Name))
	return item, nil
}

// Delete removes the item with the given id and returns it.
func (s *Service) Delete(ctx context.Context, id string) (model.Item, error) {
	store, err := s.storeFor()
	if err != nil {
		return model.Item{}, err
	}

	item, err := store.FindByIDAndRemove(ctx, id)
	if err != nil {
		return model.Item{}, s.translate(ctx, "delete item "+id, err)
	}

	metrics.RecordItemDeleted()
	s.logger.Debug(ctx, "item deleted", logger.String("id", item.ID))
	return item, nil
}

// translate collapses store errors into the service taxonomy. A malformed id
// and an unknown id are the same outcome for callers.
func (s *Service) translate(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidID):
		metrics.RecordItemNotFound()
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, repository.ErrInvalidDocument):
		metrics.RecordValidationFailure()
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidName, err)
	default:
		s.logger.Error(ctx, "store operation failed", logger.String("op", op), logger.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Count returns the number of stored items, or 0 if it cannot be determined.
func (s *Service) Count(ctx context.Context) int {
	store, err := s.storeFor()
	if err != nil {
		return 0
	}
	n, err := store.Count(ctx)
	if err != nil {
		return 0
	}
	return n
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	store := s.store
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": started,
	}

	if started {
		n, err := store.Count(context.Background())
		if err == nil {
			stats["totalItems"] = n
			metrics.UpdateItemsTotal(n)
		}
		stats["store"] = store.Backend()
	}

	return stats
}
