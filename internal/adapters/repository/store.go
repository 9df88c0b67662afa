// Package repository defines the item store interface, its errors and the
// in-memory and MongoDB implementations.
package repository

import (
	"context"

	"github.com/okian/shoplist/internal/domain/model"
)

// Store is a document store holding a single entity type. Each operation is
// atomic for the document it touches; nothing spans documents.
type Store interface {
	// Create persists a new item and returns it with its assigned id.
	// Returns ErrInvalidDocument if the name is not usable.
	Create(ctx context.Context, item model.Item) (model.Item, error)

	// Find returns every item in the store's natural (insertion) order.
	Find(ctx context.Context) ([]model.Item, error)

	// FindByIDAndUpdate applies patch to the item with the given id and
	// returns the updated item. Returns ErrInvalidID for a malformed id,
	// ErrNotFound for an unknown one and ErrInvalidDocument for an empty
	// patch or unusable name.
	FindByIDAndUpdate(ctx context.Context, id string, patch model.ItemPatch) (model.Item, error)

	// FindByIDAndRemove deletes the item with the given id and returns it.
	// Returns ErrInvalidID for a malformed id and ErrNotFound for an unknown one.
	FindByIDAndRemove(ctx context.Context, id string) (model.Item, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)

	// Backend names the implementation, e.g. "memory" or "mongo".
	Backend() string

	// Close releases the store's resources. Further calls fail with ErrClosed.
	Close(ctx context.Context) error
}
