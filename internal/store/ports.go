package store

import (
	"context"

	"libraryapi/internal/entity"
)

// Persister is the durable side of the store. Each call reads or replaces a
// whole collection; there are no partial updates. The store treats a write as
// durable only after Save returns nil.
type Persister interface {
	LoadUsers(ctx context.Context) ([]entity.User, error)
	SaveUsers(ctx context.Context, users []entity.User) error
	LoadBooks(ctx context.Context) ([]entity.Book, error)
	SaveBooks(ctx context.Context, books []entity.Book) error
}
