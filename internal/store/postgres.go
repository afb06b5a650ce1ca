package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/entity"
)

const (
	usersCollection = "users"
	booksCollection = "books"
)

// PostgresPersister stores each collection as a single JSONB document in the
// collections table, replaced whole on every save. That keeps the backend
// faithful to the load/save contract: no partial updates, last save wins.
type PostgresPersister struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresPersister(db *pgxpool.Pool, timeout time.Duration) *PostgresPersister {
	return &PostgresPersister{db: db, timeout: timeout}
}

func (p *PostgresPersister) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

func (p *PostgresPersister) LoadUsers(ctx context.Context) ([]entity.User, error) {
	var records []userRecord
	if err := p.load(ctx, usersCollection, &records); err != nil {
		return nil, err
	}
	return fromUserRecords(records), nil
}

func (p *PostgresPersister) SaveUsers(ctx context.Context, users []entity.User) error {
	return p.save(ctx, usersCollection, toUserRecords(users))
}

func (p *PostgresPersister) LoadBooks(ctx context.Context) ([]entity.Book, error) {
	var books []entity.Book
	if err := p.load(ctx, booksCollection, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (p *PostgresPersister) SaveBooks(ctx context.Context, books []entity.Book) error {
	return p.save(ctx, booksCollection, books)
}

func (p *PostgresPersister) load(ctx context.Context, name string, out any) error {
	const query = `
	SELECT doc FROM collections WHERE name = $1 LIMIT 1
	`
	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	var doc []byte
	err := p.db.QueryRow(timeoutCtx, query, name).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (p *PostgresPersister) save(ctx context.Context, name string, v any) error {
	const query = `
	INSERT INTO collections (name, doc, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	timeoutCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	if _, err := p.db.Exec(timeoutCtx, query, name, doc); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
