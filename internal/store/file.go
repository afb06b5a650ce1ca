package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"libraryapi/internal/entity"
)

const (
	usersFile = "users.json"
	booksFile = "books.json"
)

// FilePersister keeps each collection in a JSON file under dir. A missing
// file loads as an empty collection; writes go through a temp file and a
// rename so a crashed save never leaves a truncated collection behind.
type FilePersister struct {
	dir string
}

func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

func (f *FilePersister) LoadUsers(_ context.Context) ([]entity.User, error) {
	var records []userRecord
	if err := f.load(usersFile, &records); err != nil {
		return nil, err
	}
	return fromUserRecords(records), nil
}

func (f *FilePersister) SaveUsers(_ context.Context, users []entity.User) error {
	return f.save(usersFile, toUserRecords(users))
}

func (f *FilePersister) LoadBooks(_ context.Context) ([]entity.Book, error) {
	var books []entity.Book
	if err := f.load(booksFile, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (f *FilePersister) SaveBooks(_ context.Context, books []entity.Book) error {
	return f.save(booksFile, books)
}

func (f *FilePersister) load(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (f *FilePersister) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(f.dir, name)
	tmp, err := os.CreateTemp(f.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
