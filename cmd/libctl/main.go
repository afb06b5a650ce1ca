// libctl is the operator-side tool: it provisions admin accounts, promotes
// members, and seeds a starter catalog. It works through the same store as
// the server, so every write honors the lending invariants and lands in
// whichever backend the environment selects.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/entity"
	"libraryapi/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load(".env.local")

	root := &cobra.Command{
		Use:           "libctl",
		Short:         "Administrative tool for the library lending service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(createAdminCmd(), promoteCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func createAdminCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a new account with the admin role",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			var created entity.User
			err = st.Update(cmd.Context(), func(tx *store.Tx) error {
				if tx.UserByUsername(username) != nil {
					return errors.New("username already taken")
				}
				u := tx.AddUser(entity.User{
					Username:      username,
					PasswordHash:  hash,
					Role:          entity.RoleAdmin,
					BorrowedBooks: []int64{},
					CreatedAt:     time.Now().UTC(),
				})
				created = u.Clone()
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created admin %q (id %d)\n", created.Username, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username for the new admin")
	cmd.Flags().StringVar(&password, "password", "", "password for the new admin")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func promoteCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Promote an existing member to admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			err = st.Update(cmd.Context(), func(tx *store.Tx) error {
				u := tx.UserByUsername(username)
				if u == nil {
					return fmt.Errorf("user %q not found", username)
				}
				if u.Role == entity.RoleAdmin {
					return fmt.Errorf("user %q is already an admin", username)
				}
				u.Role = entity.RoleAdmin
				tx.TouchUsers()
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Printf("Promoted %q to admin\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username to promote")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a starter catalog into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if len(st.Books()) > 0 {
				return errors.New("catalog is not empty, refusing to seed")
			}

			starter := []entity.Book{
				{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction"},
				{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy"},
				{Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Classic"},
				{Title: "The Name of the Wind", Author: "Patrick Rothfuss", Genre: "Fantasy"},
				{Title: "A Brief History of Time", Author: "Stephen Hawking", Genre: "Science"},
			}

			err = st.Update(cmd.Context(), func(tx *store.Tx) error {
				now := time.Now().UTC()
				for _, b := range starter {
					b.Available = true
					b.CreatedAt = now
					b.UpdatedAt = now
					tx.AddBook(b)
				}
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Printf("Seeded %d books\n", len(starter))
			return nil
		},
	}
}

// openStore mirrors the server's backend selection: Postgres when DB_DSN is
// set, JSON files under DATA_DIR otherwise.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		st, err := store.Open(ctx, store.NewPostgresPersister(pool, 2*time.Second))
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return st, pool.Close, nil
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	persister, err := store.NewFilePersister(dataDir)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, persister)
	if err != nil {
		return nil, nil, err
	}
	return st, func() {}, nil
}
