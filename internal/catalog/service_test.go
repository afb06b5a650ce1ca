package catalog_test

import (
	"context"
	"testing"

	"libraryapi/internal/catalog"
	"libraryapi/internal/entity"
	"libraryapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	st, p := testutil.NewStore(t, nil, nil)
	svc := catalog.NewService(st)

	book, err := svc.Create(context.Background(), "Dune", "Frank Herbert", "Science Fiction")
	require.NoError(t, err)

	assert.Equal(t, int64(1), book.ID)
	assert.True(t, book.Available)
	assert.Zero(t, book.BorrowedBy)
	assert.Equal(t, 1, p.SaveBooksCalls)
}

func TestList_InsertionOrder(t *testing.T) {
	st, _ := testutil.NewStore(t, nil, nil)
	svc := catalog.NewService(st)
	ctx := context.Background()

	for _, title := range []string{"Dune", "The Hobbit", "Emma"} {
		_, err := svc.Create(ctx, title, "Author", "Genre")
		require.NoError(t, err)
	}

	books := svc.List(ctx)
	require.Len(t, books, 3)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "The Hobbit", books[1].Title)
	assert.Equal(t, "Emma", books[2].Title)
}

func TestUpdate_PartialFields(t *testing.T) {
	st, _ := testutil.NewStore(t, nil, []entity.Book{testutil.AvailableBook(1, "Dune")})
	svc := catalog.NewService(st)

	updated, err := svc.Update(context.Background(), 1, catalog.UpdateParams{Genre: "Classic SF"})
	require.NoError(t, err)

	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "Test Author", updated.Author)
	assert.Equal(t, "Classic SF", updated.Genre)
}

func TestUpdate_CannotTouchAvailability(t *testing.T) {
	st, _ := testutil.NewStore(t,
		[]entity.User{func() entity.User {
			u := testutil.Member(1, "alice")
			u.BorrowedBooks = []int64{1}
			return u
		}()},
		[]entity.Book{testutil.BorrowedBook(1, "Dune", 1)},
	)
	svc := catalog.NewService(st)

	updated, err := svc.Update(context.Background(), 1, catalog.UpdateParams{Title: "Dune (1965)"})
	require.NoError(t, err)

	// Metadata changed; the lending state did not.
	assert.Equal(t, "Dune (1965)", updated.Title)
	assert.False(t, updated.Available)
	assert.Equal(t, int64(1), updated.BorrowedBy)
}

func TestUpdate_NotFound(t *testing.T) {
	st, _ := testutil.NewStore(t, nil, nil)
	svc := catalog.NewService(st)

	_, err := svc.Update(context.Background(), 99, catalog.UpdateParams{Title: "x"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRemove(t *testing.T) {
	st, _ := testutil.NewStore(t, nil, []entity.Book{testutil.AvailableBook(1, "Dune")})
	svc := catalog.NewService(st)

	require.NoError(t, svc.Remove(context.Background(), 1))
	assert.Empty(t, svc.List(context.Background()))
}

func TestRemove_NotFound(t *testing.T) {
	st, _ := testutil.NewStore(t, nil, nil)
	svc := catalog.NewService(st)

	assert.ErrorIs(t, svc.Remove(context.Background(), 99), catalog.ErrNotFound)
}

func TestRemove_BorrowedBookReconcilesBorrower(t *testing.T) {
	alice := testutil.Member(1, "alice")
	alice.BorrowedBooks = []int64{1, 2}
	st, p := testutil.NewStore(t,
		[]entity.User{alice},
		[]entity.Book{
			testutil.BorrowedBook(1, "Dune", 1),
			testutil.BorrowedBook(2, "The Hobbit", 1),
		},
	)
	svc := catalog.NewService(st)

	require.NoError(t, svc.Remove(context.Background(), 1))

	// No record may keep pointing at the removed book.
	u, ok := st.UserByID(1)
	require.True(t, ok)
	assert.Equal(t, []int64{2}, u.BorrowedBooks)

	// Both affected collections were persisted.
	assert.Equal(t, 1, p.SaveUsersCalls)
	assert.Equal(t, 1, p.SaveBooksCalls)
}
