package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library-catalog/internal/database"
	"github.com/mrlokans/library-catalog/internal/database/books"
	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/pagination"
)

var _ BookStore = (*books.Repository)(nil)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateBook(ctx context.Context, book *entities.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *mockStore) GetBookByID(ctx context.Context, id uint) (entities.Book, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(entities.Book), args.Bool(1), args.Error(2)
}

func (m *mockStore) GetAllBooks(ctx context.Context) ([]entities.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Book), args.Error(1)
}

func (m *mockStore) UpdateBook(ctx context.Context, book *entities.Book) (bool, error) {
	args := m.Called(ctx, book)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) DeleteBook(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) SearchBooks(ctx context.Context, term string) ([]entities.Book, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Book), args.Error(1)
}

func (m *mockStore) FindByTitle(ctx context.Context, term string) ([]entities.Book, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Book), args.Error(1)
}

func (m *mockStore) FindByAuthor(ctx context.Context, term string) ([]entities.Book, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Book), args.Error(1)
}

func (m *mockStore) ListBooksPage(ctx context.Context, req pagination.Request) ([]entities.Book, int64, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.Book), args.Get(1).(int64), args.Error(2)
}

func (m *mockStore) SearchBooksPage(ctx context.Context, term string, req pagination.Request) ([]entities.Book, int64, error) {
	args := m.Called(ctx, term, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.Book), args.Get(1).(int64), args.Error(2)
}

func setupCatalog(t *testing.T, name string) *CatalogService {
	t.Helper()
	dbPath := "./test_catalog_" + name + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return NewCatalogService(books.NewRepository(db.DB))
}

func TestCatalogService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t, "crud")

	created, err := svc.Create(ctx, entities.Book{
		ID:            42,
		Title:         "Dune",
		Author:        "Frank Herbert",
		ISBN:          "9780441013593",
		PublishedDate: entities.MustParseDate("1965-08-01").Ptr(),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, uint(42), created.ID, "caller-supplied id must be ignored")

	got, found, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "1965-08-01", got.PublishedDate.String())

	updated, err := svc.Update(ctx, created.ID, entities.Book{Title: "Dune Messiah", Author: "Frank Herbert"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Dune Messiah", updated.Title)

	got, _, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Empty(t, got.ISBN)
	assert.Nil(t, got.PublishedDate)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, found, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCatalogService_MissingBook(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t, "missing")

	t.Run("get", func(t *testing.T) {
		_, found, err := svc.Get(ctx, 999)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("update does not create", func(t *testing.T) {
		_, err := svc.Update(ctx, 999, entities.Book{Title: "Ghost"})
		assert.ErrorIs(t, err, ErrNotFound)

		all, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, 999), ErrNotFound)
	})
}

func TestCatalogService_SearchIn(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t, "search")

	for _, b := range []entities.Book{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "Children of Dune", Author: "Frank Herbert"},
		{Title: "Neuromancer", Author: "William Gibson"},
		{Title: "Frankenstein", Author: "Mary Shelley"},
	} {
		_, err := svc.Create(ctx, b)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		term  string
		field SearchField
		want  []string
	}{
		{"title or author", "frank", SearchTitleOrAuthor, []string{"Dune", "Children of Dune", "Frankenstein"}},
		{"title only", "frank", SearchTitle, []string{"Frankenstein"}},
		{"author only", "frank", SearchAuthor, []string{"Dune", "Children of Dune"}},
		{"no match", "tolkien", SearchTitleOrAuthor, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.SearchIn(ctx, tt.term, tt.field)
			require.NoError(t, err)

			var titles []string
			for _, b := range result {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestCatalogService_ListPaginated(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t, "paginated")

	for _, title := range []string{"E", "D", "C", "B", "A"} {
		_, err := svc.Create(ctx, entities.Book{Title: title, Author: "Anon"})
		require.NoError(t, err)
	}

	t.Run("sorted page", func(t *testing.T) {
		page, err := svc.ListPaginated(ctx, pagination.Request{Page: 1, Size: 2, SortBy: "title"})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "C", page.Items[0].Title)
		assert.Equal(t, "D", page.Items[1].Title)
		assert.Equal(t, int64(5), page.TotalCount)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, pagination.Asc, page.Direction)
	})

	t.Run("past the end", func(t *testing.T) {
		page, err := svc.ListPaginated(ctx, pagination.Request{Page: 10, Size: 2})
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(5), page.TotalCount)
	})

	t.Run("oversized page is clamped", func(t *testing.T) {
		page, err := svc.ListPaginated(ctx, pagination.Request{Size: 1000})
		require.NoError(t, err)
		assert.Equal(t, pagination.MaxPageSize, page.PageSize)
		assert.Len(t, page.Items, 5)
	})

	t.Run("invalid requests", func(t *testing.T) {
		for _, req := range []pagination.Request{
			{Page: -1, Size: 10},
			{Page: 0, Size: 0},
			{Page: 0, Size: 10, SortBy: "password"},
		} {
			_, err := svc.ListPaginated(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidPageRequest, "request %+v", req)
		}
	})
}

func TestCatalogService_SearchPaginated(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t, "search_paginated")

	for _, title := range []string{"Go in Action", "Learning Go", "Rust in Action", "The Go Programming Language"} {
		_, err := svc.Create(ctx, entities.Book{Title: title, Author: "Anon"})
		require.NoError(t, err)
	}

	page, err := svc.SearchPaginated(ctx, "go", pagination.Request{Page: 0, Size: 2, SortBy: "title", Direction: pagination.Desc})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "The Go Programming Language", page.Items[0].Title)
	assert.Equal(t, "Learning Go", page.Items[1].Title)
}

func TestCatalogService_StoreFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")

	t.Run("create", func(t *testing.T) {
		store := new(mockStore)
		store.On("CreateBook", ctx, mock.Anything).Return(boom)

		_, err := NewCatalogService(store).Create(ctx, entities.Book{Title: "X"})
		assert.ErrorIs(t, err, boom)
		store.AssertExpectations(t)
	})

	t.Run("update error is not reported as not found", func(t *testing.T) {
		store := new(mockStore)
		store.On("UpdateBook", ctx, mock.Anything).Return(false, boom)

		_, err := NewCatalogService(store).Update(ctx, 1, entities.Book{Title: "X"})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		store := new(mockStore)
		store.On("DeleteBook", ctx, uint(1)).Return(false, boom)

		err := NewCatalogService(store).Delete(ctx, 1)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("search", func(t *testing.T) {
		store := new(mockStore)
		store.On("FindByAuthor", ctx, "herbert").Return(nil, boom)

		_, err := NewCatalogService(store).SearchIn(ctx, "herbert", SearchAuthor)
		assert.ErrorIs(t, err, boom)
		store.AssertNotCalled(t, "SearchBooks", mock.Anything, mock.Anything)
	})

	t.Run("paginated", func(t *testing.T) {
		store := new(mockStore)
		store.On("ListBooksPage", ctx, mock.Anything).Return(nil, int64(0), boom)

		_, err := NewCatalogService(store).ListPaginated(ctx, pagination.NewRequest())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid page never reaches the store", func(t *testing.T) {
		store := new(mockStore)

		_, err := NewCatalogService(store).SearchPaginated(ctx, "x", pagination.Request{Page: -3, Size: 5})
		assert.ErrorIs(t, err, ErrInvalidPageRequest)
		store.AssertNotCalled(t, "SearchBooksPage", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestParseSearchField(t *testing.T) {
	for _, in := range []string{"", "title", "author"} {
		f, err := ParseSearchField(in)
		require.NoError(t, err)
		assert.Equal(t, SearchField(in), f)
	}

	_, err := ParseSearchField("isbn")
	assert.Error(t, err)
}
