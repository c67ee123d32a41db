package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/pagination"
)

var (
	// ErrNotFound indicates the operation targeted an id with no book.
	ErrNotFound = errors.New("book not found")

	// ErrInvalidPageRequest wraps malformed pagination input (bad page,
	// size, or sort field).
	ErrInvalidPageRequest = errors.New("invalid page request")
)

// SearchField restricts which columns a search term is matched against.
type SearchField string

const (
	SearchTitleOrAuthor SearchField = ""
	SearchTitle         SearchField = "title"
	SearchAuthor        SearchField = "author"
)

// ParseSearchField accepts "", "title" or "author".
func ParseSearchField(s string) (SearchField, error) {
	switch f := SearchField(s); f {
	case SearchTitleOrAuthor, SearchTitle, SearchAuthor:
		return f, nil
	default:
		return "", fmt.Errorf("unknown search field %q: expected title or author", s)
	}
}

// CatalogService mediates between the API and the book store. It adds the
// "book must exist" rule to update and delete and validates page requests;
// everything else is passed straight through.
//
// There is no concurrency control: concurrent updates to the same id are
// last-write-wins.
type CatalogService struct {
	store BookStore
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store BookStore) *CatalogService {
	return &CatalogService{store: store}
}

// Create stores a new book and returns it with its assigned ID.
// Any ID on the input is ignored.
func (s *CatalogService) Create(ctx context.Context, book entities.Book) (entities.Book, error) {
	book.ID = 0
	if err := s.store.CreateBook(ctx, &book); err != nil {
		return entities.Book{}, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// List returns every book in the store's natural order.
func (s *CatalogService) List(ctx context.Context) ([]entities.Book, error) {
	books, err := s.store.GetAllBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Get returns the book with the given id; found is false if there is none.
func (s *CatalogService) Get(ctx context.Context, id uint) (entities.Book, bool, error) {
	book, found, err := s.store.GetBookByID(ctx, id)
	if err != nil {
		return entities.Book{}, false, fmt.Errorf("get book %d: %w", id, err)
	}
	return book, found, nil
}

// Update replaces title, author, isbn and published date of book id with
// the values in patch. Returns ErrNotFound if id does not exist.
func (s *CatalogService) Update(ctx context.Context, id uint, patch entities.Book) (entities.Book, error) {
	book := entities.Book{
		ID:            id,
		Title:         patch.Title,
		Author:        patch.Author,
		ISBN:          patch.ISBN,
		PublishedDate: patch.PublishedDate,
	}

	found, err := s.store.UpdateBook(ctx, &book)
	if err != nil {
		return entities.Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	if !found {
		return entities.Book{}, fmt.Errorf("update book %d: %w", id, ErrNotFound)
	}
	return book, nil
}

// Delete removes book id. Returns ErrNotFound if it does not exist.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.store.DeleteBook(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("delete book %d: %w", id, ErrNotFound)
	}
	return nil
}

// Search returns books whose title or author contains term, ignoring case.
// An empty term matches every book.
func (s *CatalogService) Search(ctx context.Context, term string) ([]entities.Book, error) {
	return s.SearchIn(ctx, term, SearchTitleOrAuthor)
}

// SearchIn is Search restricted to a single field.
func (s *CatalogService) SearchIn(ctx context.Context, term string, field SearchField) ([]entities.Book, error) {
	var (
		books []entities.Book
		err   error
	)
	switch field {
	case SearchTitle:
		books, err = s.store.FindByTitle(ctx, term)
	case SearchAuthor:
		books, err = s.store.FindByAuthor(ctx, term)
	default:
		books, err = s.store.SearchBooks(ctx, term)
	}
	if err != nil {
		return nil, fmt.Errorf("search books %q: %w", term, err)
	}
	return books, nil
}

// ListPaginated returns one page of the catalog ordered by req.SortBy.
func (s *CatalogService) ListPaginated(ctx context.Context, req pagination.Request) (pagination.Page[entities.Book], error) {
	req, err := prepare(req)
	if err != nil {
		return pagination.Page[entities.Book]{}, err
	}

	books, total, err := s.store.ListBooksPage(ctx, req)
	if err != nil {
		return pagination.Page[entities.Book]{}, fmt.Errorf("list books page: %w", err)
	}
	return pagination.NewPage(books, total, req), nil
}

// SearchPaginated returns one page of Search(term).
func (s *CatalogService) SearchPaginated(ctx context.Context, term string, req pagination.Request) (pagination.Page[entities.Book], error) {
	req, err := prepare(req)
	if err != nil {
		return pagination.Page[entities.Book]{}, err
	}

	books, total, err := s.store.SearchBooksPage(ctx, term, req)
	if err != nil {
		return pagination.Page[entities.Book]{}, fmt.Errorf("search books page %q: %w", term, err)
	}
	return pagination.NewPage(books, total, req), nil
}

func prepare(req pagination.Request) (pagination.Request, error) {
	if err := req.Validate(); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidPageRequest, err)
	}
	req = req.Normalize()
	if _, ok := entities.BookSortColumns[req.SortBy]; !ok {
		return req, fmt.Errorf("%w: unknown sort field %q", ErrInvalidPageRequest, req.SortBy)
	}
	return req, nil
}

var _ BookLister = (*CatalogService)(nil)
