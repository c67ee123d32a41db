package services

import (
	"context"

	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/pagination"
)

// BookStore is the persistence contract the catalog service depends on.
// Absence of a row is reported through boolean results, never as an error.
type BookStore interface {
	CreateBook(ctx context.Context, book *entities.Book) error
	GetBookByID(ctx context.Context, id uint) (entities.Book, bool, error)
	GetAllBooks(ctx context.Context) ([]entities.Book, error)
	UpdateBook(ctx context.Context, book *entities.Book) (bool, error)
	DeleteBook(ctx context.Context, id uint) (bool, error)

	SearchBooks(ctx context.Context, term string) ([]entities.Book, error)
	FindByTitle(ctx context.Context, term string) ([]entities.Book, error)
	FindByAuthor(ctx context.Context, term string) ([]entities.Book, error)

	ListBooksPage(ctx context.Context, req pagination.Request) ([]entities.Book, int64, error)
	SearchBooksPage(ctx context.Context, term string, req pagination.Request) ([]entities.Book, int64, error)
}

// BookLister provides read-only access to the whole catalog.
// Use this interface when you only need to dump books (e.g. snapshots).
type BookLister interface {
	List(ctx context.Context) ([]entities.Book, error)
}
