// Package books provides database operations for the book catalog.
//
// This package implements the services.BookStore interface defined in
// internal/services/interfaces.go.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, found, err := repo.GetBookByID(ctx, 123)
package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/library-catalog/internal/database"
	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/pagination"
)

// ErrUnknownSortField is returned for sort fields outside entities.BookSortColumns.
var ErrUnknownSortField = errors.New("unknown sort field")

// updatableColumns are replaced wholesale on update; id and created_at never are.
var updatableColumns = []string{"title", "author", "isbn", "published_date", "updated_at"}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts book and writes the generated ID back into it.
// Any ID already set on book is discarded.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	book.ID = 0
	return r.db.WithContext(ctx).Create(book).Error
}

// GetBookByID looks up a single book. A missing row is reported through
// found=false, not through err.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (entities.Book, bool, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Book{}, false, nil
	}
	if err != nil {
		return entities.Book{}, false, err
	}
	return book, true, nil
}

// GetAllBooks returns every book in primary key order.
func (r *Repository) GetAllBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error
	return books, err
}

// UpdateBook replaces every mutable column of the row identified by book.ID.
// It reports found=false when no such row exists and never inserts.
func (r *Repository) UpdateBook(ctx context.Context, book *entities.Book) (bool, error) {
	if book.ID == 0 {
		return false, nil
	}
	result := r.db.WithContext(ctx).Model(book).Select(updatableColumns).Updates(book)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteBook removes the row with the given id, reporting whether it existed.
func (r *Repository) DeleteBook(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entities.Book{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SearchBooks searches books by title or author (case-insensitive partial match).
func (r *Repository) SearchBooks(ctx context.Context, term string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Scopes(matchTitleOrAuthor(term)).Order("id ASC").Find(&books).Error
	return books, err
}

// FindByTitle searches books by title only (case-insensitive partial match).
func (r *Repository) FindByTitle(ctx context.Context, term string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Scopes(matchColumn("title", term)).Order("id ASC").Find(&books).Error
	return books, err
}

// FindByAuthor searches books by author only (case-insensitive partial match).
func (r *Repository) FindByAuthor(ctx context.Context, term string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Scopes(matchColumn("author", term)).Order("id ASC").Find(&books).Error
	return books, err
}

// ListBooksPage returns one page of the full catalog and the total row count.
func (r *Repository) ListBooksPage(ctx context.Context, req pagination.Request) ([]entities.Book, int64, error) {
	return r.page(ctx, req, nil)
}

// SearchBooksPage returns one page of the title-or-author matches for term
// and the total number of matches.
func (r *Repository) SearchBooksPage(ctx context.Context, term string, req pagination.Request) ([]entities.Book, int64, error) {
	return r.page(ctx, req, matchTitleOrAuthor(term))
}

func (r *Repository) page(ctx context.Context, req pagination.Request, filter func(*gorm.DB) *gorm.DB) ([]entities.Book, int64, error) {
	order, err := orderBy(req)
	if err != nil {
		return nil, 0, err
	}

	// A fresh statement per query; gorm chains are not reusable after execution.
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&entities.Book{})
		if filter != nil {
			q = q.Scopes(filter)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	var books []entities.Book
	err = query().
		Clauses(order).
		Offset(req.Offset()).
		Limit(req.Limit()).
		Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("fetch books page: %w", err)
	}
	return books, total, nil
}

// orderBy sorts by the requested column, with id as a tiebreaker so that
// consecutive pages never overlap.
func orderBy(req pagination.Request) (clause.OrderBy, error) {
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = pagination.DefaultSortBy
	}
	column, ok := entities.BookSortColumns[sortBy]
	if !ok {
		return clause.OrderBy{}, fmt.Errorf("%w: %q", ErrUnknownSortField, sortBy)
	}

	columns := []clause.OrderByColumn{
		{Column: clause.Column{Name: column}, Desc: req.Descending()},
	}
	if column != "id" {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return clause.OrderBy{Columns: columns}, nil
}

func matchTitleOrAuthor(term string) func(*gorm.DB) *gorm.DB {
	pattern := likePattern(term)
	return func(db *gorm.DB) *gorm.DB {
		lower := database.LowerFunc(db)
		return db.Where(fmt.Sprintf(`%[1]s(title) LIKE ? ESCAPE '\' OR %[1]s(author) LIKE ? ESCAPE '\'`, lower), pattern, pattern)
	}
}

func matchColumn(column, term string) func(*gorm.DB) *gorm.DB {
	pattern := likePattern(term)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, database.LowerFunc(db), column), pattern)
	}
}

// likePattern lower-cases term with the same Unicode folding as
// database.LowerFunc and escapes LIKE wildcards so the match is a
// literal substring test.
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(term))
	return "%" + escaped + "%"
}
