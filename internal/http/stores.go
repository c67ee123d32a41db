package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/pagination"
	"github.com/mrlokans/library-catalog/internal/services"
	"github.com/mrlokans/library-catalog/internal/tasks"
)

// This file collects the interfaces HTTP controllers depend on.
// Each controller takes only the capability it needs.

// Catalog is the book service behind /api/books. *services.CatalogService implements it.
type Catalog interface {
	Create(ctx context.Context, book entities.Book) (entities.Book, error)
	List(ctx context.Context) ([]entities.Book, error)
	Get(ctx context.Context, id uint) (entities.Book, bool, error)
	Update(ctx context.Context, id uint, patch entities.Book) (entities.Book, error)
	Delete(ctx context.Context, id uint) error
	SearchIn(ctx context.Context, term string, field services.SearchField) ([]entities.Book, error)
	ListPaginated(ctx context.Context, req pagination.Request) (pagination.Page[entities.Book], error)
	SearchPaginated(ctx context.Context, term string, req pagination.Request) (pagination.Page[entities.Book], error)
}

// SnapshotQueue enqueues catalog exports and reports their progress.
// *tasks.Client implements it.
type SnapshotQueue interface {
	EnqueueExport(ctx context.Context, format string) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Pinger reports whether a backing dependency is reachable.
// *database.Database and *tasks.Client implement it; a SnapshotQueue that
// is also a Pinger is reported by /health as "task_queue".
type Pinger interface {
	Ping() error
}

var (
	_ Catalog       = (*services.CatalogService)(nil)
	_ SnapshotQueue = (*tasks.Client)(nil)
	_ Pinger        = (*tasks.Client)(nil)
)
