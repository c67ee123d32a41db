package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/services"
)

// BooksController serves the /api/books resource.
//
// Empty collections from the list and search endpoints are answered with a
// bodiless 204; the paginated endpoints always answer 200 with a page.
type BooksController struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewBooksController(catalog Catalog, logger *zap.Logger) *BooksController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BooksController{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes mounts the controller under group.
func (bc *BooksController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("", bc.CreateBook)
	group.GET("", bc.ListBooks)
	group.GET("/search", bc.SearchBooks)
	group.GET("/search/paginated", bc.SearchBooksPaginated)
	group.GET("/paginated", bc.ListBooksPaginated)
	group.GET("/:id", bc.GetBook)
	group.PUT("/:id", bc.UpdateBook)
	group.DELETE("/:id", bc.DeleteBook)
}

// CreateBook handles POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	book, ok := bindBook(c)
	if !ok {
		return
	}

	created, err := bc.catalog.Create(c.Request.Context(), book)
	if err != nil {
		respondInternalError(c, bc.logger, err, "create book")
		return
	}
	respondCreated(c, created)
}

// ListBooks handles GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	books, err := bc.catalog.List(c.Request.Context())
	if err != nil {
		respondInternalError(c, bc.logger, err, "list books")
		return
	}
	respondCollection(c, books)
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, found, err := bc.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, bc.logger, err, "get book")
		return
	}
	if !found {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBook handles PUT /api/books/:id
// Title, author, isbn and published date are replaced wholesale.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	patch, ok := bindBook(c)
	if !ok {
		return
	}

	updated, err := bc.catalog.Update(c.Request.Context(), id, patch)
	if errors.Is(err, services.ErrNotFound) {
		respondNotFound(c)
		return
	}
	if err != nil {
		respondInternalError(c, bc.logger, err, "update book")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteBook handles DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := bc.catalog.Delete(c.Request.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		respondNotFound(c)
		return
	}
	if err != nil {
		respondInternalError(c, bc.logger, err, "delete book")
		return
	}
	respondNoContent(c)
}

// SearchBooks handles GET /api/books/search?q=<term>[&field=title|author]
// An empty q matches every book; a missing q is rejected.
func (bc *BooksController) SearchBooks(c *gin.Context) {
	term, ok := c.GetQuery("q")
	if !ok {
		respondBadRequest(c, "missing_query", "query parameter q is required")
		return
	}
	field, err := services.ParseSearchField(c.Query("field"))
	if err != nil {
		respondBadRequest(c, "invalid_field", err.Error())
		return
	}

	books, err := bc.catalog.SearchIn(c.Request.Context(), term, field)
	if err != nil {
		respondInternalError(c, bc.logger, err, "search books")
		return
	}
	respondCollection(c, books)
}

// ListBooksPaginated handles GET /api/books/paginated
func (bc *BooksController) ListBooksPaginated(c *gin.Context) {
	req, ok := parsePageRequest(c)
	if !ok {
		return
	}

	page, err := bc.catalog.ListPaginated(c.Request.Context(), req)
	if errors.Is(err, services.ErrInvalidPageRequest) {
		respondBadRequest(c, "invalid_page_request", err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, bc.logger, err, "list books page")
		return
	}
	c.JSON(http.StatusOK, page)
}

// SearchBooksPaginated handles GET /api/books/search/paginated?q=<term>
// A missing q is treated as the empty term.
func (bc *BooksController) SearchBooksPaginated(c *gin.Context) {
	req, ok := parsePageRequest(c)
	if !ok {
		return
	}

	page, err := bc.catalog.SearchPaginated(c.Request.Context(), c.Query("q"), req)
	if errors.Is(err, services.ErrInvalidPageRequest) {
		respondBadRequest(c, "invalid_page_request", err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, bc.logger, err, "search books page")
		return
	}
	c.JSON(http.StatusOK, page)
}

func bindBook(c *gin.Context) (entities.Book, bool) {
	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid_body", "invalid book payload: "+err.Error())
		return entities.Book{}, false
	}
	return book, true
}

func respondCollection(c *gin.Context, books []entities.Book) {
	if len(books) == 0 {
		respondNoContent(c)
		return
	}
	c.JSON(http.StatusOK, books)
}
