// Package client is a typed HTTP client for the catalog API.
//
// Every call takes a context. Non-2xx answers surface as *NotFoundError or
// *UnexpectedStatusError; network and decoding failures as *TransportError.
// A 204 from the list and search endpoints is an empty result, not an error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/pagination"
)

const (
	booksPath      = "/api/books"
	defaultTimeout = 10 * time.Second
	userAgent      = "library-catalog-client/1.0"
)

// Client calls a running catalog server.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the server at baseURL. A nil httpClient
// gets a default with a 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// FromConfig creates a client from application settings.
func FromConfig(cfg config.Client) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClient(cfg.BaseURL, &http.Client{Timeout: timeout})
}

// Create stores book on the server and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, book entities.Book) (entities.Book, error) {
	const op = "create book"

	resp, err := c.do(ctx, op, http.MethodPost, booksPath, nil, book)
	if err != nil {
		return entities.Book{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return entities.Book{}, unexpected(op, resp)
	}
	return decode[entities.Book](op, resp)
}

// List returns every book.
func (c *Client) List(ctx context.Context) ([]entities.Book, error) {
	return c.collection(ctx, "list books", booksPath, nil)
}

// Get returns the book with the given id or a *NotFoundError.
func (c *Client) Get(ctx context.Context, id uint) (entities.Book, error) {
	const op = "get book"

	resp, err := c.do(ctx, op, http.MethodGet, bookPath(id), nil, nil)
	if err != nil {
		return entities.Book{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return decode[entities.Book](op, resp)
	case http.StatusNotFound:
		return entities.Book{}, &NotFoundError{ID: id}
	default:
		return entities.Book{}, unexpected(op, resp)
	}
}

// Update replaces the fields of book id and returns the stored record.
func (c *Client) Update(ctx context.Context, id uint, book entities.Book) (entities.Book, error) {
	const op = "update book"

	resp, err := c.do(ctx, op, http.MethodPut, bookPath(id), nil, book)
	if err != nil {
		return entities.Book{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return decode[entities.Book](op, resp)
	case http.StatusNotFound:
		return entities.Book{}, &NotFoundError{ID: id}
	default:
		return entities.Book{}, unexpected(op, resp)
	}
}

// Delete removes book id.
func (c *Client) Delete(ctx context.Context, id uint) error {
	const op = "delete book"

	resp, err := c.do(ctx, op, http.MethodDelete, bookPath(id), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &NotFoundError{ID: id}
	default:
		return unexpected(op, resp)
	}
}

// Search returns books whose title or author contains term.
func (c *Client) Search(ctx context.Context, term string) ([]entities.Book, error) {
	return c.SearchIn(ctx, term, "")
}

// SearchIn restricts Search to "title" or "author"; empty means both.
func (c *Client) SearchIn(ctx context.Context, term, field string) ([]entities.Book, error) {
	query := url.Values{"q": {term}}
	if field != "" {
		query.Set("field", field)
	}
	return c.collection(ctx, "search books", booksPath+"/search", query)
}

// ListPaginated returns one page of the catalog.
func (c *Client) ListPaginated(ctx context.Context, req pagination.Request) (pagination.Page[entities.Book], error) {
	return c.page(ctx, "list books page", booksPath+"/paginated", pageQuery(req))
}

// SearchPaginated returns one page of the books matching term.
func (c *Client) SearchPaginated(ctx context.Context, term string, req pagination.Request) (pagination.Page[entities.Book], error) {
	query := pageQuery(req)
	query.Set("q", term)
	return c.page(ctx, "search books page", booksPath+"/search/paginated", query)
}

func (c *Client) collection(ctx context.Context, op, path string, query url.Values) ([]entities.Book, error) {
	resp, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		books, err := decode[[]entities.Book](op, resp)
		if err != nil {
			return nil, err
		}
		if books == nil {
			books = []entities.Book{}
		}
		return books, nil
	case http.StatusNoContent:
		return []entities.Book{}, nil
	default:
		return nil, unexpected(op, resp)
	}
}

func (c *Client) page(ctx context.Context, op, path string, query url.Values) (pagination.Page[entities.Book], error) {
	resp, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return pagination.Page[entities.Book]{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pagination.Page[entities.Book]{}, unexpected(op, resp)
	}
	page, err := decode[pagination.Page[entities.Book]](op, resp)
	if err != nil {
		return pagination.Page[entities.Book]{}, err
	}
	if page.Items == nil {
		page.Items = []entities.Book{}
	}
	return page, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return resp, nil
}

func decode[T any](op string, resp *http.Response) (T, error) {
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return v, nil
}

// unexpected builds an *UnexpectedStatusError, keeping the server's error
// text when the body is a JSON error object.
func unexpected(op string, resp *http.Response) error {
	err := &UnexpectedStatusError{Op: op, StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil && len(data) > 0 {
		if json.Unmarshal(data, &body) == nil {
			err.Message = body.Error
		}
	}
	return err
}

func bookPath(id uint) string {
	return booksPath + "/" + strconv.FormatUint(uint64(id), 10)
}

func pageQuery(req pagination.Request) url.Values {
	query := url.Values{
		"page": {strconv.Itoa(req.Page)},
		"size": {strconv.Itoa(req.Size)},
	}
	if req.SortBy != "" {
		query.Set("sortBy", req.SortBy)
	}
	if req.Direction != "" {
		query.Set("direction", string(req.Direction))
	}
	return query
}
