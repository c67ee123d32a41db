// Package pagination describes windowed queries over the catalog: a request
// descriptor (page index, size, sort key and direction) and the page envelope
// returned to clients.
package pagination

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	DefaultPage   = 0
	DefaultSize   = 10
	DefaultSortBy = "id"
	MaxPageSize   = 100
)

// Direction is the sort order of a page request.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var (
	ErrNegativePage = errors.New("page must not be negative")
	ErrInvalidSize  = errors.New("size must be at least 1")
	ErrPageTooLarge = errors.New("page is out of range")
)

// ParseDirection accepts "asc" or "desc" in any case; empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q: expected asc or desc", s)
	}
}

// Request selects a zero-based page of Size records ordered by SortBy.
type Request struct {
	Page      int
	Size      int
	SortBy    string
	Direction Direction
}

// NewRequest returns a request with the documented defaults.
func NewRequest() Request {
	return Request{
		Page:      DefaultPage,
		Size:      DefaultSize,
		SortBy:    DefaultSortBy,
		Direction: Asc,
	}
}

// Validate rejects negative pages, non-positive sizes and pages whose
// offset would not fit in an int.
func (r Request) Validate() error {
	if r.Page < 0 {
		return ErrNegativePage
	}
	if r.Size < 1 {
		return ErrInvalidSize
	}
	if r.Page > math.MaxInt/min(r.Size, MaxPageSize) {
		return ErrPageTooLarge
	}
	return nil
}

// Normalize fills empty sort fields and clamps oversized pages.
func (r Request) Normalize() Request {
	if r.SortBy == "" {
		r.SortBy = DefaultSortBy
	}
	if r.Direction == "" {
		r.Direction = Asc
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	return r
}

// Offset is the number of records skipped before the page starts.
func (r Request) Offset() int {
	return r.Page * r.Size
}

// Limit is the maximum number of records in the page.
func (r Request) Limit() int {
	return r.Size
}

// Descending reports whether the page is ordered high to low.
func (r Request) Descending() bool {
	return r.Direction == Desc
}

// Page is one window of a query result plus the totals needed for paging UI.
type Page[T any] struct {
	Items      []T       `json:"items"`
	TotalCount int64     `json:"totalCount"`
	TotalPages int       `json:"totalPages"`
	PageIndex  int       `json:"pageIndex"`
	PageSize   int       `json:"pageSize"`
	SortBy     string    `json:"sortBy"`
	Direction  Direction `json:"direction"`
}

// NewPage builds the envelope for items fetched with req out of total matches.
func NewPage[T any](items []T, total int64, req Request) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		TotalCount: total,
		TotalPages: TotalPages(total, req.Size),
		PageIndex:  req.Page,
		PageSize:   req.Size,
		SortBy:     req.SortBy,
		Direction:  req.Direction,
	}
}

// TotalPages is ceil(total/size), or 0 for an empty result.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// HasNext reports whether another page follows this one.
func (p Page[T]) HasNext() bool {
	return p.PageIndex+1 < p.TotalPages
}

// HasPrevious reports whether this is not the first page.
func (p Page[T]) HasPrevious() bool {
	return p.PageIndex > 0
}
