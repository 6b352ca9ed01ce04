package pagination

import (
	"net/http"
	"strconv"
)

// Page size bounds shared by the catalog client and the catalog stub.
const (
	DefaultSize = 10
	MaxSize     = 100
)

// Params holds pagination parameters extracted from query strings.
// Page is 0-based.
type Params struct {
	Page   int `json:"page"`
	Size   int `json:"size"`
	Offset int `json:"-"`
}

// DefaultParams returns the first page with the default size.
func DefaultParams() Params {
	return Params{
		Page:   0,
		Size:   DefaultSize,
		Offset: 0,
	}
}

// FromRequest extracts pagination parameters from an HTTP request.
// Out of range values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v >= 0 {
			p.Page = v
		}
	}

	if size := r.URL.Query().Get("size"); size != "" {
		if v, err := strconv.Atoi(size); err == nil && v > 0 && v <= MaxSize {
			p.Size = v
		}
	}

	p.Offset = p.Page * p.Size
	return p
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	Last          bool `json:"last"`
}

// NewPage builds the page described by params over a result set of
// totalElements items, content being the items on that page.
func NewPage[T any](content []T, totalElements int, params Params) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := TotalPages(totalElements, params.Size)

	return Page[T]{
		Content:       content,
		TotalElements: totalElements,
		TotalPages:    totalPages,
		Number:        params.Page,
		Size:          params.Size,
		Last:          params.Page >= totalPages-1,
	}
}

// Slice cuts the page described by params out of items.
func Slice[T any](items []T, params Params) Page[T] {
	start := params.Page * params.Size
	if start > len(items) {
		start = len(items)
	}
	end := start + params.Size
	if end > len(items) {
		end = len(items)
	}

	content := make([]T, end-start)
	copy(content, items[start:end])
	return NewPage(content, len(items), params)
}

// TotalPages returns the number of pages needed for total items of the given size.
func TotalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	pages := total / size
	if total%size > 0 {
		pages++
	}
	return pages
}

// HasMore reports whether another page can be requested after p.
func (p Page[T]) HasMore() bool {
	return !p.Last
}

// Consistent reports whether the Last flag agrees with Number and TotalPages.
// Empty result sets are always consistent.
func (p Page[T]) Consistent() bool {
	if p.TotalElements == 0 {
		return true
	}
	return p.Last == (p.Number == p.TotalPages-1)
}

// Map converts the page content with fn, keeping the paging metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	content := make([]U, len(p.Content))
	for i, item := range p.Content {
		content[i] = fn(item)
	}
	return Page[U]{
		Content:       content,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Number:        p.Number,
		Size:          p.Size,
		Last:          p.Last,
	}
}
