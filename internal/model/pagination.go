package model

import (
	"errors"
	"math"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPageNumber keeps Offset from overflowing at MaxPageSize.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// DefaultPage is the first page with the default size.
func DefaultPage() Page {
	return Page{Number: 1, Size: DefaultPageSize}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Size
}

// InRange reports whether the page exists for a result set of count items.
// The first page always exists, even when empty.
func (p Page) InRange(count int) bool {
	if p.Number < 1 || p.Number > MaxPageNumber {
		return false
	}
	return p.Number == 1 || p.Offset() < count
}

// HasNext reports whether another page follows for count items.
func (p Page) HasNext(count int) bool {
	return p.Offset()+p.Size < count
}

// Paginated is the list envelope: {count, next, previous, results}.
type Paginated[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

var ErrInvalidPage = errors.New("Invalid page.")
