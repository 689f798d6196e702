package domain

import (
	"math"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is the pagination/search contract shared by every list endpoint.
type PageRequest struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// Normalize clamps page and limit to sane values.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	// keeps (Page-1)*Limit from overflowing; such a page is empty anyway
	if maxPage := math.MaxInt / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
	p.Search = strings.TrimSpace(p.Search)
	p.Status = strings.ToUpper(strings.TrimSpace(p.Status))
	return p
}

// Offset returns the row offset of the page.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Page is one slice of a list plus the total count across all pages.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// TotalPages returns the number of pages for the reported total.
func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}
