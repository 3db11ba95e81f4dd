package models

import (
	"math"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100

	ListExcerptLength  = 150
	ByTagExcerptLength = 100
)

// Pagination is a page request after defaults and bounds are applied.
type Pagination struct {
	Page    int
	PerPage int
}

// NewPagination clamps page to >= 1 and perPage to [1, MaxPerPage],
// substituting defaultPerPage for non-positive values.
func NewPagination(page, perPage, defaultPerPage int) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// TotalPages is ceil(total / perPage).
func (p Pagination) TotalPages(total int64) int {
	if p.PerPage <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(p.PerPage)))
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Excerpt returns the first n runes of s followed by "..." when s is longer.
func Excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
