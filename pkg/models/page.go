package models

// SearchPageSize is the number of results per search page.
const SearchPageSize = 12

// Page is one page of search results.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// NewPage builds a Page from one slice of results and the total match count.
func NewPage[T any](items []T, page, perPage, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: page*perPage < total,
		HasPrev: page > 1,
	}
}

// Offset returns the row offset for a 1-based page number. Pages below 1 are
// treated as page 1.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
