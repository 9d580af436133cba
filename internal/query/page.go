package query

// Pagination defaults applied when the caller omits or mangles the values.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	maxLimit     = 100
)

// PageRequest is a 1-based page window over a filtered, sorted result set.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize replaces invalid or missing values with the defaults and caps the
// window size.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset returns the number of rows to skip for this window.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is the envelope returned by every paginated read. Totals are computed
// against the filtered set before windowing, so a page beyond the end still
// reports accurate counts with an empty item slice.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPage assembles the envelope for a window of items out of total matches.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}

	totalPages := total / int64(req.Limit)
	if total%int64(req.Limit) != 0 {
		totalPages++
	}

	return Page[T]{
		Items:      items,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    int64(req.Page) < totalPages,
		HasPrev:    req.Page > 1 && total > 0,
	}
}
