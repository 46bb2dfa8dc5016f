package pagination

// DefaultLimit is used when a caller asks for a non-positive page size.
const DefaultLimit = 10

// Result is one page of a list, whatever envelope the server used.
//
// Invariants: Page >= 1, Limit >= 1, len(Items) <= Limit, and Total == 0
// implies Items is empty.
type Result[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Empty returns a page with no items for the given request.
func Empty[T any](page, limit int) Result[T] {
	page, limit = clampRequest(page, limit)
	return Result[T]{
		Items: []T{},
		Page:  page,
		Limit: limit,
	}
}

func (r Result[T]) HasNext() bool {
	return r.Page < r.TotalPages
}

func (r Result[T]) HasPrev() bool {
	return r.Page > 1
}

func clampRequest(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

func pageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total-1)/limit + 1
}
