package shared

// Filter carries common pagination and ordering options for list queries
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// Limit returns the page size, defaulting to 20 and capping at 100
func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// Offset returns the row offset for the requested page
func (f Filter) Offset() int {
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

// Paginated wraps a page of results with the total row count
type Paginated[T any] struct {
	Items []T
	Total int64
}
