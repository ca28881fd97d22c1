package store

// Pagination defaults mirrored by the HTTP layer.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// SortDirection orders a paginated result set.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageRequest describes one requested page of a larger result set.
// Number is zero-based. SortBy names an entity field; implementations
// must whitelist it before interpolating into a query.
type PageRequest struct {
	Number  int
	Size    int
	SortBy  string
	SortDir SortDirection
}

// NewPageRequest clamps the given parameters to sane bounds and fills
// in defaults for missing values.
func NewPageRequest(number, size int, sortBy string, dir SortDirection) PageRequest {
	if number < 0 {
		number = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if sortBy == "" {
		sortBy = "id"
	}
	if dir != SortDesc {
		dir = SortAsc
	}
	return PageRequest{Number: number, Size: size, SortBy: sortBy, SortDir: dir}
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

// Page is one page of results together with total-count metadata.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
}

// NewPage assembles a Page from a slice of content, the originating
// request, and the total number of matching elements.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Number:        req.Number,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         req.Number == 0,
		Last:          req.Number >= totalPages-1,
	}
}

// Map converts a Page of one element type into a Page of another,
// preserving all pagination metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	content := make([]U, len(p.Content))
	for i, item := range p.Content {
		content[i] = fn(item)
	}
	return Page[U]{
		Content:       content,
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
	}
}
