package pagination

// Page is the list envelope returned by every paginated endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Normalize clamps page and size to sane bounds.
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return page, size
}

// Offset returns the row offset for a normalized page/size pair.
func Offset(page, size int) int {
	return (page - 1) * size
}

// New builds the envelope, computing the page count from total and size.
func New[T any](items []T, total, page, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return Page[T]{Items: items, Total: total, Page: page, Size: size, Pages: pages}
}
