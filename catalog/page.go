package catalog

// Default page sizes for the catalog and wishlist screens.
const (
	CatalogPageSize  = 12
	WishlistPageSize = 4
)

// Page is one slice of a paginated sequence.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }

func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// Paginate returns page (1-based) of items. Page k holds items[(k-1)*size : min(k*size, len)).
// Pages outside 1..TotalPages and non-positive sizes yield no items.
func Paginate[T any](items []T, page, size int) Page[T] {
	p := Page[T]{Items: []T{}, Page: page, Size: size, TotalItems: len(items)}
	if size <= 0 {
		return p
	}
	p.TotalPages = (len(items) + size - 1) / size
	if page < 1 || page > p.TotalPages {
		return p
	}

	start := (page - 1) * size
	end := min(start+size, len(items))
	p.Items = append(p.Items, items[start:end]...)
	return p
}

// PageNumbers lays out the pager strip for total pages with current selected. Gaps are 0.
// Up to five pages are listed in full; beyond that the strip keeps the first and last
// page and the neighbours of current. A single page needs no pager and yields nil.
func PageNumbers(current, total int) []int {
	if total <= 1 {
		return nil
	}

	if total <= 5 {
		pages := make([]int, 0, total)
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	pages := []int{1}
	if current > 3 {
		pages = append(pages, 0)
	}
	for i := max(2, current-1); i <= min(total-1, current+1); i++ {
		pages = append(pages, i)
	}
	if current < total-2 {
		pages = append(pages, 0)
	}
	return append(pages, total)
}
