package upload

// DefaultPageSize is the number of products listed per page.
const DefaultPageSize = 25

// Page describes one page of a listing. Page numbers start at 1.
type Page struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
}

// Offset is the index of the first record on the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Paginate clamps page into [1, last page] for total records. An empty
// listing still has one (empty) page.
func Paginate(total int64, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return Page{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}
