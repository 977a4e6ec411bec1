package pagestore

import "fmt"

// Meta is the bookkeeping record of a paginated key, persisted at
// "<key>.meta". ItemCount is maintained approximately across evictions: an
// evicted page is assumed full, so the count can drift high over many
// eviction cycles when pages were only partially filled (see List.Len).
type Meta struct {
	TotalPages   int `json:"totalPages"`
	ItemCount    int `json:"itemCount"`
	MaxBatchSize int `json:"maxBatchSize"`
}

// Pagination describes one page's position within a paginated list.
// Previous and Next are nil at the respective boundaries. Page numbers are
// logical: under reverse traversal they still increase monotonically even
// though the physical storage order is walked backwards.
type Pagination struct {
	Previous *int `json:"previousPage"`
	Current  int  `json:"currentPage"`
	Next     *int `json:"nextPage"`
	Total    int  `json:"totalPages"`
}

func (p Pagination) String() string {
	return fmt.Sprintf("Pagination{previousPage = %s, currentPage = %d, nextPage = %s, totalPages = %d}",
		pageRef(p.Previous), p.Current, pageRef(p.Next), p.Total)
}

func pageRef(n *int) string {
	if n == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *n)
}

// Paged is one page of items together with its pagination info.
type Paged[E any] struct {
	Items      []E
	Pagination Pagination
}

func (p *Paged[E]) String() string {
	return fmt.Sprintf("Paged{items = %v, pagination = %s}", p.Items, p.Pagination)
}

// paginate computes the Pagination for logical page number page of a list
// with total pages. Out-of-range pages get nil Previous and Next.
func paginate(page, total int) Pagination {
	p := Pagination{Current: page, Total: total}
	if page < 1 || page > total {
		return p
	}
	if page > 1 {
		prev := page - 1
		p.Previous = &prev
	}
	if page < total {
		next := page + 1
		p.Next = &next
	}
	return p
}
