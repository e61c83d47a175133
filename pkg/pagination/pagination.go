package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// Ellipsis is the marker VisiblePages emits for a collapsed page gap.
	Ellipsis = -1
)

// PageSizes are the page sizes clients may select from.
var PageSizes = []int{5, 10, 20, 50}

// Params holds pagination parameters extracted from a request.
// Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts pagination parameters from the echo context.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Offset returns the SQL offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns the number of pages needed for total items.
// Never less than 1, so an empty result set still renders page 1 of 1.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Meta describes the pagination state of a response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// Response wraps a paginated API response.
type Response struct {
	Data       interface{} `json:"data"`
	Pagination Meta        `json:"pagination"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data: data,
		Pagination: Meta{
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: TotalPages(total, p.Limit),
			TotalItems: total,
		},
	}
}

// VisiblePages returns the page numbers a pager should render for the given
// current page and page count, with Ellipsis standing in for collapsed gaps.
// When the page count fits in seven slots every page is shown; otherwise the
// first and last pages are always present with current±1 in the middle, and
// any gap wider than one page collapses to a single Ellipsis.
func VisiblePages(current, total int) []int {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	if total <= 7 {
		pages := make([]int, 0, total)
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	pages := []int{1}

	start := current - 1
	if start < 2 {
		start = 2
	}
	end := current + 1
	if end > total-1 {
		end = total - 1
	}

	// A gap of exactly one page reads better as the page itself.
	if start == 3 {
		start = 2
	}
	if end == total-2 {
		end = total - 1
	}

	if start > 2 {
		pages = append(pages, Ellipsis)
	}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	if end < total-1 {
		pages = append(pages, Ellipsis)
	}

	return append(pages, total)
}
