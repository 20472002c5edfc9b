package domain

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// PageRequest is a validated pagination request.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest clamps raw pagination parameters to sane bounds.
func NewPageRequest(page, perPage int) PageRequest {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// PageMeta is the pagination envelope returned alongside every list.
type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// NewPageMeta computes the envelope for a request against a total row count.
func NewPageMeta(req PageRequest, total int64) PageMeta {
	pages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	return PageMeta{
		Page:    req.Page,
		PerPage: req.PerPage,
		Total:   total,
		Pages:   pages,
		HasNext: req.Page < pages,
		HasPrev: req.Page > 1,
	}
}
