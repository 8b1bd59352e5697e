package models

// Pagination describes one page of a listing result.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// NewPagination computes the pagination envelope for a listing.
func NewPagination(total int64, page, limit int) Pagination {
	totalPages := (total + int64(limit) - 1) / int64(limit)

	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasMore:    int64(page)*int64(limit) < total,
	}
}
