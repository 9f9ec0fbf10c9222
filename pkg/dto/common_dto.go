package dto

type CategoryFilter struct {
	Search string `form:"search"`
}

type PaginationQuery struct {
	PageNumber int  `form:"page_number"`
	PageSize   *int `form:"page_size"`
}

// Page is the envelope shared by every paginated listing.
type Page[T any] struct {
	PageNumber   int   `json:"pageNumber"`
	PageSize     int   `json:"pageSize"`
	TotalPages   int   `json:"totalPages"`
	TotalResults int64 `json:"totalResults"`
	Results      []T   `json:"results"`
}

type CategoryURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}
