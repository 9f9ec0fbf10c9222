package dto

import (
	"fmt"
	"math"

	"anoa.com/elearning/pkg/apperror"
)

const DefaultPageSize = 10

// PageRequest is a normalized page_number/page_size pair. All is set when the
// caller asked for page_size=0, which means every matching row on one page.
type PageRequest struct {
	Number int
	Size   int
	All    bool
}

func NewPageRequest(number int, size *int) (PageRequest, error) {
	req := PageRequest{Number: number, Size: DefaultPageSize}
	if req.Number <= 0 {
		req.Number = 1
	}

	if size != nil {
		switch {
		case *size < 0:
			return PageRequest{}, fmt.Errorf("page size must not be negative: %w", apperror.ErrInvalidInput)
		case *size == 0:
			req.Size = 0
			req.All = true
			req.Number = 1
		default:
			req.Size = *size
		}
	}

	// keep (Number-1)*Size representable; such a page lies past any real result set
	if !req.All && req.Number-1 > math.MaxInt/req.Size {
		req.Number = math.MaxInt/req.Size + 1
	}

	return req, nil
}

func (p PageRequest) Offset() int {
	if p.All {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Limit returns -1 for the "all" sentinel, which gorm treats as no limit.
func (p PageRequest) Limit() int {
	if p.All {
		return -1
	}
	return p.Size
}

func (p PageRequest) TotalPages(total int64) int {
	if total == 0 || p.All {
		return 1
	}
	size := int64(p.Size)
	return int((total + size - 1) / size)
}

func NewPage[T any](req PageRequest, total int64, results []T) *Page[T] {
	if results == nil {
		results = []T{}
	}

	pageSize := req.Size
	if req.All {
		pageSize = int(total)
	}

	return &Page[T]{
		PageNumber:   req.Number,
		PageSize:     pageSize,
		TotalPages:   req.TotalPages(total),
		TotalResults: total,
		Results:      results,
	}
}
