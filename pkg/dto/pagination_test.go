package dto

import (
	"math"
	"testing"

	"anoa.com/elearning/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewPageRequestDefaults(t *testing.T) {
	req, err := NewPageRequest(0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, req.Number)
	assert.Equal(t, DefaultPageSize, req.Size)
	assert.False(t, req.All)

	req, err = NewPageRequest(-4, intPtr(5))
	require.NoError(t, err)
	assert.Equal(t, 1, req.Number)
	assert.Equal(t, 5, req.Size)
}

func TestNewPageRequestRejectsNegativeSize(t *testing.T) {
	_, err := NewPageRequest(1, intPtr(-1))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestPageRequestAllSentinel(t *testing.T) {
	req, err := NewPageRequest(3, intPtr(0))
	require.NoError(t, err)
	assert.True(t, req.All)
	assert.Equal(t, 0, req.Offset())
	assert.Equal(t, -1, req.Limit())

	page := NewPage(req, 7, []string{"a", "b", "c", "d", "e", "f", "g"})
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 7, page.PageSize)
	assert.Equal(t, 1, page.PageNumber)
	assert.Len(t, page.Results, int(page.TotalResults))
}

func TestTotalPagesCoversEveryResult(t *testing.T) {
	for total := int64(0); total <= 25; total++ {
		for size := 1; size <= 7; size++ {
			req, err := NewPageRequest(1, intPtr(size))
			require.NoError(t, err)

			pages := req.TotalPages(total)
			if total == 0 {
				assert.Equal(t, 1, pages)
				continue
			}

			covered := int64(0)
			for n := 1; n <= pages; n++ {
				pr, _ := NewPageRequest(n, intPtr(size))
				remaining := total - int64(pr.Offset())
				if remaining > int64(size) {
					remaining = int64(size)
				}
				require.Positive(t, remaining, "page %d of %d must not be empty", n, pages)
				covered += remaining
			}
			assert.Equal(t, total, covered)
		}
	}
}

func TestNewPageNeverReturnsNilResults(t *testing.T) {
	req, _ := NewPageRequest(1, nil)
	page := NewPage[int](req, 0, nil)
	assert.NotNil(t, page.Results)
	assert.Equal(t, 1, page.TotalPages)
}

func TestOffsetNeverOverflows(t *testing.T) {
	for _, tt := range []struct {
		number int
		size   int
	}{
		{1<<62 + 1, 10},
		{math.MaxInt, 1},
		{math.MaxInt, 3},
		{math.MaxInt / 7, math.MaxInt / 5},
	} {
		req, err := NewPageRequest(tt.number, intPtr(tt.size))
		require.NoError(t, err)

		assert.GreaterOrEqual(t, req.Offset(), 0, "page %d size %d", tt.number, tt.size)
		assert.Greater(t, int64(req.Offset()), int64(1_000_000), "a huge page must stay past the data")
		assert.Equal(t, tt.size, req.Size)
	}
}

func TestHugePageNumberIsPastLastPage(t *testing.T) {
	req, err := NewPageRequest(1<<62+1, intPtr(10))
	require.NoError(t, err)

	var total int64 = 25
	assert.False(t, total > int64(req.Offset()))
	page := NewPage[int](req, total, nil)
	assert.Empty(t, page.Results)
	assert.Equal(t, 3, page.TotalPages)
}
