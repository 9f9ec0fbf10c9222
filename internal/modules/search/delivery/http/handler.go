package handler

import (
	"net/http"
	"strings"

	search "anoa.com/elearning/internal/modules/search/service"
	"anoa.com/elearning/pkg/apperror"
	"anoa.com/elearning/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	defaultSuggestLimit = 5
	maxSuggestLimit     = 20
)

type SuggestQuery struct {
	Query string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1"`
}

type SearchHandler struct {
	index search.CourseIndex
}

func NewSearchHandler(index search.CourseIndex) *SearchHandler {
	return &SearchHandler{index: index}
}

// Suggest handles GET /courses/suggest?q=&limit= for type-ahead boxes.
func (h *SearchHandler) Suggest(c *gin.Context) {
	var query SuggestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	q := strings.TrimSpace(query.Query)
	if q == "" {
		c.JSON(http.StatusOK, []search.Suggestion{})
		return
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	suggestions, err := h.index.Suggest(c.Request.Context(), q, limit)
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusServiceUnavailable, "search is unavailable", err))
		return
	}

	c.JSON(http.StatusOK, suggestions)
}
