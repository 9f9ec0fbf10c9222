package handler

import (
	"net/http"

	"anoa.com/elearning/internal/modules/catalog/dto"
	catalog "anoa.com/elearning/internal/modules/catalog/service"
	"anoa.com/elearning/pkg/apperror"
	commonDto "anoa.com/elearning/pkg/dto"
	"anoa.com/elearning/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	service catalog.CatalogService
}

func NewCatalogHandler(service catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Search handles GET /courses?page_number=&page_size=&sort_by=&keyword=&category=
func (h *CatalogHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	query := dto.SearchQuery{
		PageNumber: req.PageNumber,
		PageSize:   req.PageSize,
		Sort:       req.SortBy,
		Keyword:    req.Keyword,
	}
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			response.ResponseError(c, apperror.ErrBadRequest)
			return
		}
		query.CategoryID = &id
	}

	page, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *CatalogHandler) GetCourseByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	course, err := h.service.GetCourseByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CatalogHandler) GetNewestCourses(c *gin.Context) {
	courses, err := h.service.GetNewestCourses(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CatalogHandler) GetTopViewedCourses(c *gin.Context) {
	courses, err := h.service.GetTopViewedCourses(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CatalogHandler) GetPopularCourses(c *gin.Context) {
	courses, err := h.service.GetPopularCourses(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CatalogHandler) GetRelatedCourses(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	courses, err := h.service.GetRelatedCourses(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CatalogHandler) GetTeacherCourses(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var query commonDto.PaginationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	page, err := h.service.GetTeacherCourses(c.Request.Context(), id, query.PageNumber, query.PageSize)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	return response.ParamUUID(c, "id")
}
