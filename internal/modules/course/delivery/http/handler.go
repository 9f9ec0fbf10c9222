package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"anoa.com/elearning/internal/modules/course/dto"
	course "anoa.com/elearning/internal/modules/course/service"
	"anoa.com/elearning/pkg/apperror"
	commonDto "anoa.com/elearning/pkg/dto"
	"anoa.com/elearning/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxImageSize = 5 << 20

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

type CourseHandler struct {
	service course.Service
}

func NewCourseHandler(service course.Service) *CourseHandler {
	return &CourseHandler{service: service}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.service.CreateCourse(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.service.UpdateCourse(c.Request.Context(), actor, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCourse(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course deleted successfully"})
}

func (h *CourseHandler) UploadImage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		response.ResponseError(c, fmt.Errorf("image is required: %w", apperror.ErrBadRequest))
		return
	}
	if file.Size > maxImageSize {
		response.ResponseError(c, fmt.Errorf("image must be at most 5MB: %w", apperror.ErrBadRequest))
		return
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(file.Filename))] {
		response.ResponseError(c, fmt.Errorf("unsupported image type: %w", apperror.ErrBadRequest))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.ResponseError(c, fmt.Errorf("failed to read image: %w", apperror.ErrBadRequest))
		return
	}
	defer src.Close()

	updated, err := h.service.UploadImage(c.Request.Context(), actor, id, src, file.Filename)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), id, actor.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

func (h *CourseHandler) GetCourseEnrollments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	enrollments, err := h.service.GetCourseEnrollments(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

func (h *CourseHandler) GetMyEnrollments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	enrollments, err := h.service.GetStudentEnrollments(c.Request.Context(), actor.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

func (h *CourseHandler) AddReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	review, err := h.service.AddReview(c.Request.Context(), id, actor.ID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *CourseHandler) GetReviews(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var query commonDto.PaginationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	page, err := h.service.GetReviews(c.Request.Context(), id, query.PageNumber, query.PageSize)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func currentActor(c *gin.Context) (course.Actor, bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return course.Actor{}, false
	}
	return course.Actor{ID: userID, Role: response.GetUserRole(c)}, true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	return response.ParamUUID(c, "id")
}
