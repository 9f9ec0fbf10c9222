package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	course "anoa.com/elearning/internal/modules/course/service"
	"anoa.com/elearning/internal/modules/lesson/dto"
	lesson "anoa.com/elearning/internal/modules/lesson/service"
	"anoa.com/elearning/pkg/apperror"
	"anoa.com/elearning/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxVideoSize = 200 << 20

var allowedVideoExts = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true,
}

type LessonHandler struct {
	service lesson.Service
}

func NewLessonHandler(service lesson.Service) *LessonHandler {
	return &LessonHandler{service: service}
}

func (h *LessonHandler) AddLesson(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateLessonRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BindError(c, err)
		return
	}

	var video *lesson.Video
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("video")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			response.ResponseError(c, fmt.Errorf("failed to read video: %w", apperror.ErrBadRequest))
			return
		}
		if file != nil {
			if err := checkVideo(file.Filename, file.Size); err != nil {
				response.ResponseError(c, err)
				return
			}
			src, err := file.Open()
			if err != nil {
				response.ResponseError(c, fmt.Errorf("failed to read video: %w", apperror.ErrBadRequest))
				return
			}
			defer src.Close()
			video = &lesson.Video{Body: src, FileName: file.Filename}
		}
	}

	created, err := h.service.AddLesson(c.Request.Context(), actor, courseID, req, video)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *LessonHandler) GetLessons(c *gin.Context) {
	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	lessons, err := h.service.GetLessons(c.Request.Context(), courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, lessons)
}

func (h *LessonHandler) GetLesson(c *gin.Context) {
	courseID, number, ok := lessonParams(c)
	if !ok {
		return
	}

	found, err := h.service.GetLesson(c.Request.Context(), courseID, number)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	courseID, number, ok := lessonParams(c)
	if !ok {
		return
	}

	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.service.UpdateLesson(c.Request.Context(), actor, courseID, number, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *LessonHandler) UploadVideo(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	courseID, number, ok := lessonParams(c)
	if !ok {
		return
	}

	file, err := c.FormFile("video")
	if err != nil {
		response.ResponseError(c, fmt.Errorf("video is required: %w", apperror.ErrBadRequest))
		return
	}
	if err := checkVideo(file.Filename, file.Size); err != nil {
		response.ResponseError(c, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.ResponseError(c, fmt.Errorf("failed to read video: %w", apperror.ErrBadRequest))
		return
	}
	defer src.Close()

	updated, err := h.service.UploadVideo(c.Request.Context(), actor, courseID, number, lesson.Video{Body: src, FileName: file.Filename})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *LessonHandler) CompleteLesson(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	courseID, number, ok := lessonParams(c)
	if !ok {
		return
	}

	progress, err := h.service.CompleteLesson(c.Request.Context(), actor.ID, courseID, number)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *LessonHandler) UncompleteLesson(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	courseID, number, ok := lessonParams(c)
	if !ok {
		return
	}

	progress, err := h.service.UncompleteLesson(c.Request.Context(), actor.ID, courseID, number)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *LessonHandler) GetProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	progress, err := h.service.GetProgress(c.Request.Context(), actor.ID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func checkVideo(fileName string, size int64) error {
	if size > maxVideoSize {
		return fmt.Errorf("video must be at most 200MB: %w", apperror.ErrBadRequest)
	}
	if !allowedVideoExts[strings.ToLower(filepath.Ext(fileName))] {
		return fmt.Errorf("unsupported video type: %w", apperror.ErrBadRequest)
	}
	return nil
}

func lessonParams(c *gin.Context) (uuid.UUID, int, bool) {
	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return uuid.Nil, 0, false
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		response.ResponseError(c, fmt.Errorf("invalid lesson number: %w", apperror.ErrBadRequest))
		return uuid.Nil, 0, false
	}
	return courseID, number, true
}

func currentActor(c *gin.Context) (course.Actor, bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return course.Actor{}, false
	}
	return course.Actor{ID: userID, Role: response.GetUserRole(c)}, true
}
