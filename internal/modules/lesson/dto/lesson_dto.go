package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateLessonRequest binds JSON or a multipart form; the form may carry an
// optional "video" file.
type CreateLessonRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=255"`
	Description string `json:"description" form:"description" binding:"max=5000"`
}

// UpdateLessonRequest edits the text of a lesson. The video has its own
// upload route.
type UpdateLessonRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=5000"`
}

type LessonResponse struct {
	ID           uuid.UUID `json:"id"`
	CourseID     uuid.UUID `json:"courseId"`
	LessonNumber int       `json:"lessonNumber"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ProgressResponse struct {
	CourseID         uuid.UUID        `json:"courseId"`
	TotalLessons     int              `json:"totalLessons"`
	CompletedLessons []LessonResponse `json:"completedLessons"`
}
