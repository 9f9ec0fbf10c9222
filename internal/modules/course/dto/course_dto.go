package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCourseRequest struct {
	Name              string  `json:"name" binding:"required,max=255"`
	ShortDescription  string  `json:"shortDescription" binding:"required,max=500"`
	DetailDescription string  `json:"detailDescription"`
	Price             float64 `json:"price" binding:"gte=0"`
	PercentDiscount   int     `json:"percentDiscount" binding:"gte=0,lte=100"`
	CategoryID        string  `json:"categoryId" binding:"required,uuid"`
}

// UpdateCourseRequest replaces the editable fields. The image and the view
// counter have their own write paths.
type UpdateCourseRequest struct {
	Name              string  `json:"name" binding:"required,max=255"`
	ShortDescription  string  `json:"shortDescription" binding:"required,max=500"`
	DetailDescription string  `json:"detailDescription"`
	Price             float64 `json:"price" binding:"gte=0"`
	PercentDiscount   int     `json:"percentDiscount" binding:"gte=0,lte=100"`
	CategoryID        string  `json:"categoryId" binding:"required,uuid"`
}

type CourseResponse struct {
	ID                uuid.UUID `json:"id"`
	TeacherID         uuid.UUID `json:"teacherId"`
	CategoryID        uuid.UUID `json:"categoryId"`
	Name              string    `json:"name"`
	ShortDescription  string    `json:"shortDescription"`
	DetailDescription string    `json:"detailDescription"`
	ImageURL          string    `json:"imageUrl"`
	Price             float64   `json:"price"`
	PercentDiscount   int       `json:"percentDiscount"`
	ViewCount         int64     `json:"view"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type CreateReviewRequest struct {
	Rating *int   `json:"rating" binding:"required,gte=0,lte=10"`
	Text   string `json:"review" binding:"max=2000"`
}

type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"courseId"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	Text      string    `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
}

type EnrollmentResponse struct {
	ID           uuid.UUID `json:"id"`
	CourseID     uuid.UUID `json:"courseId"`
	CourseName   string    `json:"courseName,omitempty"`
	StudentID    uuid.UUID `json:"studentId"`
	StudentName  string    `json:"studentName,omitempty"`
	StudentEmail string    `json:"studentEmail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
