package dto

import (
	"time"

	"github.com/google/uuid"
)

// SearchQuery is the parsed form of a catalog listing request.
type SearchQuery struct {
	PageNumber int
	PageSize   *int
	Sort       string
	Keyword    string
	CategoryID *uuid.UUID
	TeacherID  *uuid.UUID
}

// SearchRequest binds the raw query string of GET /courses.
type SearchRequest struct {
	PageNumber int    `form:"page_number"`
	PageSize   *int   `form:"page_size"`
	SortBy     string `form:"sort_by"`
	Keyword    string `form:"keyword"`
	CategoryID string `form:"category" binding:"omitempty,uuid"`
}

type CourseView struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	ShortDescription  string    `json:"shortDescription"`
	DetailDescription string    `json:"detailDescription"`
	ImageURL          string    `json:"imageUrl"`
	Price             float64   `json:"price"`
	PercentDiscount   int       `json:"percentDiscount"`
	ViewCount         int64     `json:"view"`
	TeacherID         uuid.UUID `json:"teacherId"`
	Teacher           string    `json:"teacher"`
	CategoryID        uuid.UUID `json:"categoryId"`
	Category          string    `json:"category"`
	AverageRating     float64   `json:"averageRating"`
	NumberOfReviews   int64     `json:"numberOfReviews"`
	Enrollments       int64     `json:"enrollments"`
	IsNew             bool      `json:"isNew"`
	IsBestseller      bool      `json:"isBestseller"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
