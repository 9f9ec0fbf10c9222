package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 0
	MaxRating = 10
)

// Review is unique on (course_id, user_id) and on enrollment_id.
type Review struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_course_user,priority:1" json:"course_id"`
	Course       Course     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_course_user,priority:2" json:"user_id"`
	User         User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	EnrollmentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"enrollment_id"`
	Enrollment   Enrollment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Rating       int        `gorm:"not null" json:"rating"`
	Text         string     `gorm:"type:text" json:"review"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
