package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lesson numbers start at 1 and are unique within a course.
type Lesson struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lessons_course_number,priority:1" json:"course_id"`
	Course       Course    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	LessonNumber int       `gorm:"not null;uniqueIndex:idx_lessons_course_number,priority:2" json:"lesson_number"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	VideoURL     string    `gorm:"type:text" json:"video_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}

// CompletedLesson marks a lesson a student has finished, once per lesson.
type CompletedLesson struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completed_lessons_user_lesson,priority:1" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	LessonID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completed_lessons_user_lesson,priority:2" json:"lesson_id"`
	Lesson    Lesson    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *CompletedLesson) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
