package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID         uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Teacher           User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CategoryID        uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category          Category  `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	ShortDescription  string    `gorm:"type:text;not null" json:"short_description"`
	DetailDescription string    `gorm:"type:text;not null" json:"detail_description"`
	ImageURL          string    `gorm:"type:text" json:"image_url"`
	Price             float64   `gorm:"not null;default:0" json:"price"`
	PercentDiscount   int       `gorm:"not null;default:0" json:"percent_discount"`
	ViewCount         int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
