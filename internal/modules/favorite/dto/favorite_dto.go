package dto

import (
	"time"

	"github.com/google/uuid"
)

type FavoriteResponse struct {
	CourseID  uuid.UUID `json:"courseId"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
