package repository

import (
	"context"
	"errors"

	"anoa.com/elearning/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	// Add stores the favorite unless the user already has it; the stored row is
	// returned either way.
	Add(ctx context.Context, userID, courseID uuid.UUID) (*entity.Favorite, error)
	Remove(ctx context.Context, userID, courseID uuid.UUID) error
	// CourseIDs lists the user's favorites, most recent first.
	CourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, courseID uuid.UUID) (*entity.Favorite, error) {
	favorite := &entity.Favorite{UserID: userID, CourseID: courseID}
	err := r.db.WithContext(ctx).Create(favorite).Error
	if err == nil {
		return favorite, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	var existing entity.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, courseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&entity.Favorite{}).Error
}

func (r *favoriteRepository) CourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Pluck("course_id", &ids).Error
	return ids, err
}
