package favorite

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/elearning/internal/entity"
	catalogDto "anoa.com/elearning/internal/modules/catalog/dto"
	"anoa.com/elearning/internal/modules/favorite/dto"
	"anoa.com/elearning/internal/modules/favorite/repository"
	"anoa.com/elearning/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseFinder confirms a course exists before it is favorited.
type CourseFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
}

// CourseViews renders favorites as full catalog entries.
type CourseViews interface {
	GetCoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]catalogDto.CourseView, error)
}

type Service interface {
	Favorite(ctx context.Context, userID, courseID uuid.UUID) (*dto.FavoriteResponse, error)
	Unfavorite(ctx context.Context, userID, courseID uuid.UUID) error
	GetFavorites(ctx context.Context, userID uuid.UUID) ([]catalogDto.CourseView, error)
}

type service struct {
	repo    repository.FavoriteRepository
	courses CourseFinder
	views   CourseViews
}

func NewService(repo repository.FavoriteRepository, courses CourseFinder, views CourseViews) Service {
	return &service{repo: repo, courses: courses, views: views}
}

// Favorite is idempotent: favoriting twice returns the original record.
func (s *service) Favorite(ctx context.Context, userID, courseID uuid.UUID) (*dto.FavoriteResponse, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	favorite, err := s.repo.Add(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return &dto.FavoriteResponse{
		CourseID:  favorite.CourseID,
		UserID:    favorite.UserID,
		CreatedAt: favorite.CreatedAt,
	}, nil
}

func (s *service) Unfavorite(ctx context.Context, userID, courseID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, courseID)
}

func (s *service) GetFavorites(ctx context.Context, userID uuid.UUID) ([]catalogDto.CourseView, error) {
	ids, err := s.repo.CourseIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views.GetCoursesByIDs(ctx, ids)
}
