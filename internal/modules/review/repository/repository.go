package repository

import (
	"context"
	"time"

	"anoa.com/elearning/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RatingStat is the per-course review rollup.
type RatingStat struct {
	CourseID    uuid.UUID
	RatingSum   int64
	ReviewCount int64
}

// ReviewWithAuthor is a review row joined with its author's display name.
type ReviewWithAuthor struct {
	ID        uuid.UUID
	CourseID  uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Text      string
	CreatedAt time.Time
	Username  string
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	ExistsByEnrollmentID(ctx context.Context, enrollmentID uuid.UUID) (bool, error)
	AggregateByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]RatingStat, error)
	CountByCourseID(ctx context.Context, courseID uuid.UUID) (int64, error)
	FindByCourseID(ctx context.Context, courseID uuid.UUID, offset, limit int) ([]ReviewWithAuthor, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) ExistsByEnrollmentID(ctx context.Context, enrollmentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reviewRepository) AggregateByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]RatingStat, error) {
	var stats []RatingStat
	if len(courseIDs) == 0 {
		return stats, nil
	}

	err := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Select("course_id, SUM(rating) AS rating_sum, COUNT(*) AS review_count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *reviewRepository) CountByCourseID(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *reviewRepository) FindByCourseID(ctx context.Context, courseID uuid.UUID, offset, limit int) ([]ReviewWithAuthor, error) {
	var reviews []ReviewWithAuthor
	err := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Select("reviews.id, reviews.course_id, reviews.user_id, reviews.rating, reviews.text, reviews.created_at, users.full_name AS username").
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Where("reviews.course_id = ?", courseID).
		Order("reviews.created_at DESC").
		Order("reviews.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
