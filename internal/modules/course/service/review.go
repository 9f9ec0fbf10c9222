package course

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/internal/modules/course/dto"
	"anoa.com/elearning/pkg/apperror"
	commonDto "anoa.com/elearning/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddReview accepts one review per enrollment; only enrolled users may review.
func (s *service) AddReview(ctx context.Context, courseID, userID uuid.UUID, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if req.Rating == nil {
		return nil, fmt.Errorf("rating is required: %w", apperror.ErrInvalidInput)
	}
	rating := *req.Rating
	if rating < entity.MinRating || rating > entity.MaxRating {
		return nil, fmt.Errorf("rating must be between %d and %d: %w", entity.MinRating, entity.MaxRating, apperror.ErrInvalidInput)
	}

	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.FindByCourseAndStudent(ctx, courseID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("only enrolled students can review a course: %w", apperror.ErrForbidden)
		}
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("course already reviewed: %w", apperror.ErrConflict)
	}

	review := &entity.Review{
		CourseID:     courseID,
		UserID:       userID,
		EnrollmentID: enrollment.ID,
		Rating:       rating,
		Text:         req.Text,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("course already reviewed: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	var username string
	if names, err := s.userRepo.DisplayNames(ctx, []uuid.UUID{userID}); err == nil {
		username = names[userID]
	}

	return &dto.ReviewResponse{
		ID:        review.ID,
		CourseID:  courseID,
		UserID:    userID,
		Username:  username,
		Rating:    review.Rating,
		Text:      review.Text,
		CreatedAt: review.CreatedAt,
	}, nil
}

// GetReviews pages through a course's reviews, newest first.
func (s *service) GetReviews(ctx context.Context, courseID uuid.UUID, pageNumber int, pageSize *int) (*commonDto.Page[dto.ReviewResponse], error) {
	page, err := commonDto.NewPageRequest(pageNumber, pageSize)
	if err != nil {
		return nil, err
	}

	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}

	total, err := s.reviewRepo.CountByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var responses []dto.ReviewResponse
	if total > int64(page.Offset()) {
		rows, err := s.reviewRepo.FindByCourseID(ctx, courseID, page.Offset(), page.Limit())
		if err != nil {
			return nil, err
		}
		responses = make([]dto.ReviewResponse, 0, len(rows))
		for _, row := range rows {
			responses = append(responses, dto.ReviewResponse{
				ID:        row.ID,
				CourseID:  row.CourseID,
				UserID:    row.UserID,
				Username:  row.Username,
				Rating:    row.Rating,
				Text:      row.Text,
				CreatedAt: row.CreatedAt,
			})
		}
	}

	return commonDto.NewPage(page, total, responses), nil
}
