package lesson

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/internal/modules/lesson/dto"
	"anoa.com/elearning/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompleteLesson marks the lesson done for an enrolled student. Completing it
// again changes nothing.
func (s *service) CompleteLesson(ctx context.Context, userID, courseID uuid.UUID, number int) (*dto.ProgressResponse, error) {
	if err := s.requireEnrollment(ctx, userID, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.findLesson(ctx, courseID, number)
	if err != nil {
		return nil, err
	}

	created, err := s.lessonRepo.MarkCompleted(ctx, &entity.CompletedLesson{
		UserID:   userID,
		CourseID: courseID,
		LessonID: lesson.ID,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		s.log.Debug("lesson already completed", "user_id", userID, "lesson_id", lesson.ID)
	}

	return s.progress(ctx, userID, courseID)
}

func (s *service) UncompleteLesson(ctx context.Context, userID, courseID uuid.UUID, number int) (*dto.ProgressResponse, error) {
	if err := s.requireEnrollment(ctx, userID, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.findLesson(ctx, courseID, number)
	if err != nil {
		return nil, err
	}

	if err := s.lessonRepo.UnmarkCompleted(ctx, userID, lesson.ID); err != nil {
		return nil, err
	}
	return s.progress(ctx, userID, courseID)
}

func (s *service) GetProgress(ctx context.Context, userID, courseID uuid.UUID) (*dto.ProgressResponse, error) {
	if err := s.requireEnrollment(ctx, userID, courseID); err != nil {
		return nil, err
	}
	return s.progress(ctx, userID, courseID)
}

func (s *service) progress(ctx context.Context, userID, courseID uuid.UUID) (*dto.ProgressResponse, error) {
	all, err := s.lessonRepo.FindByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := s.lessonRepo.CompletedLessons(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	return &dto.ProgressResponse{
		CourseID:         courseID,
		TotalLessons:     len(all),
		CompletedLessons: toLessonResponses(completed),
	}, nil
}

func (s *service) requireEnrollment(ctx context.Context, userID, courseID uuid.UUID) error {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return err
	}
	if _, err := s.enrollmentRepo.FindByCourseAndStudent(ctx, courseID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("not enrolled in this course: %w", apperror.ErrForbidden)
		}
		return err
	}
	return nil
}
