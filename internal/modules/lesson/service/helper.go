package lesson

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/elearning/internal/entity"
	course "anoa.com/elearning/internal/modules/course/service"
	"anoa.com/elearning/internal/modules/lesson/dto"
	"anoa.com/elearning/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *service) findCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	c, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) findOwnedCourse(ctx context.Context, actor course.Actor, id uuid.UUID) (*entity.Course, error) {
	c, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.TeacherID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("not the owner of this course: %w", apperror.ErrForbidden)
	}
	return c, nil
}

func (s *service) findLesson(ctx context.Context, courseID uuid.UUID, number int) (*entity.Lesson, error) {
	if number < 1 {
		return nil, fmt.Errorf("lesson number must be positive: %w", apperror.ErrInvalidInput)
	}
	lesson, err := s.lessonRepo.FindByNumber(ctx, courseID, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson %d not found: %w", number, apperror.ErrNotFound)
		}
		return nil, err
	}
	return lesson, nil
}

func toLessonResponse(l *entity.Lesson) *dto.LessonResponse {
	return &dto.LessonResponse{
		ID:           l.ID,
		CourseID:     l.CourseID,
		LessonNumber: l.LessonNumber,
		Name:         l.Name,
		Description:  l.Description,
		VideoURL:     l.VideoURL,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func toLessonResponses(lessons []*entity.Lesson) []dto.LessonResponse {
	out := make([]dto.LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, *toLessonResponse(l))
	}
	return out
}
