package course

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/internal/modules/course/dto"
	"anoa.com/elearning/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func imagePublicID(courseID uuid.UUID) string {
	return fmt.Sprintf("course_%s", courseID)
}

func (s *service) findCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return course, nil
}

// findOwnedCourse loads a course the actor may modify: its teacher or an admin.
func (s *service) findOwnedCourse(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Course, error) {
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != actor.ID && !actor.IsAdmin() {
		return nil, fmt.Errorf("not the owner of this course: %w", apperror.ErrForbidden)
	}
	return course, nil
}

func (s *service) findCategory(ctx context.Context, rawID string) (*entity.Category, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid category id format: %w", apperror.ErrBadRequest)
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return category, nil
}

// syncIndex pushes the course to the search index. Failures are logged; the
// database stays the source of truth.
func (s *service) syncIndex(ctx context.Context, course *entity.Course, categoryName string) {
	if categoryName == "" {
		if category, err := s.categoryRepo.FindByID(ctx, course.CategoryID); err == nil {
			categoryName = category.Name
		}
	}

	var teacherName string
	names, err := s.userRepo.DisplayNames(ctx, []uuid.UUID{course.TeacherID})
	if err == nil {
		teacherName = names[course.TeacherID]
	}

	if err := s.index.IndexCourse(ctx, course, teacherName, categoryName); err != nil {
		s.log.Warn("failed to index course", "course_id", course.ID, "error", err)
	}
}

func toCourseResponse(c *entity.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:                c.ID,
		TeacherID:         c.TeacherID,
		CategoryID:        c.CategoryID,
		Name:              c.Name,
		ShortDescription:  c.ShortDescription,
		DetailDescription: c.DetailDescription,
		ImageURL:          c.ImageURL,
		Price:             c.Price,
		PercentDiscount:   c.PercentDiscount,
		ViewCount:         c.ViewCount,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}
