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

func (s *service) Enroll(ctx context.Context, courseID, studentID uuid.UUID) (*dto.EnrollmentResponse, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if _, err := s.enrollmentRepo.FindByCourseAndStudent(ctx, courseID, studentID); err == nil {
		return nil, fmt.Errorf("already enrolled in this course: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := &entity.Enrollment{CourseID: courseID, StudentID: studentID}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("already enrolled in this course: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	return &dto.EnrollmentResponse{
		ID:         enrollment.ID,
		CourseID:   courseID,
		CourseName: course.Name,
		StudentID:  studentID,
		CreatedAt:  enrollment.CreatedAt,
	}, nil
}

func (s *service) GetCourseEnrollments(ctx context.Context, actor Actor, courseID uuid.UUID) ([]dto.EnrollmentResponse, error) {
	if _, err := s.findOwnedCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}

	rows, err := s.enrollmentRepo.FindByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EnrollmentResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.EnrollmentResponse{
			ID:           row.ID,
			CourseID:     row.CourseID,
			StudentID:    row.StudentID,
			StudentName:  row.StudentName,
			StudentEmail: row.StudentEmail,
			CreatedAt:    row.CreatedAt,
		})
	}
	return responses, nil
}

func (s *service) GetStudentEnrollments(ctx context.Context, studentID uuid.UUID) ([]dto.EnrollmentResponse, error) {
	rows, err := s.enrollmentRepo.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EnrollmentResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.EnrollmentResponse{
			ID:         row.ID,
			CourseID:   row.CourseID,
			CourseName: row.CourseName,
			StudentID:  row.StudentID,
			CreatedAt:  row.CreatedAt,
		})
	}
	return responses, nil
}
