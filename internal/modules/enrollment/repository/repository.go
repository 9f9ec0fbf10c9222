package repository

import (
	"context"
	"time"

	"anoa.com/elearning/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseCount is the number of enrollments of one course.
type CourseCount struct {
	CourseID        uuid.UUID
	EnrollmentCount int64
}

type EnrollmentWithStudent struct {
	ID           uuid.UUID
	CourseID     uuid.UUID
	StudentID    uuid.UUID
	CreatedAt    time.Time
	StudentName  string
	StudentEmail string
}

type EnrollmentWithCourse struct {
	ID         uuid.UUID
	CourseID   uuid.UUID
	StudentID  uuid.UUID
	CreatedAt  time.Time
	CourseName string
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	FindByCourseAndStudent(ctx context.Context, courseID, studentID uuid.UUID) (*entity.Enrollment, error)
	CountByCourseID(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]CourseCount, error)
	// CountGroupedByCourse ranks courses by enrollments created at or after
	// since (all-time when nil), highest first, ties by course id.
	CountGroupedByCourse(ctx context.Context, since *time.Time, limit int) ([]CourseCount, error)
	FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]EnrollmentWithStudent, error)
	FindByStudentID(ctx context.Context, studentID uuid.UUID) ([]EnrollmentWithCourse, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) FindByCourseAndStudent(ctx context.Context, courseID, studentID uuid.UUID) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) CountByCourseID(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *enrollmentRepository) CountByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]CourseCount, error) {
	var counts []CourseCount
	if len(courseIDs) == 0 {
		return counts, nil
	}

	err := r.db.WithContext(ctx).
		Model(&entity.Enrollment{}).
		Select("course_id, COUNT(*) AS enrollment_count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *enrollmentRepository) CountGroupedByCourse(ctx context.Context, since *time.Time, limit int) ([]CourseCount, error) {
	var counts []CourseCount

	query := r.db.WithContext(ctx).
		Model(&entity.Enrollment{}).
		Select("course_id, COUNT(*) AS enrollment_count")

	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	err := query.
		Group("course_id").
		Order("enrollment_count DESC").
		Order("course_id ASC").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *enrollmentRepository) FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]EnrollmentWithStudent, error) {
	var enrollments []EnrollmentWithStudent
	err := r.db.WithContext(ctx).
		Model(&entity.Enrollment{}).
		Select("enrollments.id, enrollments.course_id, enrollments.student_id, enrollments.created_at, users.full_name AS student_name, users.email AS student_email").
		Joins("LEFT JOIN users ON users.id = enrollments.student_id").
		Where("enrollments.course_id = ?", courseID).
		Order("enrollments.created_at DESC").
		Scan(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID) ([]EnrollmentWithCourse, error) {
	var enrollments []EnrollmentWithCourse
	err := r.db.WithContext(ctx).
		Model(&entity.Enrollment{}).
		Select("enrollments.id, enrollments.course_id, enrollments.student_id, enrollments.created_at, courses.name AS course_name").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.student_id = ?", studentID).
		Order("enrollments.created_at DESC").
		Scan(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}
