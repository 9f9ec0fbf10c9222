package catalog

import (
	"context"
	"time"

	"anoa.com/elearning/internal/entity"
	category "anoa.com/elearning/internal/modules/category/service"
	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	enrollmentRepo "anoa.com/elearning/internal/modules/enrollment/repository"
	reviewRepo "anoa.com/elearning/internal/modules/review/repository"
	"github.com/google/uuid"
)

type CourseStore interface {
	Count(ctx context.Context, filter courseRepo.Filter) (int64, error)
	FindIDs(ctx context.Context, filter courseRepo.Filter, sort []courseRepo.SortKey, offset, limit int) ([]uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Course, error)
	NewestIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	TopViewedIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	RelatedIDs(ctx context.Context, course *entity.Course, limit int) ([]uuid.UUID, error)
}

type ReviewStore interface {
	AggregateByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]reviewRepo.RatingStat, error)
}

type EnrollmentStore interface {
	CountByCourseID(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]enrollmentRepo.CourseCount, error)
	CountGroupedByCourse(ctx context.Context, since *time.Time, limit int) ([]enrollmentRepo.CourseCount, error)
}

type CategoryResolver interface {
	ResolveSubtree(ctx context.Context, id *uuid.UUID) (category.Scope, error)
	Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type TeacherDirectory interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type ViewCounter interface {
	IncrementView(ctx context.Context, courseID uuid.UUID) error
}
