package repository

import (
	"context"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortField names a course column, or a review-derived signal, a listing can be ordered by.
type SortField string

const (
	SortID              SortField = "id"
	SortName            SortField = "name"
	SortPrice           SortField = "price"
	SortPercentDiscount SortField = "percentDiscount"
	SortViewCount       SortField = "viewCount"
	SortCreatedAt       SortField = "createdAt"
	SortUpdatedAt       SortField = "updatedAt"
	SortAverageRating   SortField = "averageRating"
	SortNumberOfReviews SortField = "numberOfReviews"
)

var sortColumns = map[SortField]string{
	SortID:              "courses.id",
	SortName:            "courses.name",
	SortPrice:           "courses.price",
	SortPercentDiscount: "courses.percent_discount",
	SortViewCount:       "courses.view_count",
	SortCreatedAt:       "courses.created_at",
	SortUpdatedAt:       "courses.updated_at",
	SortAverageRating:   "COALESCE(review_stats.average_rating, 0)",
	SortNumberOfReviews: "COALESCE(review_stats.review_count, 0)",
}

// IsSortable reports whether f can be used in a SortKey.
func IsSortable(f SortField) bool {
	_, ok := sortColumns[f]
	return ok
}

type SortKey struct {
	Field SortField
	Desc  bool
}

// Filter narrows the course collection. When ScopeToCategories is set the
// result is limited to CategoryIDs, and an empty CategoryIDs matches nothing.
type Filter struct {
	ScopeToCategories bool
	CategoryIDs       []uuid.UUID
	Keyword           string
	TeacherID         *uuid.UUID
}

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Course, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	FindIDs(ctx context.Context, filter Filter, sort []SortKey, offset, limit int) ([]uuid.UUID, error)
	NewestIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	TopViewedIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	RelatedIDs(ctx context.Context, course *entity.Course, limit int) ([]uuid.UUID, error)
	ExistsInCategories(ctx context.Context, categoryIDs []uuid.UUID) (bool, error)
	IncrementView(ctx context.Context, id uuid.UUID, delta int64) error
	Update(ctx context.Context, course *entity.Course) error
	UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error
	// Delete removes the course with its lessons, lesson progress, reviews,
	// enrollments and favorites.
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Course, error) {
	var courses []*entity.Course
	if len(ids) == 0 {
		return courses, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.ScopeToCategories {
		if len(filter.CategoryIDs) == 0 {
			query = query.Where("1 = 0")
		} else {
			query = query.Where("courses.category_id IN ?", filter.CategoryIDs)
		}
	}

	if filter.Keyword != "" {
		query = query.Where("LOWER(courses.name) LIKE ? ESCAPE '\\'", database.ContainsPattern(filter.Keyword))
	}

	if filter.TeacherID != nil {
		query = query.Where("courses.teacher_id = ?", *filter.TeacherID)
	}

	return query
}

func (r *courseRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	var total int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&entity.Course{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *courseRepository) FindIDs(ctx context.Context, filter Filter, sort []SortKey, offset, limit int) ([]uuid.UUID, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&entity.Course{}), filter)

	if needsReviewStats(sort) {
		stats := r.db.WithContext(ctx).
			Model(&entity.Review{}).
			Select("course_id, AVG(rating) AS average_rating, COUNT(*) AS review_count").
			Group("course_id")
		query = query.Joins("LEFT JOIN (?) AS review_stats ON review_stats.course_id = courses.id", stats)
	}

	for _, key := range sort {
		column, ok := sortColumns[key.Field]
		if !ok {
			continue
		}
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: column, Raw: true},
			Desc:   key.Desc,
		})
	}

	var ids []uuid.UUID
	if err := query.Offset(offset).Limit(limit).Pluck("courses.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func needsReviewStats(sort []SortKey) bool {
	for _, key := range sort {
		if key.Field == SortAverageRating || key.Field == SortNumberOfReviews {
			return true
		}
	}
	return false
}

func (r *courseRepository) NewestIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *courseRepository) TopViewedIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Order("view_count DESC").
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *courseRepository) RelatedIDs(ctx context.Context, course *entity.Course, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id").
		Where("courses.category_id = ? AND courses.id <> ?", course.CategoryID, course.ID).
		Group("courses.id").
		Order("COUNT(enrollments.id) DESC").
		Order("courses.id ASC").
		Limit(limit).
		Pluck("courses.id", &ids).Error
	return ids, err
}

func (r *courseRepository) ExistsInCategories(ctx context.Context, categoryIDs []uuid.UUID) (bool, error) {
	if len(categoryIDs) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Where("category_id IN ?", categoryIDs).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseRepository) IncrementView(ctx context.Context, id uuid.UUID, delta int64) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).
		Model(course).
		Select("name", "short_description", "detail_description", "category_id", "price", "percent_discount", "updated_at").
		Updates(course).Error
}

func (r *courseRepository) UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Where("id = ?", id).
		Update("image_url", imageURL).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&entity.CompletedLesson{},
			&entity.Lesson{},
			&entity.Review{},
			&entity.Favorite{},
			&entity.Enrollment{},
		} {
			if err := tx.Where("course_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&entity.Course{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
