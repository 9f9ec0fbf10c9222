package repository

import (
	"context"
	"errors"

	"anoa.com/elearning/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonRepository interface {
	// CreateNext numbers the lesson one past the course's current last lesson.
	CreateNext(ctx context.Context, lesson *entity.Lesson) error
	FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]*entity.Lesson, error)
	FindByNumber(ctx context.Context, courseID uuid.UUID, number int) (*entity.Lesson, error)
	UpdateInfo(ctx context.Context, lesson *entity.Lesson) error
	UpdateVideoURL(ctx context.Context, id uuid.UUID, videoURL string) error

	MarkCompleted(ctx context.Context, completed *entity.CompletedLesson) (bool, error)
	UnmarkCompleted(ctx context.Context, userID, lessonID uuid.UUID) error
	CompletedLessons(ctx context.Context, userID, courseID uuid.UUID) ([]*entity.Lesson, error)
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) CreateNext(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&entity.Lesson{}).
			Select("COALESCE(MAX(lesson_number), 0)").
			Where("course_id = ?", lesson.CourseID).
			Scan(&last).Error; err != nil {
			return err
		}
		lesson.LessonNumber = last + 1
		return tx.Create(lesson).Error
	})
}

func (r *lessonRepository) FindByCourseID(ctx context.Context, courseID uuid.UUID) ([]*entity.Lesson, error) {
	var lessons []*entity.Lesson
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("lesson_number ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) FindByNumber(ctx context.Context, courseID uuid.UUID, number int) (*entity.Lesson, error) {
	var lesson entity.Lesson
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND lesson_number = ?", courseID, number).
		First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) UpdateInfo(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).
		Model(lesson).
		Select("name", "description", "updated_at").
		Updates(lesson).Error
}

func (r *lessonRepository) UpdateVideoURL(ctx context.Context, id uuid.UUID, videoURL string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Lesson{}).
		Where("id = ?", id).
		Update("video_url", videoURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkCompleted reports whether a new record was written; marking a lesson
// twice is not an error.
func (r *lessonRepository) MarkCompleted(ctx context.Context, completed *entity.CompletedLesson) (bool, error) {
	err := r.db.WithContext(ctx).Create(completed).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return err == nil, err
}

func (r *lessonRepository) UnmarkCompleted(ctx context.Context, userID, lessonID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&entity.CompletedLesson{}).Error
}

func (r *lessonRepository) CompletedLessons(ctx context.Context, userID, courseID uuid.UUID) ([]*entity.Lesson, error) {
	var lessons []*entity.Lesson
	err := r.db.WithContext(ctx).
		Select("lessons.*").
		Joins("JOIN completed_lessons ON completed_lessons.lesson_id = lessons.id").
		Where("completed_lessons.user_id = ? AND completed_lessons.course_id = ?", userID, courseID).
		Order("lessons.lesson_number ASC").
		Find(&lessons).Error
	return lessons, err
}
