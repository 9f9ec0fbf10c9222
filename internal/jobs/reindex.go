package jobs

import (
	"context"
	"fmt"

	"anoa.com/elearning/internal/entity"
	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	searchService "anoa.com/elearning/internal/modules/search/service"
	"anoa.com/elearning/pkg/logger"
	"github.com/google/uuid"
)

const defaultReindexBatch = 100

type CourseSource interface {
	FindIDs(ctx context.Context, filter courseRepo.Filter, sort []courseRepo.SortKey, offset, limit int) ([]uuid.UUID, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Course, error)
}

type NameLookup interface {
	Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type TeacherLookup interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// SearchReindexJob rewrites every course document in the search index from
// the database, repairing entries missed while the index was unreachable.
type SearchReindexJob struct {
	courses    CourseSource
	teachers   TeacherLookup
	categories NameLookup
	index      searchService.CourseIndex
	schedule   string
	batchSize  int
	log        *logger.Logger
}

func NewSearchReindexJob(courses CourseSource, teachers TeacherLookup, categories NameLookup, index searchService.CourseIndex, schedule string, log *logger.Logger) *SearchReindexJob {
	if log == nil {
		log = logger.NewNop()
	}
	return &SearchReindexJob{
		courses:    courses,
		teachers:   teachers,
		categories: categories,
		index:      index,
		schedule:   schedule,
		batchSize:  defaultReindexBatch,
		log:        log,
	}
}

func (j *SearchReindexJob) Name() string     { return "search-reindex" }
func (j *SearchReindexJob) Schedule() string { return j.schedule }

func (j *SearchReindexJob) Run(ctx context.Context) error {
	sort := []courseRepo.SortKey{{Field: courseRepo.SortID}}
	indexed := 0

	for offset := 0; ; offset += j.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		ids, err := j.courses.FindIDs(ctx, courseRepo.Filter{}, sort, offset, j.batchSize)
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		n, err := j.indexBatch(ctx, ids)
		indexed += n
		if err != nil {
			return err
		}
		if len(ids) < j.batchSize {
			break
		}
	}

	j.log.Info("search index rebuilt", "courses", indexed)
	return nil
}

func (j *SearchReindexJob) indexBatch(ctx context.Context, ids []uuid.UUID) (int, error) {
	courses, err := j.courses.FindByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load courses: %w", err)
	}

	teacherIDs := make([]uuid.UUID, 0, len(courses))
	categoryIDs := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		teacherIDs = append(teacherIDs, c.TeacherID)
		categoryIDs = append(categoryIDs, c.CategoryID)
	}

	teachers, err := j.teachers.DisplayNames(ctx, teacherIDs)
	if err != nil {
		return 0, fmt.Errorf("load teacher names: %w", err)
	}
	categories, err := j.categories.Names(ctx, categoryIDs)
	if err != nil {
		return 0, fmt.Errorf("load category names: %w", err)
	}

	for i, c := range courses {
		if err := j.index.IndexCourse(ctx, c, teachers[c.TeacherID], categories[c.CategoryID]); err != nil {
			return i, fmt.Errorf("index course %s: %w", c.ID, err)
		}
	}
	return len(courses), nil
}
