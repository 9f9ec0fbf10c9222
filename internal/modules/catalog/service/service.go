package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/internal/modules/catalog/dto"
	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	"anoa.com/elearning/pkg/apperror"
	commonDto "anoa.com/elearning/pkg/dto"
	"anoa.com/elearning/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type CoursePage = commonDto.Page[dto.CourseView]

type CatalogService interface {
	Search(ctx context.Context, query dto.SearchQuery) (*CoursePage, error)
	GetCourseByID(ctx context.Context, id uuid.UUID) (*dto.CourseView, error)
	GetNewestCourses(ctx context.Context) ([]dto.CourseView, error)
	GetTopViewedCourses(ctx context.Context) ([]dto.CourseView, error)
	GetPopularCourses(ctx context.Context) ([]dto.CourseView, error)
	GetRelatedCourses(ctx context.Context, id uuid.UUID) ([]dto.CourseView, error)
	GetTeacherCourses(ctx context.Context, teacherID uuid.UUID, pageNumber int, pageSize *int) (*CoursePage, error)
	// GetCoursesByIDs assembles views in the given order, skipping unknown ids.
	GetCoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]dto.CourseView, error)
}

type Options struct {
	NewLimit        int
	BestsellerLimit int
	PopularLimit    int
	TopViewedLimit  int
	RelatedLimit    int
	PopularWindow   time.Duration
}

type Dependencies struct {
	Courses     CourseStore
	Reviews     ReviewStore
	Enrollments EnrollmentStore
	Categories  CategoryResolver
	Teachers    TeacherDirectory
	Views       ViewCounter
	Logger      *logger.Logger
}

type catalogService struct {
	courses    CourseStore
	categories CategoryResolver
	teachers   TeacherDirectory
	views      ViewCounter
	aggregator *CourseAggregator
	ranking    *RankingClassifier
	opts       Options
	log        *logger.Logger
}

func NewCatalogService(deps Dependencies, opts Options) CatalogService {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &catalogService{
		courses:    deps.Courses,
		categories: deps.Categories,
		teachers:   deps.Teachers,
		views:      deps.Views,
		aggregator: NewCourseAggregator(deps.Reviews, deps.Enrollments),
		ranking: NewRankingClassifier(deps.Courses, deps.Enrollments, RankingOptions{
			NewLimit:        opts.NewLimit,
			BestsellerLimit: opts.BestsellerLimit,
			Window:          opts.PopularWindow,
		}),
		opts: opts,
		log:  log.With("component", "catalog"),
	}
}

func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, apperror.ErrUnavailable, err)
}

func (s *catalogService) Search(ctx context.Context, query dto.SearchQuery) (*CoursePage, error) {
	page, err := commonDto.NewPageRequest(query.PageNumber, query.PageSize)
	if err != nil {
		return nil, err
	}
	sortKeys, err := ParseSortSpec(query.Sort)
	if err != nil {
		return nil, err
	}

	scope, err := s.categories.ResolveSubtree(ctx, query.CategoryID)
	if err != nil {
		return nil, unavailable("resolve category scope", err)
	}

	filter := courseRepo.Filter{
		Keyword:   strings.TrimSpace(query.Keyword),
		TeacherID: query.TeacherID,
	}
	if !scope.Unrestricted {
		filter.ScopeToCategories = true
		filter.CategoryIDs = scope.IDs
	}

	total, err := s.courses.Count(ctx, filter)
	if err != nil {
		return nil, unavailable("count courses", err)
	}

	var views []dto.CourseView
	if total > int64(page.Offset()) {
		ids, err := s.courses.FindIDs(ctx, filter, sortKeys, page.Offset(), page.Limit())
		if err != nil {
			return nil, unavailable("list courses", err)
		}
		if views, err = s.assemble(ctx, ids); err != nil {
			return nil, err
		}
	}

	return commonDto.NewPage(page, total, views), nil
}

func (s *catalogService) GetTeacherCourses(ctx context.Context, teacherID uuid.UUID, pageNumber int, pageSize *int) (*CoursePage, error) {
	return s.Search(ctx, dto.SearchQuery{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		Sort:       "createdAt.desc",
		TeacherID:  &teacherID,
	})
}

// GetCourseByID counts a view before assembling the course. A failed counter
// update never fails the read.
func (s *catalogService) GetCourseByID(ctx context.Context, id uuid.UUID) (*dto.CourseView, error) {
	if _, err := s.findCourse(ctx, id); err != nil {
		return nil, err
	}

	if s.views != nil {
		if err := s.views.IncrementView(ctx, id); err != nil {
			s.log.Warn("failed to record course view", "course_id", id, "error", err)
		}
	}

	views, err := s.assemble(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		// deleted between the lookup and the assemble step
		return nil, fmt.Errorf("course %s: %w", id, apperror.ErrNotFound)
	}
	return &views[0], nil
}

func (s *catalogService) GetNewestCourses(ctx context.Context) ([]dto.CourseView, error) {
	ids, err := s.ranking.NewestCourseIDs(ctx, s.opts.NewLimit)
	if err != nil {
		return nil, unavailable("newest courses", err)
	}
	return s.assemble(ctx, ids)
}

func (s *catalogService) GetTopViewedCourses(ctx context.Context) ([]dto.CourseView, error) {
	ids, err := s.courses.TopViewedIDs(ctx, s.opts.TopViewedLimit)
	if err != nil {
		return nil, unavailable("top viewed courses", err)
	}
	return s.assemble(ctx, ids)
}

func (s *catalogService) GetPopularCourses(ctx context.Context) ([]dto.CourseView, error) {
	ids, err := s.ranking.BestsellerCourseIDs(ctx, s.opts.PopularLimit, s.ranking.window())
	if err != nil {
		return nil, unavailable("popular courses", err)
	}
	return s.assemble(ctx, ids)
}

func (s *catalogService) GetRelatedCourses(ctx context.Context, id uuid.UUID) ([]dto.CourseView, error) {
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	ids, err := s.courses.RelatedIDs(ctx, course, s.opts.RelatedLimit)
	if err != nil {
		return nil, unavailable("related courses", err)
	}
	return s.assemble(ctx, ids)
}

func (s *catalogService) GetCoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]dto.CourseView, error) {
	return s.assemble(ctx, ids)
}

func (s *catalogService) findCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %s: %w", id, apperror.ErrNotFound)
		}
		return nil, unavailable("find course", err)
	}
	return course, nil
}

// assemble enriches the given course ids into views, keeping their order.
// Ids that no longer resolve to a course are skipped.
func (s *catalogService) assemble(ctx context.Context, ids []uuid.UUID) ([]dto.CourseView, error) {
	if len(ids) == 0 {
		return []dto.CourseView{}, nil
	}

	var (
		courses     []*entity.Course
		aggregates  map[uuid.UUID]Aggregate
		enrollments map[uuid.UUID]int64
		ranking     *Ranking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if courses, err = s.courses.FindByIDs(gctx, ids); err != nil {
			return unavailable("load courses", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if aggregates, err = s.aggregator.ComputeAggregates(gctx, ids); err != nil {
			return unavailable("aggregate reviews", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if enrollments, err = s.aggregator.CountEnrollmentsBatch(gctx, ids); err != nil {
			return unavailable("count enrollments", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ranking, err = s.ranking.Classify(gctx); err != nil {
			return unavailable("classify courses", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*entity.Course, len(courses))
	teacherIDs := make([]uuid.UUID, 0, len(courses))
	categoryIDs := make([]uuid.UUID, 0, len(courses))
	seenTeacher := make(map[uuid.UUID]bool)
	seenCategory := make(map[uuid.UUID]bool)
	for _, c := range courses {
		byID[c.ID] = c
		if !seenTeacher[c.TeacherID] {
			seenTeacher[c.TeacherID] = true
			teacherIDs = append(teacherIDs, c.TeacherID)
		}
		if !seenCategory[c.CategoryID] {
			seenCategory[c.CategoryID] = true
			categoryIDs = append(categoryIDs, c.CategoryID)
		}
	}

	var teacherNames, categoryNames map[uuid.UUID]string
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if teacherNames, err = s.teachers.DisplayNames(gctx, teacherIDs); err != nil {
			return unavailable("load teacher names", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categoryNames, err = s.categories.Names(gctx, categoryIDs); err != nil {
			return unavailable("load category names", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]dto.CourseView, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			continue
		}
		agg := aggregates[id]
		views = append(views, dto.CourseView{
			ID:                c.ID,
			Name:              c.Name,
			ShortDescription:  c.ShortDescription,
			DetailDescription: c.DetailDescription,
			ImageURL:          c.ImageURL,
			Price:             c.Price,
			PercentDiscount:   c.PercentDiscount,
			ViewCount:         c.ViewCount,
			TeacherID:         c.TeacherID,
			Teacher:           teacherNames[c.TeacherID],
			CategoryID:        c.CategoryID,
			Category:          categoryNames[c.CategoryID],
			AverageRating:     agg.RoundedRating(),
			NumberOfReviews:   agg.NumberOfReviews,
			Enrollments:       enrollments[id],
			IsNew:             ranking.IsNew(id),
			IsBestseller:      ranking.IsBestseller(id),
			CreatedAt:         c.CreatedAt,
			UpdatedAt:         c.UpdatedAt,
		})
	}
	return views, nil
}
