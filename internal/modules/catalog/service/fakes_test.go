package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"anoa.com/elearning/internal/entity"
	category "anoa.com/elearning/internal/modules/category/service"
	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	enrollmentRepo "anoa.com/elearning/internal/modules/enrollment/repository"
	reviewRepo "anoa.com/elearning/internal/modules/review/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeStore is an in-memory catalog backing every port the service needs.
type fakeStore struct {
	courses     []*entity.Course
	categories  []*entity.Category
	teachers    map[uuid.UUID]string
	ratings     map[uuid.UUID][]int
	enrollments []*entity.Enrollment

	views    map[uuid.UUID]int
	viewErr  error
	countErr error

	reviewCalls int
	lastSort    []courseRepo.SortKey
	lastSince   *time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teachers: map[uuid.UUID]string{},
		ratings:  map[uuid.UUID][]int{},
		views:    map[uuid.UUID]int{},
	}
}

func (f *fakeStore) addCategory(id uuid.UUID, name string, parent *uuid.UUID) {
	f.categories = append(f.categories, &entity.Category{ID: id, Name: name, ParentID: parent})
}

func (f *fakeStore) addCourse(id, categoryID uuid.UUID, name string, createdAt time.Time) *entity.Course {
	c := &entity.Course{
		ID:         id,
		TeacherID:  teacherID,
		CategoryID: categoryID,
		Name:       name,
		Price:      100,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	f.courses = append(f.courses, c)
	return c
}

func (f *fakeStore) enroll(courseID uuid.UUID, n int, at time.Time) {
	for i := 0; i < n; i++ {
		f.enrollments = append(f.enrollments, &entity.Enrollment{ID: uuid.New(), CourseID: courseID, StudentID: uuid.New(), CreatedAt: at})
	}
}

func lessID(a, b uuid.UUID) bool { return a.String() < b.String() }

func (f *fakeStore) match(filter courseRepo.Filter) []*entity.Course {
	var out []*entity.Course
	for _, c := range f.courses {
		if filter.ScopeToCategories {
			found := false
			for _, id := range filter.CategoryIDs {
				if id == c.CategoryID {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Keyword)) {
			continue
		}
		if filter.TeacherID != nil && *filter.TeacherID != c.TeacherID {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (f *fakeStore) Count(ctx context.Context, filter courseRepo.Filter) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.match(filter))), nil
}

func (f *fakeStore) FindIDs(ctx context.Context, filter courseRepo.Filter, keys []courseRepo.SortKey, offset, limit int) ([]uuid.UUID, error) {
	f.lastSort = keys
	matched := f.match(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		for _, k := range keys {
			a, b := matched[i], matched[j]
			var less, greater bool
			switch k.Field {
			case courseRepo.SortName:
				less, greater = a.Name < b.Name, a.Name > b.Name
			case courseRepo.SortPrice:
				less, greater = a.Price < b.Price, a.Price > b.Price
			case courseRepo.SortCreatedAt:
				less, greater = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.After(b.CreatedAt)
			default:
				less, greater = lessID(a.ID, b.ID), lessID(b.ID, a.ID)
			}
			if k.Desc {
				less, greater = greater, less
			}
			if less {
				return true
			}
			if greater {
				return false
			}
		}
		return false
	})

	ids := []uuid.UUID{}
	for i, c := range matched {
		if i < offset {
			continue
		}
		if limit >= 0 && len(ids) == limit {
			break
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	for _, c := range f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Course, error) {
	var out []*entity.Course
	for _, c := range f.courses {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) NewestIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	sorted := append([]*entity.Course(nil), f.courses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return lessID(sorted[i].ID, sorted[j].ID)
	})
	return firstIDs(sorted, limit), nil
}

func (f *fakeStore) TopViewedIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	sorted := append([]*entity.Course(nil), f.courses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ViewCount != sorted[j].ViewCount {
			return sorted[i].ViewCount > sorted[j].ViewCount
		}
		return lessID(sorted[i].ID, sorted[j].ID)
	})
	return firstIDs(sorted, limit), nil
}

func (f *fakeStore) RelatedIDs(ctx context.Context, course *entity.Course, limit int) ([]uuid.UUID, error) {
	counts := f.countAll(nil)
	var candidates []*entity.Course
	for _, c := range f.courses {
		if c.CategoryID == course.CategoryID && c.ID != course.ID {
			candidates = append(candidates, c)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := counts[candidates[i].ID], counts[candidates[j].ID]
		if a != b {
			return a > b
		}
		return lessID(candidates[i].ID, candidates[j].ID)
	})
	return firstIDs(candidates, limit), nil
}

func firstIDs(courses []*entity.Course, limit int) []uuid.UUID {
	ids := []uuid.UUID{}
	for _, c := range courses {
		if len(ids) == limit {
			break
		}
		ids = append(ids, c.ID)
	}
	return ids
}

func (f *fakeStore) AggregateByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]reviewRepo.RatingStat, error) {
	f.reviewCalls++
	var stats []reviewRepo.RatingStat
	for _, id := range courseIDs {
		ratings := f.ratings[id]
		if len(ratings) == 0 {
			continue
		}
		stat := reviewRepo.RatingStat{CourseID: id, ReviewCount: int64(len(ratings))}
		for _, r := range ratings {
			stat.RatingSum += int64(r)
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

func (f *fakeStore) countAll(since *time.Time) map[uuid.UUID]int64 {
	counts := map[uuid.UUID]int64{}
	for _, e := range f.enrollments {
		if since != nil && e.CreatedAt.Before(*since) {
			continue
		}
		counts[e.CourseID]++
	}
	return counts
}

func (f *fakeStore) CountByCourseID(ctx context.Context, courseID uuid.UUID) (int64, error) {
	return f.countAll(nil)[courseID], nil
}

func (f *fakeStore) CountByCourseIDs(ctx context.Context, courseIDs []uuid.UUID) ([]enrollmentRepo.CourseCount, error) {
	counts := f.countAll(nil)
	var out []enrollmentRepo.CourseCount
	for _, id := range courseIDs {
		if n, ok := counts[id]; ok {
			out = append(out, enrollmentRepo.CourseCount{CourseID: id, EnrollmentCount: n})
		}
	}
	return out, nil
}

func (f *fakeStore) CountGroupedByCourse(ctx context.Context, since *time.Time, limit int) ([]enrollmentRepo.CourseCount, error) {
	f.lastSince = since
	var out []enrollmentRepo.CourseCount
	for id, n := range f.countAll(since) {
		out = append(out, enrollmentRepo.CourseCount{CourseID: id, EnrollmentCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EnrollmentCount != out[j].EnrollmentCount {
			return out[i].EnrollmentCount > out[j].EnrollmentCount
		}
		return lessID(out[i].CourseID, out[j].CourseID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ResolveSubtree(ctx context.Context, id *uuid.UUID) (category.Scope, error) {
	if id == nil {
		return category.Scope{Unrestricted: true}, nil
	}
	ids := []uuid.UUID{}
	queue := []uuid.UUID{}
	for _, c := range f.categories {
		if c.ID == *id {
			queue = append(queue, c.ID)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		ids = append(ids, current)
		for _, c := range f.categories {
			if c.ParentID != nil && *c.ParentID == current {
				queue = append(queue, c.ID)
			}
		}
	}
	return category.Scope{IDs: ids}, nil
}

func (f *fakeStore) Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	for _, c := range f.categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (f *fakeStore) DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return f.teachers, nil
}

func (f *fakeStore) IncrementView(ctx context.Context, courseID uuid.UUID) error {
	if f.viewErr != nil {
		return f.viewErr
	}
	f.views[courseID]++
	return nil
}
