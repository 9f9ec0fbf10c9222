package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Ranking is the per-request membership of the "new" and "bestseller" lists.
type Ranking struct {
	newest      map[uuid.UUID]struct{}
	bestsellers map[uuid.UUID]struct{}
}

func newRanking(newest, bestsellers []uuid.UUID) *Ranking {
	r := &Ranking{
		newest:      make(map[uuid.UUID]struct{}, len(newest)),
		bestsellers: make(map[uuid.UUID]struct{}, len(bestsellers)),
	}
	for _, id := range newest {
		r.newest[id] = struct{}{}
	}
	for _, id := range bestsellers {
		r.bestsellers[id] = struct{}{}
	}
	return r
}

func (r *Ranking) IsNew(id uuid.UUID) bool {
	_, ok := r.newest[id]
	return ok
}

func (r *Ranking) IsBestseller(id uuid.UUID) bool {
	_, ok := r.bestsellers[id]
	return ok
}

type RankingOptions struct {
	NewLimit        int
	BestsellerLimit int
	// Window limits bestseller counting to recent enrollments; zero means all-time.
	Window time.Duration
}

type RankingClassifier struct {
	courses     CourseStore
	enrollments EnrollmentStore
	opts        RankingOptions
	now         func() time.Time
}

func NewRankingClassifier(courses CourseStore, enrollments EnrollmentStore, opts RankingOptions) *RankingClassifier {
	return &RankingClassifier{
		courses:     courses,
		enrollments: enrollments,
		opts:        opts,
		now:         time.Now,
	}
}

// NewestCourseIDs returns the most recently created courses, ties by id.
func (c *RankingClassifier) NewestCourseIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		return []uuid.UUID{}, nil
	}
	return c.courses.NewestIDs(ctx, limit)
}

// BestsellerCourseIDs returns the courses with the most enrollments, counting
// only enrollments inside window when it is set. Ties go to the lower id.
func (c *RankingClassifier) BestsellerCourseIDs(ctx context.Context, limit int, window *time.Duration) ([]uuid.UUID, error) {
	if limit <= 0 {
		return []uuid.UUID{}, nil
	}

	var since *time.Time
	if window != nil && *window > 0 {
		t := c.now().Add(-*window)
		since = &t
	}

	counts, err := c.enrollments.CountGroupedByCourse(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(counts))
	for _, cc := range counts {
		ids = append(ids, cc.CourseID)
	}
	return ids, nil
}

func (c *RankingClassifier) window() *time.Duration {
	if c.opts.Window <= 0 {
		return nil
	}
	w := c.opts.Window
	return &w
}

// Classify computes both candidate lists once so every course of a page is
// flagged by set membership.
func (c *RankingClassifier) Classify(ctx context.Context) (*Ranking, error) {
	var newest, bestsellers []uuid.UUID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		newest, err = c.NewestCourseIDs(gctx, c.opts.NewLimit)
		return err
	})
	g.Go(func() error {
		var err error
		bestsellers, err = c.BestsellerCourseIDs(gctx, c.opts.BestsellerLimit, c.window())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newRanking(newest, bestsellers), nil
}
