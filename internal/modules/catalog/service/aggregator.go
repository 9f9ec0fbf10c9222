package catalog

import (
	"context"
	"math"

	"github.com/google/uuid"
)

// Aggregate holds the review-derived signals of one course. AverageRating is
// the unrounded mean on the 0-10 scale.
type Aggregate struct {
	AverageRating   float64
	NumberOfReviews int64
}

// RoundedRating is the display value, rounded to two decimals.
func (a Aggregate) RoundedRating() float64 {
	return math.Round(a.AverageRating*100) / 100
}

// CourseAggregator computes rating and enrollment signals for a batch of
// courses with one grouped query per collection.
type CourseAggregator struct {
	reviews     ReviewStore
	enrollments EnrollmentStore
}

func NewCourseAggregator(reviews ReviewStore, enrollments EnrollmentStore) *CourseAggregator {
	return &CourseAggregator{reviews: reviews, enrollments: enrollments}
}

// ComputeAggregates returns an entry for every requested id; courses without
// reviews get the zero Aggregate.
func (a *CourseAggregator) ComputeAggregates(ctx context.Context, courseIDs []uuid.UUID) (map[uuid.UUID]Aggregate, error) {
	result := make(map[uuid.UUID]Aggregate, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	stats, err := a.reviews.AggregateByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range courseIDs {
		result[id] = Aggregate{}
	}
	for _, stat := range stats {
		if stat.ReviewCount == 0 {
			continue
		}
		result[stat.CourseID] = Aggregate{
			AverageRating:   float64(stat.RatingSum) / float64(stat.ReviewCount),
			NumberOfReviews: stat.ReviewCount,
		}
	}

	return result, nil
}

func (a *CourseAggregator) CountEnrollments(ctx context.Context, courseID uuid.UUID) (int64, error) {
	return a.enrollments.CountByCourseID(ctx, courseID)
}

// CountEnrollmentsBatch returns an entry for every requested id.
func (a *CourseAggregator) CountEnrollmentsBatch(ctx context.Context, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	result := make(map[uuid.UUID]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	counts, err := a.enrollments.CountByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range courseIDs {
		result[id] = 0
	}
	for _, c := range counts {
		result[c.CourseID] = c.EnrollmentCount
	}
	return result, nil
}
