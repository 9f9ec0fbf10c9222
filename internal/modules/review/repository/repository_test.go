package repository_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/internal/modules/review/repository"
	"anoa.com/elearning/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateAndPage(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewReviewRepository(db)
	ctx := context.Background()

	teacher := &entity.User{FullName: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: entity.RoleTeacher}
	category := &entity.Category{Name: "Programming"}
	require.NoError(t, db.Create(teacher).Error)
	require.NoError(t, db.Create(category).Error)

	rated := &entity.Course{TeacherID: teacher.ID, CategoryID: category.ID, Name: "Rated", ShortDescription: "x"}
	unrated := &entity.Course{TeacherID: teacher.ID, CategoryID: category.ID, Name: "Unrated", ShortDescription: "x"}
	require.NoError(t, db.Create(rated).Error)
	require.NoError(t, db.Create(unrated).Error)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var newestFirst []uuid.UUID
	for i, rating := range []int{4, 8, 10} {
		u := &entity.User{FullName: "Student", Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
		require.NoError(t, db.Create(u).Error)
		e := &entity.Enrollment{CourseID: rated.ID, StudentID: u.ID}
		require.NoError(t, db.Create(e).Error)
		r := &entity.Review{CourseID: rated.ID, UserID: u.ID, EnrollmentID: e.ID, Rating: rating, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.Create(ctx, r))
		newestFirst = append([]uuid.UUID{r.ID}, newestFirst...)

		exists, err := repo.ExistsByEnrollmentID(ctx, e.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	}

	stats, err := repo.AggregateByCourseIDs(ctx, []uuid.UUID{rated.ID, unrated.ID})
	require.NoError(t, err)
	assert.Equal(t, []repository.RatingStat{{CourseID: rated.ID, RatingSum: 22, ReviewCount: 3}}, stats)

	total, err := repo.CountByCourseID(ctx, rated.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	var paged []uuid.UUID
	for offset := 0; offset < 3; offset += 2 {
		rows, err := repo.FindByCourseID(ctx, rated.ID, offset, 2)
		require.NoError(t, err)
		for _, row := range rows {
			assert.Equal(t, "Student", row.Username)
			paged = append(paged, row.ID)
		}
	}
	assert.Equal(t, newestFirst, paged)
}
