package course_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"anoa.com/elearning/internal/entity"
	categoryRepo "anoa.com/elearning/internal/modules/category/repository"
	"anoa.com/elearning/internal/modules/course/dto"
	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	course "anoa.com/elearning/internal/modules/course/service"
	enrollmentRepo "anoa.com/elearning/internal/modules/enrollment/repository"
	reviewRepo "anoa.com/elearning/internal/modules/review/repository"
	search "anoa.com/elearning/internal/modules/search/service"
	userRepo "anoa.com/elearning/internal/modules/user/repository"
	"anoa.com/elearning/internal/testutil"
	"anoa.com/elearning/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeIndex struct {
	indexed map[uuid.UUID]string
	deleted []uuid.UUID
}

func (f *fakeIndex) IndexCourse(ctx context.Context, c *entity.Course, teacherName, categoryName string) error {
	f.indexed[c.ID] = teacherName + "/" + categoryName
	return nil
}

func (f *fakeIndex) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Suggest(ctx context.Context, query string, limit int) ([]search.Suggestion, error) {
	return nil, nil
}

type fakeStorage struct {
	uploaded map[string]string
	deleted  []string
}

func (f *fakeStorage) UploadImage(ctx context.Context, r io.Reader, publicID, fileName string) (string, error) {
	body, _ := io.ReadAll(r)
	f.uploaded[publicID] = string(body)
	return "https://res.cloudinary.com/demo/image/upload/v1/elearning/" + publicID + ".webp", nil
}

func (f *fakeStorage) DeleteImage(ctx context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

type fixture struct {
	db       *gorm.DB
	svc      course.Service
	index    *fakeIndex
	storage  *fakeStorage
	teacher  course.Actor
	student  course.Actor
	category *entity.Category
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	f := &fixture{
		db:      db,
		index:   &fakeIndex{indexed: map[uuid.UUID]string{}},
		storage: &fakeStorage{uploaded: map[string]string{}},
	}
	f.svc = course.NewService(
		courseRepo.NewCourseRepository(db),
		categoryRepo.NewCategoryRepository(db),
		enrollmentRepo.NewEnrollmentRepository(db),
		reviewRepo.NewReviewRepository(db),
		userRepo.NewUserRepository(db),
		f.storage,
		f.index,
		nil,
	)

	teacher := &entity.User{FullName: "Ada Lovelace", Email: "ada@example.com", PasswordHash: "x", Role: entity.RoleTeacher}
	student := &entity.User{FullName: "Bob", Email: "bob@example.com", PasswordHash: "x", Role: entity.RoleStudent}
	require.NoError(t, db.Create(teacher).Error)
	require.NoError(t, db.Create(student).Error)
	f.teacher = course.Actor{ID: teacher.ID, Role: teacher.Role}
	f.student = course.Actor{ID: student.ID, Role: student.Role}

	f.category = &entity.Category{Name: "Programming"}
	require.NoError(t, db.Create(f.category).Error)
	return f
}

func (f *fixture) createCourse(t *testing.T, name string) *dto.CourseResponse {
	created, err := f.svc.CreateCourse(context.Background(), f.teacher, dto.CreateCourseRequest{
		Name:             name,
		ShortDescription: "short",
		Price:            10,
		CategoryID:       f.category.ID.String(),
	})
	require.NoError(t, err)
	return created
}

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)

	created := f.createCourse(t, "Go Basics")
	assert.Equal(t, f.teacher.ID, created.TeacherID)
	assert.Equal(t, "Ada Lovelace/Programming", f.index.indexed[created.ID])

	_, err := f.svc.CreateCourse(context.Background(), f.teacher, dto.CreateCourseRequest{
		Name:       "Nowhere",
		CategoryID: uuid.NewString(),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateCourse_OwnershipRules(t *testing.T) {
	f := newFixture(t)
	created := f.createCourse(t, "Go Basics")
	req := dto.UpdateCourseRequest{
		Name:             "Go Fundamentals",
		ShortDescription: "short",
		Price:            20,
		PercentDiscount:  10,
		CategoryID:       f.category.ID.String(),
	}

	_, err := f.svc.UpdateCourse(context.Background(), f.student, created.ID, req)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	admin := course.Actor{ID: uuid.New(), Role: entity.RoleAdmin}
	updated, err := f.svc.UpdateCourse(context.Background(), admin, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Go Fundamentals", updated.Name)
	assert.Equal(t, 10, updated.PercentDiscount)

	var stored entity.Course
	require.NoError(t, f.db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, 20.0, stored.Price)
}

func TestDeleteCourse_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createCourse(t, "Go Basics")

	_, err := f.svc.UploadImage(ctx, f.teacher, created.ID, strings.NewReader("png"), "cover.png")
	require.NoError(t, err)
	_, err = f.svc.Enroll(ctx, created.ID, f.student.ID)
	require.NoError(t, err)
	_, err = f.svc.AddReview(ctx, created.ID, f.student.ID, dto.CreateReviewRequest{Rating: intPtr(8)})
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&entity.Lesson{CourseID: created.ID, LessonNumber: 1, Name: "Intro"}).Error)
	require.NoError(t, f.db.Create(&entity.Favorite{CourseID: created.ID, UserID: f.student.ID}).Error)

	require.NoError(t, f.svc.DeleteCourse(ctx, f.teacher, created.ID))

	for _, model := range []any{&entity.Course{}, &entity.Enrollment{}, &entity.Review{}, &entity.Lesson{}, &entity.Favorite{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows left", model)
	}
	assert.Equal(t, []uuid.UUID{created.ID}, f.index.deleted)
	assert.Len(t, f.storage.deleted, 1)

	err = f.svc.DeleteCourse(ctx, f.teacher, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteTeacherCourses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createCourse(t, "Go Basics")
	second := f.createCourse(t, "Go Advanced")

	other := &entity.User{FullName: "Grace", Email: "grace@example.com", PasswordHash: "x", Role: entity.RoleTeacher}
	require.NoError(t, f.db.Create(other).Error)
	kept, err := f.svc.CreateCourse(ctx, course.Actor{ID: other.ID, Role: other.Role}, dto.CreateCourseRequest{
		Name:             "Compilers",
		ShortDescription: "short",
		CategoryID:       f.category.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTeacherCourses(ctx, f.teacher.ID))

	var remaining []uuid.UUID
	require.NoError(t, f.db.Model(&entity.Course{}).Pluck("id", &remaining).Error)
	assert.Equal(t, []uuid.UUID{kept.ID}, remaining)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, f.index.deleted)

	require.NoError(t, f.svc.DeleteTeacherCourses(ctx, f.teacher.ID))
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	created := f.createCourse(t, "Go Basics")

	updated, err := f.svc.UploadImage(context.Background(), f.teacher, created.ID, strings.NewReader("bytes"), "cover.jpg")
	require.NoError(t, err)
	assert.Contains(t, updated.ImageURL, "course_"+created.ID.String())
	assert.Equal(t, "bytes", f.storage.uploaded["course_"+created.ID.String()])

	_, err = f.svc.UploadImage(context.Background(), f.student, created.ID, strings.NewReader("bytes"), "cover.jpg")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestEnroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createCourse(t, "Go Basics")

	enrollment, err := f.svc.Enroll(ctx, created.ID, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", enrollment.CourseName)

	_, err = f.svc.Enroll(ctx, created.ID, f.student.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.svc.Enroll(ctx, uuid.New(), f.student.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	mine, err := f.svc.GetStudentEnrollments(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Go Basics", mine[0].CourseName)

	roster, err := f.svc.GetCourseEnrollments(ctx, f.teacher, created.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Bob", roster[0].StudentName)

	_, err = f.svc.GetCourseEnrollments(ctx, f.student, created.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestAddReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createCourse(t, "Go Basics")

	_, err := f.svc.AddReview(ctx, created.ID, f.student.ID, dto.CreateReviewRequest{Rating: intPtr(7)})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.Enroll(ctx, created.ID, f.student.ID)
	require.NoError(t, err)

	_, err = f.svc.AddReview(ctx, created.ID, f.student.ID, dto.CreateReviewRequest{Rating: intPtr(11)})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	review, err := f.svc.AddReview(ctx, created.ID, f.student.ID, dto.CreateReviewRequest{Rating: intPtr(0), Text: "meh"})
	require.NoError(t, err)
	assert.Equal(t, 0, review.Rating)
	assert.Equal(t, "Bob", review.Username)

	_, err = f.svc.AddReview(ctx, created.ID, f.student.ID, dto.CreateReviewRequest{Rating: intPtr(9)})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestGetReviews_Paginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createCourse(t, "Go Basics")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		student := &entity.User{FullName: "S", Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
		require.NoError(t, f.db.Create(student).Error)
		enrollment := &entity.Enrollment{CourseID: created.ID, StudentID: student.ID}
		require.NoError(t, f.db.Create(enrollment).Error)
		require.NoError(t, f.db.Create(&entity.Review{
			CourseID:     created.ID,
			UserID:       student.ID,
			EnrollmentID: enrollment.ID,
			Rating:       i + 1,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}

	page, err := f.svc.GetReviews(ctx, created.ID, 1, intPtr(2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalResults)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Results, 2)
	assert.Equal(t, 3, page.Results[0].Rating)
	assert.Equal(t, 2, page.Results[1].Rating)

	page, err = f.svc.GetReviews(ctx, created.ID, 2, intPtr(2))
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, 1, page.Results[0].Rating)

	_, err = f.svc.GetReviews(ctx, uuid.New(), 1, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func intPtr(v int) *int { return &v }
