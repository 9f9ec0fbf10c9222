package lesson_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"anoa.com/elearning/internal/entity"
	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	course "anoa.com/elearning/internal/modules/course/service"
	enrollmentRepo "anoa.com/elearning/internal/modules/enrollment/repository"
	"anoa.com/elearning/internal/modules/lesson/dto"
	"anoa.com/elearning/internal/modules/lesson/repository"
	lesson "anoa.com/elearning/internal/modules/lesson/service"
	"anoa.com/elearning/internal/testutil"
	"anoa.com/elearning/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeVideos struct {
	uploaded map[string]string
	fail     error
}

func (f *fakeVideos) UploadVideo(ctx context.Context, r io.Reader, publicID, fileName string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	body, _ := io.ReadAll(r)
	f.uploaded[publicID] = string(body)
	return "https://res.cloudinary.com/demo/video/upload/v1/elearning/" + publicID + ".mp4", nil
}

func (f *fakeVideos) DeleteVideo(ctx context.Context, fileURL string) error {
	return nil
}

type fixture struct {
	db      *gorm.DB
	svc     lesson.Service
	videos  *fakeVideos
	teacher course.Actor
	student course.Actor
	course  *entity.Course
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	f := &fixture{db: db, videos: &fakeVideos{uploaded: map[string]string{}}}
	f.svc = lesson.NewService(
		repository.NewLessonRepository(db),
		courseRepo.NewCourseRepository(db),
		enrollmentRepo.NewEnrollmentRepository(db),
		f.videos,
		nil,
	)

	teacher := &entity.User{FullName: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: entity.RoleTeacher}
	student := &entity.User{FullName: "Bob", Email: "bob@example.com", PasswordHash: "x", Role: entity.RoleStudent}
	category := &entity.Category{Name: "Programming"}
	require.NoError(t, db.Create(teacher).Error)
	require.NoError(t, db.Create(student).Error)
	require.NoError(t, db.Create(category).Error)
	f.teacher = course.Actor{ID: teacher.ID, Role: teacher.Role}
	f.student = course.Actor{ID: student.ID, Role: student.Role}

	f.course = &entity.Course{TeacherID: teacher.ID, CategoryID: category.ID, Name: "Go Basics", ShortDescription: "short"}
	require.NoError(t, db.Create(f.course).Error)
	return f
}

func (f *fixture) addLesson(t *testing.T, name string) *dto.LessonResponse {
	created, err := f.svc.AddLesson(context.Background(), f.teacher, f.course.ID, dto.CreateLessonRequest{Name: name}, nil)
	require.NoError(t, err)
	return created
}

func (f *fixture) enroll(t *testing.T) {
	require.NoError(t, f.db.Create(&entity.Enrollment{CourseID: f.course.ID, StudentID: f.student.ID}).Error)
}

func TestAddLesson_NumbersSequentially(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, 1, f.addLesson(t, "Setup").LessonNumber)
	assert.Equal(t, 2, f.addLesson(t, "Types").LessonNumber)

	admin := course.Actor{ID: uuid.New(), Role: entity.RoleAdmin}
	third, err := f.svc.AddLesson(context.Background(), admin, f.course.ID, dto.CreateLessonRequest{Name: "Slices"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, third.LessonNumber)

	lessons, err := f.svc.GetLessons(context.Background(), f.course.ID)
	require.NoError(t, err)
	var names []string
	for _, l := range lessons {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"Setup", "Types", "Slices"}, names)
}

func TestAddLesson_Permissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddLesson(ctx, f.student, f.course.ID, dto.CreateLessonRequest{Name: "Nope"}, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.AddLesson(ctx, f.teacher, uuid.New(), dto.CreateLessonRequest{Name: "Nope"}, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAddLesson_WithVideo(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.AddLesson(context.Background(), f.teacher, f.course.ID,
		dto.CreateLessonRequest{Name: "Intro"},
		&lesson.Video{Body: strings.NewReader("frames"), FileName: "intro.mp4"})
	require.NoError(t, err)

	publicID := "course_" + f.course.ID.String() + "_lesson_1"
	assert.Equal(t, "frames", f.videos.uploaded[publicID])
	assert.Contains(t, created.VideoURL, publicID)

	stored, err := f.svc.GetLesson(context.Background(), f.course.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, created.VideoURL, stored.VideoURL)
}

func TestAddLesson_KeepsLessonWhenVideoFails(t *testing.T) {
	f := newFixture(t)
	f.videos.fail = errors.New("cloudinary down")

	created, err := f.svc.AddLesson(context.Background(), f.teacher, f.course.ID,
		dto.CreateLessonRequest{Name: "Intro"},
		&lesson.Video{Body: strings.NewReader("frames"), FileName: "intro.mp4"})
	require.NoError(t, err)
	assert.Empty(t, created.VideoURL)
	assert.Equal(t, 1, created.LessonNumber)
}

func TestUploadVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLesson(t, "Intro")
	video := lesson.Video{Body: strings.NewReader("frames"), FileName: "intro.mp4"}

	_, err := f.svc.UploadVideo(ctx, f.student, f.course.ID, 1, video)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.UploadVideo(ctx, f.teacher, f.course.ID, 9, video)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	updated, err := f.svc.UploadVideo(ctx, f.teacher, f.course.ID, 1, video)
	require.NoError(t, err)
	assert.NotEmpty(t, updated.VideoURL)

	f.videos.fail = errors.New("cloudinary down")
	_, err = f.svc.UploadVideo(ctx, f.teacher, f.course.ID, 1, lesson.Video{Body: strings.NewReader("x"), FileName: "x.mp4"})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}

func TestUploadVideo_WithoutStorage(t *testing.T) {
	db := testutil.NewDB(t)
	svc := lesson.NewService(repository.NewLessonRepository(db), courseRepo.NewCourseRepository(db), enrollmentRepo.NewEnrollmentRepository(db), nil, nil)

	teacher := &entity.User{FullName: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: entity.RoleTeacher}
	category := &entity.Category{Name: "Programming"}
	require.NoError(t, db.Create(teacher).Error)
	require.NoError(t, db.Create(category).Error)
	c := &entity.Course{TeacherID: teacher.ID, CategoryID: category.ID, Name: "Go", ShortDescription: "short"}
	require.NoError(t, db.Create(c).Error)
	actor := course.Actor{ID: teacher.ID, Role: teacher.Role}

	_, err := svc.AddLesson(context.Background(), actor, c.ID, dto.CreateLessonRequest{Name: "Intro"}, nil)
	require.NoError(t, err)

	_, err = svc.UploadVideo(context.Background(), actor, c.ID, 1, lesson.Video{Body: strings.NewReader("x"), FileName: "x.mp4"})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}

func TestUpdateLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLesson(t, "Intro")

	updated, err := f.svc.UpdateLesson(ctx, f.teacher, f.course.ID, 1, dto.UpdateLessonRequest{Name: "Welcome", Description: "start here"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", updated.Name)
	assert.Equal(t, 1, updated.LessonNumber)

	stored, err := f.svc.GetLesson(ctx, f.course.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "start here", stored.Description)

	_, err = f.svc.UpdateLesson(ctx, f.student, f.course.ID, 1, dto.UpdateLessonRequest{Name: "Hijack"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.GetLesson(ctx, f.course.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLesson(t, "One")
	f.addLesson(t, "Two")
	f.addLesson(t, "Three")

	_, err := f.svc.CompleteLesson(ctx, f.student.ID, f.course.ID, 1)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = f.svc.GetProgress(ctx, f.student.ID, f.course.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	f.enroll(t)

	_, err = f.svc.CompleteLesson(ctx, f.student.ID, f.course.ID, 3)
	require.NoError(t, err)
	progress, err := f.svc.CompleteLesson(ctx, f.student.ID, f.course.ID, 1)
	require.NoError(t, err)
	again, err := f.svc.CompleteLesson(ctx, f.student.ID, f.course.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, progress, again)

	assert.Equal(t, 3, progress.TotalLessons)
	require.Len(t, progress.CompletedLessons, 2)
	assert.Equal(t, 1, progress.CompletedLessons[0].LessonNumber)
	assert.Equal(t, 3, progress.CompletedLessons[1].LessonNumber)

	progress, err = f.svc.UncompleteLesson(ctx, f.student.ID, f.course.ID, 3)
	require.NoError(t, err)
	require.Len(t, progress.CompletedLessons, 1)

	_, err = f.svc.UncompleteLesson(ctx, f.student.ID, f.course.ID, 3)
	require.NoError(t, err)

	_, err = f.svc.CompleteLesson(ctx, f.student.ID, f.course.ID, 7)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
