package lesson

import (
	"context"
	"errors"
	"fmt"
	"io"

	"anoa.com/elearning/internal/entity"
	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	course "anoa.com/elearning/internal/modules/course/service"
	enrollmentRepo "anoa.com/elearning/internal/modules/enrollment/repository"
	"anoa.com/elearning/internal/modules/lesson/dto"
	"anoa.com/elearning/internal/modules/lesson/repository"
	"anoa.com/elearning/pkg/apperror"
	"anoa.com/elearning/pkg/logger"
	"anoa.com/elearning/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video is an uploaded lesson video. A nil Video means none was sent.
type Video struct {
	Body     io.Reader
	FileName string
}

type Service interface {
	AddLesson(ctx context.Context, actor course.Actor, courseID uuid.UUID, req dto.CreateLessonRequest, video *Video) (*dto.LessonResponse, error)
	GetLessons(ctx context.Context, courseID uuid.UUID) ([]dto.LessonResponse, error)
	GetLesson(ctx context.Context, courseID uuid.UUID, number int) (*dto.LessonResponse, error)
	UpdateLesson(ctx context.Context, actor course.Actor, courseID uuid.UUID, number int, req dto.UpdateLessonRequest) (*dto.LessonResponse, error)
	UploadVideo(ctx context.Context, actor course.Actor, courseID uuid.UUID, number int, video Video) (*dto.LessonResponse, error)

	CompleteLesson(ctx context.Context, userID, courseID uuid.UUID, number int) (*dto.ProgressResponse, error)
	UncompleteLesson(ctx context.Context, userID, courseID uuid.UUID, number int) (*dto.ProgressResponse, error)
	GetProgress(ctx context.Context, userID, courseID uuid.UUID) (*dto.ProgressResponse, error)
}

type service struct {
	lessonRepo     repository.LessonRepository
	courseRepo     courseRepo.CourseRepository
	enrollmentRepo enrollmentRepo.EnrollmentRepository
	videoStorage   storage.VideoStorage
	log            *logger.Logger
}

func NewService(
	lessonRepo repository.LessonRepository,
	courseRepo courseRepo.CourseRepository,
	enrollmentRepo enrollmentRepo.EnrollmentRepository,
	videoStorage storage.VideoStorage,
	log *logger.Logger,
) Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &service{
		lessonRepo:     lessonRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		videoStorage:   videoStorage,
		log:            log.With("component", "lesson"),
	}
}

// AddLesson appends a lesson to the course. A video that fails to upload is
// logged and the lesson is kept without it.
func (s *service) AddLesson(ctx context.Context, actor course.Actor, courseID uuid.UUID, req dto.CreateLessonRequest, video *Video) (*dto.LessonResponse, error) {
	if _, err := s.findOwnedCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}

	lesson := &entity.Lesson{
		CourseID:    courseID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.lessonRepo.CreateNext(ctx, lesson); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("lesson was added concurrently, retry: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	if video != nil {
		if err := s.attachVideo(ctx, lesson, *video); err != nil {
			s.log.Warn("lesson saved without video", "course_id", courseID, "lesson", lesson.LessonNumber, "error", err)
		}
	}

	return toLessonResponse(lesson), nil
}

func (s *service) GetLessons(ctx context.Context, courseID uuid.UUID) ([]dto.LessonResponse, error) {
	if _, err := s.findCourse(ctx, courseID); err != nil {
		return nil, err
	}

	lessons, err := s.lessonRepo.FindByCourseID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return toLessonResponses(lessons), nil
}

func (s *service) GetLesson(ctx context.Context, courseID uuid.UUID, number int) (*dto.LessonResponse, error) {
	lesson, err := s.findLesson(ctx, courseID, number)
	if err != nil {
		return nil, err
	}
	return toLessonResponse(lesson), nil
}

func (s *service) UpdateLesson(ctx context.Context, actor course.Actor, courseID uuid.UUID, number int, req dto.UpdateLessonRequest) (*dto.LessonResponse, error) {
	if _, err := s.findOwnedCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.findLesson(ctx, courseID, number)
	if err != nil {
		return nil, err
	}

	lesson.Name = req.Name
	lesson.Description = req.Description
	if err := s.lessonRepo.UpdateInfo(ctx, lesson); err != nil {
		return nil, err
	}
	return toLessonResponse(lesson), nil
}

func (s *service) UploadVideo(ctx context.Context, actor course.Actor, courseID uuid.UUID, number int, video Video) (*dto.LessonResponse, error) {
	if _, err := s.findOwnedCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.findLesson(ctx, courseID, number)
	if err != nil {
		return nil, err
	}

	if err := s.attachVideo(ctx, lesson, video); err != nil {
		return nil, err
	}
	return toLessonResponse(lesson), nil
}

func (s *service) attachVideo(ctx context.Context, lesson *entity.Lesson, video Video) error {
	if s.videoStorage == nil {
		return fmt.Errorf("video storage is not configured: %w", apperror.ErrUnavailable)
	}

	url, err := s.videoStorage.UploadVideo(ctx, video.Body, videoPublicID(lesson), video.FileName)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrUnavailable, err)
	}

	if err := s.lessonRepo.UpdateVideoURL(ctx, lesson.ID, url); err != nil {
		return err
	}
	lesson.VideoURL = url
	return nil
}

func videoPublicID(lesson *entity.Lesson) string {
	return fmt.Sprintf("course_%s_lesson_%d", lesson.CourseID, lesson.LessonNumber)
}
