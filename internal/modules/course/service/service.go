package course

import (
	"context"
	"errors"
	"fmt"
	"io"

	"anoa.com/elearning/internal/entity"
	categoryRepo "anoa.com/elearning/internal/modules/category/repository"
	"anoa.com/elearning/internal/modules/course/dto"
	courseRepo "anoa.com/elearning/internal/modules/course/repository"
	enrollmentRepo "anoa.com/elearning/internal/modules/enrollment/repository"
	reviewRepo "anoa.com/elearning/internal/modules/review/repository"
	search "anoa.com/elearning/internal/modules/search/service"
	userRepo "anoa.com/elearning/internal/modules/user/repository"
	"anoa.com/elearning/pkg/apperror"
	commonDto "anoa.com/elearning/pkg/dto"
	"anoa.com/elearning/pkg/logger"
	"anoa.com/elearning/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of a write operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

type Service interface {
	CreateCourse(ctx context.Context, actor Actor, req dto.CreateCourseRequest) (*dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, actor Actor, id uuid.UUID) error
	// DeleteTeacherCourses removes every course the teacher owns.
	DeleteTeacherCourses(ctx context.Context, teacherID uuid.UUID) error
	UploadImage(ctx context.Context, actor Actor, id uuid.UUID, file io.Reader, fileName string) (*dto.CourseResponse, error)

	Enroll(ctx context.Context, courseID, studentID uuid.UUID) (*dto.EnrollmentResponse, error)
	GetCourseEnrollments(ctx context.Context, actor Actor, courseID uuid.UUID) ([]dto.EnrollmentResponse, error)
	GetStudentEnrollments(ctx context.Context, studentID uuid.UUID) ([]dto.EnrollmentResponse, error)

	AddReview(ctx context.Context, courseID, userID uuid.UUID, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	GetReviews(ctx context.Context, courseID uuid.UUID, pageNumber int, pageSize *int) (*commonDto.Page[dto.ReviewResponse], error)
}

type service struct {
	courseRepo     courseRepo.CourseRepository
	categoryRepo   categoryRepo.CategoryRepository
	enrollmentRepo enrollmentRepo.EnrollmentRepository
	reviewRepo     reviewRepo.ReviewRepository
	userRepo       userRepo.UserRepository
	imageStorage   storage.ImageStorage
	index          search.CourseIndex
	log            *logger.Logger
}

func NewService(
	courseRepo courseRepo.CourseRepository,
	categoryRepo categoryRepo.CategoryRepository,
	enrollmentRepo enrollmentRepo.EnrollmentRepository,
	reviewRepo reviewRepo.ReviewRepository,
	userRepo userRepo.UserRepository,
	imageStorage storage.ImageStorage,
	index search.CourseIndex,
	log *logger.Logger,
) Service {
	if index == nil {
		index = search.NewNoopCourseIndex()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &service{
		courseRepo:     courseRepo,
		categoryRepo:   categoryRepo,
		enrollmentRepo: enrollmentRepo,
		reviewRepo:     reviewRepo,
		userRepo:       userRepo,
		imageStorage:   imageStorage,
		index:          index,
		log:            log.With("component", "course"),
	}
}

func (s *service) CreateCourse(ctx context.Context, actor Actor, req dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	category, err := s.findCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	course := &entity.Course{
		TeacherID:         actor.ID,
		CategoryID:        category.ID,
		Name:              req.Name,
		ShortDescription:  req.ShortDescription,
		DetailDescription: req.DetailDescription,
		Price:             req.Price,
		PercentDiscount:   req.PercentDiscount,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.syncIndex(ctx, course, category.Name)
	return toCourseResponse(course), nil
}

func (s *service) UpdateCourse(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.findOwnedCourse(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	category, err := s.findCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	course.CategoryID = category.ID
	course.Name = req.Name
	course.ShortDescription = req.ShortDescription
	course.DetailDescription = req.DetailDescription
	course.Price = req.Price
	course.PercentDiscount = req.PercentDiscount

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	s.syncIndex(ctx, course, category.Name)
	return toCourseResponse(course), nil
}

func (s *service) DeleteCourse(ctx context.Context, actor Actor, id uuid.UUID) error {
	course, err := s.findOwnedCourse(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.removeCourse(ctx, course)
}

func (s *service) DeleteTeacherCourses(ctx context.Context, teacherID uuid.UUID) error {
	ids, err := s.courseRepo.FindIDs(ctx, courseRepo.Filter{TeacherID: &teacherID}, nil, 0, -1)
	if err != nil {
		return err
	}

	for _, id := range ids {
		course, err := s.findCourse(ctx, id)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return err
		}
		if err := s.removeCourse(ctx, course); err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.log.Info("deleted course of removed teacher", "course_id", id, "teacher_id", teacherID)
	}
	return nil
}

// removeCourse deletes the row and its dependents, then drops the search
// document and the image. Cleanup failures are logged only.
func (s *service) removeCourse(ctx context.Context, course *entity.Course) error {
	if err := s.courseRepo.Delete(ctx, course.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := s.index.DeleteCourse(ctx, course.ID); err != nil {
		s.log.Warn("failed to remove course from search index", "course_id", course.ID, "error", err)
	}

	if course.ImageURL != "" && s.imageStorage != nil {
		if err := s.imageStorage.DeleteImage(ctx, course.ImageURL); err != nil {
			s.log.Warn("failed to delete course image", "course_id", course.ID, "error", err)
		}
	}

	return nil
}

func (s *service) UploadImage(ctx context.Context, actor Actor, id uuid.UUID, file io.Reader, fileName string) (*dto.CourseResponse, error) {
	course, err := s.findOwnedCourse(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if s.imageStorage == nil {
		return nil, fmt.Errorf("image storage is not configured: %w", apperror.ErrUnavailable)
	}

	url, err := s.imageStorage.UploadImage(ctx, file, imagePublicID(id), fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrUnavailable, err)
	}

	if err := s.courseRepo.UpdateImageURL(ctx, id, url); err != nil {
		return nil, err
	}
	course.ImageURL = url

	s.syncIndex(ctx, course, "")
	return toCourseResponse(course), nil
}
