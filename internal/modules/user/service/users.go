package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/internal/modules/user/dto"
	"anoa.com/elearning/internal/modules/user/repository"
	"anoa.com/elearning/pkg/apperror"
	"anoa.com/elearning/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CourseRemover deletes a teacher's courses together with their search
// documents and images.
type CourseRemover interface {
	DeleteTeacherCourses(ctx context.Context, teacherID uuid.UUID) error
}

type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error)
	CreateTeacher(ctx context.Context, input dto.CreateTeacherInput) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input dto.AdminUpdateUserInput) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, id uuid.UUID, input dto.ChangePasswordInput) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo    repository.UserRepository
	courses CourseRemover
	log     *logger.Logger
}

func NewUserService(repo repository.UserRepository, courses CourseRemover, log *logger.Logger) UserService {
	if log == nil {
		log = logger.NewNop()
	}
	return &userService{repo: repo, courses: courses, log: log.With("component", "users")}
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error) {
	switch role {
	case "", entity.RoleAdmin, entity.RoleTeacher, entity.RoleStudent:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, apperror.ErrInvalidInput)
	}

	users, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *toUserResponse(u))
	}
	return out, nil
}

func (s *userService) CreateTeacher(ctx context.Context, input dto.CreateTeacherInput) (*dto.UserResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        normalizeEmail(input.Email),
		PasswordHash: string(hashed),
		Role:         entity.RoleTeacher,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, input dto.AdminUpdateUserInput) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		if user.Role != entity.RoleTeacher {
			return nil, fmt.Errorf("email can only be changed for teachers: %w", apperror.ErrInvalidInput)
		}
		user.Email = normalizeEmail(*input.Email)
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, input dto.ChangePasswordInput) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", apperror.ErrBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)
	return s.repo.Update(ctx, user)
}

// DeleteUser removes a student or a teacher. A teacher's courses go first.
// Admin accounts cannot be deleted here.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if user.Role == entity.RoleAdmin {
		return fmt.Errorf("admin accounts cannot be deleted: %w", apperror.ErrForbidden)
	}

	if user.Role == entity.RoleTeacher {
		if err := s.courses.DeleteTeacherCourses(ctx, id); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	s.log.Info("user deleted", "user_id", id, "role", user.Role)
	return nil
}

func (s *userService) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	}
}
