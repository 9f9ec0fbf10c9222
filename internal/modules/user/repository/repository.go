package repository

import (
	"context"

	"anoa.com/elearning/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// DisplayNames resolves full names for a batch of user ids in one query.
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	// List returns users oldest first; an empty role lists everyone.
	List(ctx context.Context, role string) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// Delete removes the user with their favorites, lesson progress, reviews
	// and enrollments. Courses they teach must be removed beforehand.
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	type row struct {
		ID       uuid.UUID
		FullName string
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Select("id, full_name").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, rw := range rows {
		names[rw.ID] = rw.FullName
	}
	return names, nil
}

func (r *userRepository) List(ctx context.Context, role string) ([]*entity.User, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC")
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []*entity.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).
		Model(user).
		Select("full_name", "email", "password_hash").
		Updates(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []struct {
			model  interface{}
			column string
		}{
			{&entity.CompletedLesson{}, "user_id"},
			{&entity.Favorite{}, "user_id"},
			{&entity.Review{}, "user_id"},
			{&entity.Enrollment{}, "student_id"},
		} {
			if err := tx.Where(dependent.column+" = ?", id).Delete(dependent.model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&entity.User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
