package repository

import (
	"context"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	FindAll(ctx context.Context, filter string) ([]*entity.Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Category, error)
	FindByParentID(ctx context.Context, parentID *uuid.UUID) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	// Delete removes the category and re-attaches its direct children to its parent.
	Delete(ctx context.Context, category *entity.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindAll(ctx context.Context, filter string) ([]*entity.Category, error) {
	var categories []*entity.Category
	query := r.db.WithContext(ctx)

	if filter != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", database.ContainsPattern(filter))
	}

	if err := query.Order("name ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Category, error) {
	var categories []*entity.Category
	if len(ids) == 0 {
		return categories, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByParentID(ctx context.Context, parentID *uuid.UUID) ([]*entity.Category, error) {
	var categories []*entity.Category
	query := r.db.WithContext(ctx)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).
		Model(category).
		Select("name", "parent_id", "updated_at").
		Updates(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Category{}).
			Where("parent_id = ?", category.ID).
			Update("parent_id", category.ParentID).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Category{}, "id = ?", category.ID).Error
	})
}
