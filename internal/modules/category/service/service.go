package category

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/internal/modules/category/dto"
	"anoa.com/elearning/internal/modules/category/repository"
	"anoa.com/elearning/pkg/apperror"
	commonDto "anoa.com/elearning/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context, filter commonDto.CategoryFilter) ([]dto.CategoryResponse, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error)
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ResolveSubtree(ctx context.Context, id *uuid.UUID) (Scope, error)
	Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// CourseUsage tells whether any course is filed under the given categories.
type CourseUsage interface {
	ExistsInCategories(ctx context.Context, categoryIDs []uuid.UUID) (bool, error)
}

type categoryService struct {
	repo    repository.CategoryRepository
	courses CourseUsage
}

func NewCategoryService(repo repository.CategoryRepository, courses CourseUsage) CategoryService {
	return &categoryService{repo: repo, courses: courses}
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	parentID, err := parseOptionalID(req.ParentID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if _, err := s.findByID(ctx, *parentID); err != nil {
			return nil, fmt.Errorf("parent category: %w", err)
		}
	}

	category := &entity.Category{
		Name:     req.Name,
		ParentID: parentID,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	return toResponse(category), nil
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter commonDto.CategoryFilter) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.FindAll(ctx, filter.Search)
	if err != nil {
		return nil, err
	}

	// A name search returns the matches flat; otherwise the whole forest.
	if filter.Search != "" {
		responses := make([]dto.CategoryResponse, 0, len(categories))
		for _, c := range categories {
			responses = append(responses, *toResponse(c))
		}
		return responses, nil
	}

	return buildForest(categories), nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	category, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(category), nil
}

func (s *categoryService) GetChildren(ctx context.Context, parentID uuid.UUID) ([]dto.CategoryResponse, error) {
	children, err := s.repo.FindByParentID(ctx, &parentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(children))
	for _, c := range children {
		responses = append(responses, *toResponse(c))
	}
	return responses, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	parentID, err := parseOptionalID(req.ParentID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if _, err := s.findByID(ctx, *parentID); err != nil {
			return nil, fmt.Errorf("parent category: %w", err)
		}

		// Re-parenting under its own subtree would close a cycle.
		scope, err := s.ResolveSubtree(ctx, &id)
		if err != nil {
			return nil, err
		}
		if scope.Contains(*parentID) {
			return nil, fmt.Errorf("category cannot be moved under its own subtree: %w", apperror.ErrInvalidInput)
		}
	}

	category.Name = req.Name
	category.ParentID = parentID

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	return toResponse(category), nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	scope, err := s.ResolveSubtree(ctx, &id)
	if err != nil {
		return err
	}

	inUse, err := s.courses.ExistsInCategories(ctx, scope.IDs)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("category still has courses: %w", apperror.ErrConflict)
	}

	return s.repo.Delete(ctx, category)
}

func (s *categoryService) Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	categories, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (s *categoryService) findByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return category, nil
}

func parseOptionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("invalid category id format: %w", apperror.ErrBadRequest)
	}
	return &id, nil
}

func toResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		ParentID: c.ParentID,
	}
}

// buildForest nests categories under their parents. Categories whose parent
// is missing are promoted to roots so nothing disappears from the listing.
func buildForest(categories []*entity.Category) []dto.CategoryResponse {
	known := make(map[uuid.UUID]bool, len(categories))
	children := make(map[uuid.UUID][]*entity.Category, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	var roots []*entity.Category
	for _, c := range categories {
		if c.ParentID == nil || !known[*c.ParentID] || *c.ParentID == c.ID {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	visited := make(map[uuid.UUID]bool, len(categories))
	var build func(c *entity.Category) dto.CategoryResponse
	build = func(c *entity.Category) dto.CategoryResponse {
		visited[c.ID] = true
		node := *toResponse(c)
		for _, child := range children[c.ID] {
			if visited[child.ID] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	forest := make([]dto.CategoryResponse, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, build(root))
	}
	return forest
}
