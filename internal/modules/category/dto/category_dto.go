package dto

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required,max=100"`
	ParentID *string `json:"parentId" binding:"omitempty,uuid"`
}

type UpdateCategoryRequest struct {
	Name     string  `json:"name" binding:"required,max=100"`
	ParentID *string `json:"parentId" binding:"omitempty,uuid"`
}

type CategoryResponse struct {
	ID       uuid.UUID          `json:"id"`
	Name     string             `json:"name"`
	ParentID *uuid.UUID         `json:"parentId"`
	Children []CategoryResponse `json:"children,omitempty"`
}
