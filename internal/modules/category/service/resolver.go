package category

import (
	"context"

	"anoa.com/elearning/internal/entity"
	"github.com/google/uuid"
)

// Scope is the set of categories a listing is limited to. An unrestricted
// scope matches every course; a restricted scope with no ids matches none.
type Scope struct {
	Unrestricted bool
	IDs          []uuid.UUID
}

func (s Scope) Contains(id uuid.UUID) bool {
	if s.Unrestricted {
		return true
	}
	for _, candidate := range s.IDs {
		if candidate == id {
			return true
		}
	}
	return false
}

// ResolveSubtree returns id plus all of its transitive descendants. A nil id
// yields an unrestricted scope and an unknown id yields an empty one.
func (s *categoryService) ResolveSubtree(ctx context.Context, id *uuid.UUID) (Scope, error) {
	if id == nil {
		return Scope{Unrestricted: true}, nil
	}

	categories, err := s.repo.FindAll(ctx, "")
	if err != nil {
		return Scope{}, err
	}

	return Scope{IDs: subtree(categories, *id)}, nil
}

// subtree walks the forest breadth-first from root using a child index built
// from parent pointers. The visited set keeps a corrupted parent chain from
// looping.
func subtree(categories []*entity.Category, root uuid.UUID) []uuid.UUID {
	known := false
	children := make(map[uuid.UUID][]uuid.UUID, len(categories))
	for _, c := range categories {
		if c.ID == root {
			known = true
		}
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}
	if !known {
		return []uuid.UUID{}
	}

	ids := []uuid.UUID{root}
	visited := map[uuid.UUID]struct{}{root: {}}
	for i := 0; i < len(ids); i++ {
		for _, child := range children[ids[i]] {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			ids = append(ids, child)
		}
	}
	return ids
}
