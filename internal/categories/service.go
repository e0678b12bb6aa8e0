package categories

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/pkg/db/models"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
)

const maxTreeDepth = 32

// Node is a category with its resolved children, ordered by display order.
type Node struct {
	models.Category
	Children []*Node `json:"children"`
}

// Service exposes category tree operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Tree(ctx context.Context) ([]*Node, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateInput carries a new category.
type CreateInput struct {
	Name         string
	Slug         string
	Description  *string
	ParentID     *uuid.UUID
	DisplayOrder int
}

// UpdateInput carries partial category updates; nil fields are untouched.
// ParentIDSet distinguishes "move to root" from "leave parent alone".
type UpdateInput struct {
	Name         *string
	Slug         *string
	Description  *string
	ParentID     *uuid.UUID
	ParentIDSet  bool
	DisplayOrder *int
	IsActive     *bool
}

type service struct {
	repo Repository
}

// NewService builds the category service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}
	if strings.TrimSpace(input.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug required")
	}
	if input.ParentID != nil {
		if _, err := s.repo.FindByID(ctx, *input.ParentID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent category")
		}
	}

	category := &models.Category{
		Name:         strings.TrimSpace(input.Name),
		Slug:         strings.TrimSpace(input.Slug),
		Description:  input.Description,
		ParentID:     input.ParentID,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

// Tree returns the full category forest assembled in memory from a single
// listing query.
func (s *service) Tree(ctx context.Context) ([]*Node, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	byID := make(map[uuid.UUID]*Node, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &Node{Category: rows[i], Children: []*Node{}}
	}

	roots := []*Node{}
	for _, node := range byID {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[*node.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	for _, node := range byID {
		sortNodes(node.Children)
	}
	return roots, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Slug != nil {
		updates["slug"] = strings.TrimSpace(*input.Slug)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.DisplayOrder != nil {
		updates["display_order"] = *input.DisplayOrder
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ParentIDSet {
		if input.ParentID != nil {
			if err := s.rejectCycle(ctx, id, *input.ParentID); err != nil {
				return nil, err
			}
		}
		updates["parent_id"] = input.ParentID
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has products")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

// rejectCycle walks up from the proposed parent; hitting the category being
// moved means the move would create a cycle.
func (s *service) rejectCycle(ctx context.Context, id, newParentID uuid.UUID) error {
	if newParentID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "category cannot be its own parent")
	}

	current := newParentID
	for depth := 0; depth < maxTreeDepth; depth++ {
		parent, err := s.repo.FindByID(ctx, current)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "parent category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "walk category ancestors")
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == id {
			return pkgerrors.New(pkgerrors.CodeValidation, "re-parenting would create a cycle")
		}
		current = *parent.ParentID
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "category tree too deep")
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].DisplayOrder != nodes[j].DisplayOrder {
			return nodes[i].DisplayOrder < nodes[j].DisplayOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
}
