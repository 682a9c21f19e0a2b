package catalog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/policy"
	"github.com/safar/marketplace/internal/store"
	"go.uber.org/zap"
)

type CategoryInput struct {
	Type        models.CategoryType
	ParentID    int64
	Name        string
	Description *string
	Image       *string
}

// CreateCategory adds a node at the level named by in.Type. SUB and ITEM
// categories need a live parent one level up.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if _, err := policy.Authorize(ctx, s.db, policy.ManageCategory, policy.Resource{}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.BadRequest("name is required")
	}
	if in.Type != models.CategoryMain && in.ParentID == 0 {
		return nil, apperr.BadRequest("parentId is required")
	}

	c, err := store.CreateCategory(ctx, s.db, &models.Category{
		Type:        in.Type,
		ParentID:    in.ParentID,
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("category created", zap.String("type", string(c.Type)), zap.Int64("category_id", c.ID))
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, typ models.CategoryType, id int64, u store.CategoryUpdate) (*models.Category, error) {
	if _, err := policy.Authorize(ctx, s.db, policy.ManageCategory, policy.Resource{}); err != nil {
		return nil, err
	}
	return store.UpdateCategory(ctx, s.db, typ, id, u)
}

// DeleteCategory soft-deletes the category and its whole subtree in one
// transaction.
func (s *Service) DeleteCategory(ctx context.Context, typ models.CategoryType, id int64) (*models.Category, error) {
	if _, err := policy.Authorize(ctx, s.db, policy.ManageCategory, policy.Resource{}); err != nil {
		return nil, err
	}

	var deleted *models.Category
	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		var err error
		deleted, err = store.SoftDeleteCategory(ctx, tx, typ, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("category deleted", zap.String("type", string(typ)), zap.Int64("category_id", id))
	return deleted, nil
}

// GetCategory returns the category with its live descendants.
func (s *Service) GetCategory(ctx context.Context, typ models.CategoryType, id int64) (*models.Category, error) {
	c, err := store.GetCategory(ctx, s.db, typ, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, database.ErrCategoryNotFound
	}

	nodes := []models.Category{*c}
	if err := s.attachChildren(ctx, nodes); err != nil {
		return nil, err
	}
	return &nodes[0], nil
}

// ListCategories lists live categories of one level with their descendants
// nested.
func (s *Service) ListCategories(ctx context.Context, f store.CategoryFilter, p store.PageParams) (*store.OffsetPage[models.Category], error) {
	if f.Type == "" {
		f.Type = models.CategoryMain
	}
	page, err := store.ListCategories(ctx, s.db, f, p)
	if err != nil {
		return nil, err
	}
	if err := s.attachChildren(ctx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *Service) attachChildren(ctx context.Context, nodes []models.Category) error {
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}

	children, err := store.ListChildren(ctx, s.db, nodes[0].Type, ids)
	if err != nil {
		return err
	}

	var next []models.Category
	for _, n := range nodes {
		next = append(next, children[n.ID]...)
	}
	if err := s.attachChildren(ctx, next); err != nil {
		return err
	}

	byParent := make(map[int64][]models.Category, len(nodes))
	for _, c := range next {
		byParent[c.ParentID] = append(byParent[c.ParentID], c)
	}
	for i := range nodes {
		nodes[i].Children = byParent[nodes[i].ID]
	}
	return nil
}
