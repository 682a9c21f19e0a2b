package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
)

// categoryLevel describes where one level of the category tree lives.
type categoryLevel struct {
	table        string
	parentColumn string
	parent       models.CategoryType
	child        models.CategoryType
}

var categoryLevels = map[models.CategoryType]categoryLevel{
	models.CategoryMain: {
		table: "main_categories",
		child: models.CategorySub,
	},
	models.CategorySub: {
		table:        "sub_categories",
		parentColumn: "main_category_id",
		parent:       models.CategoryMain,
		child:        models.CategoryItem,
	},
	models.CategoryItem: {
		table:        "item_categories",
		parentColumn: "sub_category_id",
		parent:       models.CategorySub,
	},
}

var categorySortable = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
}

func levelOf(typ models.CategoryType) (categoryLevel, error) {
	level, ok := categoryLevels[typ]
	if !ok {
		return categoryLevel{}, apperr.BadRequest(fmt.Sprintf("Invalid category type %q", typ))
	}
	return level, nil
}

func (l categoryLevel) columns() string {
	parent := "0"
	if l.parentColumn != "" {
		parent = l.parentColumn
	}
	return "id, " + parent + ", name, description, image, is_deleted, created_at, updated_at"
}

func categoryScanner(typ models.CategoryType) func(rowScanner) (models.Category, error) {
	return func(row rowScanner) (models.Category, error) {
		c := models.Category{Type: typ}
		err := row.Scan(
			&c.ID,
			&c.ParentID,
			&c.Name,
			&c.Description,
			&c.Image,
			&c.IsDeleted,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		return c, err
	}
}

func queryCategory(ctx context.Context, q database.Querier, typ models.CategoryType, op, query string, args ...any) (*models.Category, error) {
	c, err := categoryScanner(typ)(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// CreateCategory inserts c at the level named by c.Type. The parent must
// exist and not be deleted.
func CreateCategory(ctx context.Context, q database.Querier, c *models.Category) (*models.Category, error) {
	level, err := levelOf(c.Type)
	if err != nil {
		return nil, err
	}

	if level.parentColumn == "" {
		query := fmt.Sprintf(`
			INSERT INTO %s (name, description, image, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			RETURNING %s`, level.table, level.columns())
		return queryCategory(ctx, q, c.Type, "create category", query, c.Name, c.Description, c.Image)
	}

	parent, err := GetCategory(ctx, q, level.parent, c.ParentID)
	if err != nil {
		return nil, err
	}
	if parent.IsDeleted {
		return nil, apperr.BadRequest("Parent category is deleted")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, name, description, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s`, level.table, level.parentColumn, level.columns())
	return queryCategory(ctx, q, c.Type, "create category", query, c.ParentID, c.Name, c.Description, c.Image)
}

func GetCategory(ctx context.Context, q database.Querier, typ models.CategoryType, id int64) (*models.Category, error) {
	level, err := levelOf(typ)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, level.columns(), level.table)
	return queryCategory(ctx, q, typ, "get category", query, id)
}

type CategoryUpdate struct {
	Name        *string
	Description *string
	Image       *string
}

func UpdateCategory(ctx context.Context, q database.Querier, typ models.CategoryType, id int64, u CategoryUpdate) (*models.Category, error) {
	level, err := levelOf(typ)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    image = COALESCE($4, image),
		    updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING %s`, level.table, level.columns())
	return queryCategory(ctx, q, typ, "update category", query, id, u.Name, u.Description, u.Image)
}

// SoftDeleteCategory marks the category and every descendant deleted. Run it
// inside a transaction so the subtree flips together.
func SoftDeleteCategory(ctx context.Context, q database.Querier, typ models.CategoryType, id int64) (*models.Category, error) {
	level, err := levelOf(typ)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING %s`, level.table, level.columns())
	deleted, err := queryCategory(ctx, q, typ, "delete category", query, id)
	if err != nil {
		return nil, err
	}

	ids := []int64{id}
	for level.child != "" && len(ids) > 0 {
		child := categoryLevels[level.child]
		query := fmt.Sprintf(`
			UPDATE %s SET is_deleted = TRUE, updated_at = NOW()
			WHERE %s = ANY($1) AND is_deleted = FALSE
			RETURNING id`, child.table, child.parentColumn)

		ids, err = collectIDs(ctx, q, query, pq.Array(ids))
		if err != nil {
			return nil, fmt.Errorf("delete %s descendants: %w", child.table, err)
		}
		level = child
	}

	return deleted, nil
}

type CategoryFilter struct {
	Type       models.CategoryType
	ParentID   int64
	SearchTerm string
}

func ListCategories(ctx context.Context, db *sql.DB, cf CategoryFilter, params PageParams) (*OffsetPage[models.Category], error) {
	level, err := levelOf(cf.Type)
	if err != nil {
		return nil, err
	}

	var f filter
	f.where("is_deleted = FALSE")
	if level.parentColumn != "" && cf.ParentID != 0 {
		f.eq(level.parentColumn, cf.ParentID)
	}
	f.search(cf.SearchTerm, "name")

	page, err := listAndCount(ctx, db, level.columns(), level.table, &f,
		Paginate(params, categorySortable), categoryScanner(cf.Type))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return page, nil
}

// ListChildren returns the live children of the given parents, keyed by
// parent id.
func ListChildren(ctx context.Context, q database.Querier, parentType models.CategoryType, parentIDs []int64) (map[int64][]models.Category, error) {
	parent, err := levelOf(parentType)
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]models.Category)
	if parent.child == "" || len(parentIDs) == 0 {
		return out, nil
	}

	child := categoryLevels[parent.child]
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) AND is_deleted = FALSE ORDER BY name`,
		child.columns(), child.table, child.parentColumn)

	rows, err := q.QueryContext(ctx, query, pq.Array(parentIDs))
	if err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	defer rows.Close()

	scan := categoryScanner(parent.child)
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out[c.ParentID] = append(out[c.ParentID], c)
	}
	return out, rows.Err()
}

func collectIDs(ctx context.Context, q database.Querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
