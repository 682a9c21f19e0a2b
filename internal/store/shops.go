package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
)

const shopColumns = `id, vendor_id, name, logo, description, email, contact_number, address,
	status, is_verified, is_deleted, is_temporary_delete, created_at, updated_at`

var shopSortable = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
}

func scanShop(row rowScanner) (models.Shop, error) {
	var s models.Shop
	err := row.Scan(
		&s.ID,
		&s.VendorID,
		&s.Name,
		&s.Logo,
		&s.Description,
		&s.Email,
		&s.ContactNumber,
		&s.Address,
		&s.Status,
		&s.IsVerified,
		&s.IsDeleted,
		&s.IsTemporaryDelete,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

func queryShop(ctx context.Context, q database.Querier, op, query string, args ...any) (*models.Shop, error) {
	shop, err := scanShop(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrShopNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &shop, nil
}

func CreateShop(ctx context.Context, q database.Querier, s *models.Shop) (*models.Shop, error) {
	query := `
		INSERT INTO shops (vendor_id, name, logo, description, email, contact_number, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + shopColumns

	shop, err := queryShop(ctx, q, "create shop", query,
		s.VendorID, s.Name, s.Logo, s.Description, s.Email, s.ContactNumber, s.Address, models.ShopStatusActive)
	if err != nil && database.IsUniqueViolation(err) {
		return nil, apperr.BadRequest("Vendor already has a shop")
	}
	return shop, err
}

func GetShop(ctx context.Context, q database.Querier, id int64) (*models.Shop, error) {
	return queryShop(ctx, q, "get shop", `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id)
}

func GetShopByVendor(ctx context.Context, q database.Querier, vendorID int64) (*models.Shop, error) {
	return queryShop(ctx, q, "get shop by vendor", `SELECT `+shopColumns+` FROM shops WHERE vendor_id = $1`, vendorID)
}

type ShopUpdate struct {
	Name          *string
	Logo          *string
	Description   *string
	Email         *string
	ContactNumber *string
	Address       *string
}

func UpdateShop(ctx context.Context, q database.Querier, id int64, u ShopUpdate) (*models.Shop, error) {
	query := `
		UPDATE shops
		SET name = COALESCE($2, name),
		    logo = COALESCE($3, logo),
		    description = COALESCE($4, description),
		    email = COALESCE($5, email),
		    contact_number = COALESCE($6, contact_number),
		    address = COALESCE($7, address),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + shopColumns

	return queryShop(ctx, q, "update shop", query,
		id, u.Name, u.Logo, u.Description, u.Email, u.ContactNumber, u.Address)
}

// ShopState holds the lifecycle flags changed by admin and owner actions.
// Nil fields are left as they are.
type ShopState struct {
	Status            *models.ShopStatus
	IsVerified        *bool
	IsDeleted         *bool
	IsTemporaryDelete *bool
}

func SetShopState(ctx context.Context, q database.Querier, id int64, st ShopState) (*models.Shop, error) {
	query := `
		UPDATE shops
		SET status = COALESCE($2, status),
		    is_verified = COALESCE($3, is_verified),
		    is_deleted = COALESCE($4, is_deleted),
		    is_temporary_delete = COALESCE($5, is_temporary_delete),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + shopColumns

	return queryShop(ctx, q, "set shop state", query,
		id, st.Status, st.IsVerified, st.IsDeleted, st.IsTemporaryDelete)
}

type ShopFilter struct {
	Status     *models.ShopStatus
	SearchTerm string
}

func ListShops(ctx context.Context, db *sql.DB, sf ShopFilter, params PageParams) (*OffsetPage[models.Shop], error) {
	var f filter
	f.where("is_deleted = FALSE")
	if sf.Status != nil {
		f.eq("status", *sf.Status)
	}
	f.search(sf.SearchTerm, "name", "email", "description")

	page, err := listAndCount(ctx, db, shopColumns, "shops", &f, Paginate(params, shopSortable), scanShop)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	return page, nil
}
