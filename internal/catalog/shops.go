package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/policy"
	"github.com/safar/marketplace/internal/store"
	"go.uber.org/zap"
)

type ShopInput struct {
	Name          string
	Logo          *string
	Description   *string
	Email         string
	ContactNumber string
	Address       string
}

func (in ShopInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.BadRequest("name is required")
	case strings.TrimSpace(in.Email) == "":
		return apperr.BadRequest("email is required")
	case strings.TrimSpace(in.ContactNumber) == "":
		return apperr.BadRequest("contactNumber is required")
	case strings.TrimSpace(in.Address) == "":
		return apperr.BadRequest("address is required")
	}
	return nil
}

// CreateShop opens the calling vendor's shop. A vendor owns at most one.
func (s *Service) CreateShop(ctx context.Context, in ShopInput) (*models.Shop, error) {
	caller, err := policy.Authorize(ctx, s.db, policy.CreateShop, policy.Resource{})
	if err != nil {
		return nil, err
	}
	if caller.VendorID == 0 {
		return nil, apperr.NotFound("Vendor profile not found")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	_, err = store.GetShopByVendor(ctx, s.db, caller.VendorID)
	switch {
	case err == nil:
		return nil, apperr.BadRequest("Vendor already has a shop")
	case !errors.Is(err, database.ErrShopNotFound):
		return nil, err
	}

	shop, err := store.CreateShop(ctx, s.db, &models.Shop{
		VendorID:      caller.VendorID,
		Name:          in.Name,
		Logo:          in.Logo,
		Description:   in.Description,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Address:       in.Address,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("shop created", zap.Int64("shop_id", shop.ID), zap.Int64("vendor_id", caller.VendorID))
	return shop, nil
}

// managedShop loads a shop and checks that the caller may act on it.
func (s *Service) managedShop(ctx context.Context, action policy.Action, id int64) (*policy.Caller, *models.Shop, error) {
	caller, err := policy.CurrentCaller(ctx, s.db)
	if err != nil {
		return nil, nil, err
	}
	if err := policy.CanAttempt(caller, action); err != nil {
		return nil, nil, err
	}

	shop, err := store.GetShop(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	if err := policy.CanPerform(caller, action, policy.Resource{VendorID: shop.VendorID}); err != nil {
		return nil, nil, err
	}
	return caller, shop, nil
}

func (s *Service) UpdateShop(ctx context.Context, id int64, u store.ShopUpdate) (*models.Shop, error) {
	if _, _, err := s.managedShop(ctx, policy.ManageShop, id); err != nil {
		return nil, err
	}
	return store.UpdateShop(ctx, s.db, id, u)
}

// TemporaryDeleteShop hides the shop until it is restored.
func (s *Service) TemporaryDeleteShop(ctx context.Context, id int64) (*models.Shop, error) {
	if _, _, err := s.managedShop(ctx, policy.ManageShop, id); err != nil {
		return nil, err
	}
	return store.SetShopState(ctx, s.db, id, store.ShopState{
		Status:            ptr(models.ShopStatusInactive),
		IsTemporaryDelete: ptr(true),
	})
}

// RestoreShop reactivates a shop. Only an admin can bring back a shop that
// was deleted outright.
func (s *Service) RestoreShop(ctx context.Context, id int64) (*models.Shop, error) {
	caller, _, err := s.managedShop(ctx, policy.ManageShop, id)
	if err != nil {
		return nil, err
	}

	st := store.ShopState{
		Status:            ptr(models.ShopStatusActive),
		IsTemporaryDelete: ptr(false),
	}
	if caller.Is(models.RoleAdmin) {
		st.IsDeleted = ptr(false)
	}
	return store.SetShopState(ctx, s.db, id, st)
}

func (s *Service) VerifyShop(ctx context.Context, id int64) (*models.Shop, error) {
	if _, _, err := s.managedShop(ctx, policy.AdministerShop, id); err != nil {
		return nil, err
	}
	return store.SetShopState(ctx, s.db, id, store.ShopState{IsVerified: ptr(true)})
}

func (s *Service) DeleteShop(ctx context.Context, id int64) (*models.Shop, error) {
	if _, _, err := s.managedShop(ctx, policy.AdministerShop, id); err != nil {
		return nil, err
	}
	shop, err := store.SetShopState(ctx, s.db, id, store.ShopState{
		Status:    ptr(models.ShopStatusDeleted),
		IsDeleted: ptr(true),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("shop deleted", zap.Int64("shop_id", id))
	return shop, nil
}

func (s *Service) GetShop(ctx context.Context, id int64) (*models.Shop, error) {
	return store.GetShop(ctx, s.db, id)
}

func (s *Service) ListShops(ctx context.Context, f store.ShopFilter, p store.PageParams) (*store.OffsetPage[models.Shop], error) {
	return store.ListShops(ctx, s.db, f, p)
}

// MyShop returns the calling vendor's shop.
func (s *Service) MyShop(ctx context.Context) (*models.Shop, error) {
	caller, err := policy.Authorize(ctx, s.db, policy.ViewOwnShop, policy.Resource{})
	if err != nil {
		return nil, err
	}
	return store.GetShopByVendor(ctx, s.db, caller.VendorID)
}

func ptr[T any](v T) *T { return &v }
