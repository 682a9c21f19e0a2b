package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/auth"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/store"
)

// CurrentCaller builds the Caller for the identity on ctx. It returns a nil
// Caller and no error for anonymous requests, so CanPerform can answer
// UNAUTHORIZED in one place.
func CurrentCaller(ctx context.Context, q database.Querier) (*Caller, error) {
	claims, ok := auth.FromContext(ctx)
	if !ok {
		return nil, nil
	}

	user, err := store.GetUser(ctx, q, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, apperr.Forbidden(fmt.Sprintf("Your account is %s", user.Status))
	}

	caller := &Caller{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	profile, err := store.GetProfileByUser(ctx, q, user.ID, user.Role)
	switch {
	case errors.Is(err, database.ErrProfileNotFound):
		return caller, nil
	case err != nil:
		return nil, err
	}

	caller.ProfileID = profile.ID
	switch user.Role {
	case models.RoleCustomer:
		caller.CustomerID = profile.ID
	case models.RoleVendor:
		caller.VendorID = profile.ID
	}

	return caller, nil
}

// Authorize resolves the caller and checks action against r in one step.
func Authorize(ctx context.Context, q database.Querier, action Action, r Resource) (*Caller, error) {
	caller, err := CurrentCaller(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := CanPerform(caller, action, r); err != nil {
		return nil, err
	}
	return caller, nil
}
