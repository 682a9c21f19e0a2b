package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/safar/marketplace/internal/account"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/store"
)

type signUpInput struct {
	Email         string
	Password      string
	Role          string
	Name          string
	ContactNumber string
	Address       string
	ProfileImg    *string
}

type userStatusInput struct {
	UserID    int32
	Status    string
	StartTime *graphql.Time
	EndTime   *graphql.Time
}

type userFilterInput struct {
	Role       *string
	Status     *string
	SearchTerm *string
}

func (f *userFilterInput) filter() store.UserFilter {
	if f == nil {
		return store.UserFilter{}
	}
	return store.UserFilter{
		Role:       enumPtr[models.Role](f.Role),
		Status:     enumPtr[models.UserStatus](f.Status),
		SearchTerm: deref(f.SearchTerm),
	}
}

func newSessionView(s *account.Session) *sessionView {
	return &sessionView{AccessToken: s.AccessToken, User: newUserView(s.User)}
}

func (r *Resolver) SignUp(ctx context.Context, args struct{ Input signUpInput }) (*response[*sessionView], error) {
	in := args.Input
	session, err := r.accounts.SignUp(ctx, account.SignUpInput{
		Email:         in.Email,
		Password:      in.Password,
		Role:          models.Role(in.Role),
		Name:          in.Name,
		ContactNumber: in.ContactNumber,
		Address:       in.Address,
		ProfileImg:    in.ProfileImg,
	})
	if err != nil {
		return nil, r.fail("signUp", err)
	}
	return created("User registered successfully", newSessionView(session)), nil
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*response[*sessionView], error) {
	session, err := r.accounts.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, r.fail("login", err)
	}
	return ok("Logged in successfully", newSessionView(session)), nil
}

func (r *Resolver) Me(ctx context.Context) (*response[*userView], error) {
	user, err := r.accounts.Me(ctx)
	if err != nil {
		return nil, r.fail("me", err)
	}
	return ok("User retrieved successfully", newUserView(user)), nil
}

func (r *Resolver) Users(ctx context.Context, args struct {
	Filter *userFilterInput
	Page   *pageInput
}) (*listResponse[*userView], error) {
	page, err := r.accounts.ListUsers(ctx, args.Filter.filter(), args.Page.params())
	if err != nil {
		return nil, r.fail("users", err)
	}
	return list("Users retrieved successfully", page, newUserView), nil
}

func (r *Resolver) UpdateUserStatus(ctx context.Context, args struct{ Input userStatusInput }) (*response[*userView], error) {
	in := account.StatusInput{
		UserID: int64(args.Input.UserID),
		Status: models.UserStatus(args.Input.Status),
	}
	if t := args.Input.StartTime; t != nil {
		in.StartTime = &t.Time
	}
	if t := args.Input.EndTime; t != nil {
		in.EndTime = &t.Time
	}

	user, err := r.accounts.UpdateUserStatus(ctx, in)
	if err != nil {
		return nil, r.fail("updateUserStatus", err)
	}
	return ok("User status updated successfully", newUserView(user)), nil
}
