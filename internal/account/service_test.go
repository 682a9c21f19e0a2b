package account_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/safar/marketplace/internal/account"
	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/auth"
	"github.com/safar/marketplace/internal/config"
	"github.com/safar/marketplace/internal/dbtest"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/store"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type AccountSuite struct {
	suite.Suite
	db     *sql.DB
	tokens *auth.Tokens
	svc    *account.Service
	seed   *dbtest.Seed
	admin  dbtest.Account
}

func TestAccountSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(AccountSuite))
}

func (s *AccountSuite) SetupSuite() {
	s.db = dbtest.New(s.T())
	s.tokens = auth.NewTokens(config.AuthConfig{Secret: "test-secret", TokenTTL: time.Hour, Issuer: "marketplace"})
	s.svc = account.NewService(s.db, s.tokens, zap.NewNop())
}

func (s *AccountSuite) SetupTest() {
	dbtest.Reset(s.T(), s.db)
	s.seed = dbtest.NewSeed(s.T(), s.db)
	s.admin = s.seed.Account(models.RoleAdmin)
}

func (s *AccountSuite) signUp(email string, role models.Role) (*account.Session, error) {
	return s.svc.SignUp(context.Background(), account.SignUpInput{
		Email:         email,
		Password:      "hunter22",
		Role:          role,
		Name:          "Karim",
		ContactNumber: "01912345678",
		Address:       "Khulna",
	})
}

func (s *AccountSuite) TestSignUpAndLogin() {
	session, err := s.signUp("Karim@Example.com", models.RoleCustomer)
	s.Require().NoError(err)
	s.Equal("karim@example.com", session.User.Email)
	s.Require().NotNil(session.User.Profile)

	claims, err := s.tokens.Verify(session.AccessToken)
	s.Require().NoError(err)
	s.Equal(session.User.ID, claims.UserID)
	s.Equal(models.RoleCustomer, claims.Role)

	_, err = s.signUp("karim@example.com", models.RoleVendor)
	s.Equal(apperr.CodeConflict, apperr.CodeOf(err))

	logged, err := s.svc.Login(context.Background(), "karim@example.com", "hunter22")
	s.Require().NoError(err)
	s.Equal(session.User.ID, logged.User.ID)

	_, err = s.svc.Login(context.Background(), "karim@example.com", "wrong-password")
	s.EqualError(err, "Invalid email or password")

	ctx := auth.WithClaims(context.Background(), claims)
	me, err := s.svc.Me(ctx)
	s.Require().NoError(err)
	s.Equal("Karim", me.Profile.Name)
}

func (s *AccountSuite) TestAdminSignUpNeedsAdmin() {
	_, err := s.signUp("boss@example.com", models.RoleAdmin)
	s.Equal(apperr.CodeUnauthorized, apperr.CodeOf(err))

	session, err := s.svc.SignUp(s.admin.Context(context.Background()), account.SignUpInput{
		Email: "boss@example.com", Password: "hunter22", Role: models.RoleAdmin, Name: "Boss",
	})
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, session.User.Role)
}

func (s *AccountSuite) TestShortPassword() {
	_, err := s.svc.SignUp(context.Background(), account.SignUpInput{
		Email: "short@example.com", Password: "123", Role: models.RoleCustomer, Name: "Short",
	})
	s.Equal(apperr.CodeBadRequest, apperr.CodeOf(err))

	n, err := store.ListUsers(context.Background(), s.db, store.UserFilter{SearchTerm: "short"}, store.PageParams{})
	s.Require().NoError(err)
	s.Equal(0, n.Total)
}

func (s *AccountSuite) TestUpdateUserStatus() {
	target := s.seed.Account(models.RoleVendor)
	ctx := s.admin.Context(context.Background())

	past := time.Now().Add(-time.Hour)
	end := time.Now().Add(72 * time.Hour)
	_, err := s.svc.UpdateUserStatus(ctx, account.StatusInput{
		UserID: target.User.ID, Status: models.UserStatusSuspended, StartTime: &past, EndTime: &end,
	})
	s.Equal(apperr.CodeBadRequest, apperr.CodeOf(err))

	_, err = s.svc.UpdateUserStatus(ctx, account.StatusInput{UserID: target.User.ID, Status: models.UserStatusSuspended})
	s.EqualError(err, "startTime and endTime required")

	start := time.Now().Add(time.Minute)
	user, err := s.svc.UpdateUserStatus(ctx, account.StatusInput{
		UserID: target.User.ID, Status: models.UserStatusSuspended, StartTime: &start, EndTime: &end,
	})
	s.Require().NoError(err)
	s.Equal(models.UserStatusSuspended, user.Status)
	s.NotNil(user.SuspendedUntil)

	_, err = s.svc.UpdateUserStatus(ctx, account.StatusInput{UserID: target.User.ID, Status: models.UserStatusActive})
	s.EqualError(err, "User already suspended or deleted")

	_, err = s.svc.Login(context.Background(), target.User.Email, "secret123")
	s.Equal(apperr.CodeForbidden, apperr.CodeOf(err))

	_, err = s.svc.ListUsers(target.Context(context.Background()), store.UserFilter{}, store.PageParams{})
	s.Equal(apperr.CodeForbidden, apperr.CodeOf(err))
}

func (s *AccountSuite) TestDeleteMarksProfile() {
	target := s.seed.Account(models.RoleCustomer)

	user, err := s.svc.UpdateUserStatus(s.admin.Context(context.Background()), account.StatusInput{
		UserID: target.User.ID, Status: models.UserStatusDeleted,
	})
	s.Require().NoError(err)
	s.Equal(models.UserStatusDeleted, user.Status)
	s.True(user.Profile.IsDeleted)
}
