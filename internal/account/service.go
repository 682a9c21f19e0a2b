// Package account handles sign-up, login and user administration.
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/auth"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/policy"
	"github.com/safar/marketplace/internal/store"
	"go.uber.org/zap"
)

var errBadCredentials = apperr.Unauthorized("Invalid email or password")

type Service struct {
	db     *sql.DB
	tokens *auth.Tokens
	log    *zap.Logger
	txOpts database.TxOptions
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithTxOptions(opts database.TxOptions) Option { return func(s *Service) { s.txOpts = opts } }

func NewService(db *sql.DB, tokens *auth.Tokens, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:     db,
		tokens: tokens,
		log:    log.Named("account"),
		txOpts: database.DefaultTxOptions(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SignUpInput struct {
	Email         string
	Password      string
	Role          models.Role
	Name          string
	ContactNumber string
	Address       string
	ProfileImg    *string
}

// Session is a user with a freshly issued access token.
type Session struct {
	AccessToken string
	User        *models.User
}

// SignUp creates the user and its role profile together. Only an admin may
// create another admin.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case in.Email == "":
		return nil, apperr.BadRequest("email is required")
	case strings.TrimSpace(in.Name) == "":
		return nil, apperr.BadRequest("name is required")
	case !in.Role.Valid():
		return nil, apperr.BadRequest("Invalid role")
	}

	if in.Role == models.RoleAdmin {
		if _, err := policy.Authorize(ctx, s.db, policy.ManageUsers, policy.Resource{}); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, apperr.BadRequest(err.Error())
		}
		return nil, err
	}

	var user *models.User
	err = database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		created, err := store.CreateUser(ctx, tx, in.Email, hash, in.Role)
		if err != nil {
			return err
		}
		profile, err := store.CreateProfile(ctx, tx, &models.Profile{
			UserID:        created.ID,
			Role:          in.Role,
			Name:          in.Name,
			Email:         in.Email,
			ContactNumber: in.ContactNumber,
			Address:       in.Address,
			ProfileImg:    in.ProfileImg,
		})
		if err != nil {
			return err
		}
		created.Profile = profile
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.session(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := store.GetUserByEmail(ctx, s.db, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errBadCredentials
	}
	if user.Status != models.UserStatusActive {
		return nil, apperr.Forbidden(fmt.Sprintf("Your account is %s", user.Status))
	}

	return s.session(user)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: user}, nil
}

// Me returns the calling user with their profile.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	caller, err := policy.Authorize(ctx, s.db, policy.ViewSelf, policy.Resource{})
	if err != nil {
		return nil, err
	}
	return s.withProfile(ctx, caller.UserID)
}

func (s *Service) withProfile(ctx context.Context, id int64) (*models.User, error) {
	user, err := store.GetUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	profile, err := store.GetProfileByUser(ctx, s.db, user.ID, user.Role)
	switch {
	case err == nil:
		user.Profile = profile
	case !errors.Is(err, database.ErrProfileNotFound):
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, f store.UserFilter, p store.PageParams) (*store.OffsetPage[models.User], error) {
	if _, err := policy.Authorize(ctx, s.db, policy.ManageUsers, policy.Resource{}); err != nil {
		return nil, err
	}
	return store.ListUsers(ctx, s.db, f, p)
}

type StatusInput struct {
	UserID    int64
	Status    models.UserStatus
	StartTime *time.Time
	EndTime   *time.Time
}

// UpdateUserStatus changes a user's account status. A suspension needs a
// window that starts now or later. Suspended and deleted users cannot be
// changed again.
func (s *Service) UpdateUserStatus(ctx context.Context, in StatusInput) (*models.User, error) {
	caller, err := policy.Authorize(ctx, s.db, policy.ManageUsers, policy.Resource{})
	if err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, apperr.BadRequest("Invalid status update.")
	}

	user, err := store.GetUser(ctx, s.db, in.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status == models.UserStatusSuspended || user.Status == models.UserStatusDeleted {
		return nil, apperr.BadRequest("User already suspended or deleted")
	}

	var from, until *time.Time
	if in.Status == models.UserStatusSuspended {
		if in.StartTime == nil || in.EndTime == nil {
			return nil, apperr.BadRequest("startTime and endTime required")
		}
		now := s.now()
		if in.StartTime.Before(now) {
			return nil, apperr.BadRequest(fmt.Sprintf(
				"startTime must be equal to or later than the current date-time. Current time: %s",
				now.UTC().Format(time.RFC3339)))
		}
		if !in.EndTime.After(*in.StartTime) {
			return nil, apperr.BadRequest("endTime must be after startTime")
		}
		from, until = in.StartTime, in.EndTime
	}

	err = database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		if _, err := store.UpdateUserStatus(ctx, tx, user.ID, in.Status, from, until); err != nil {
			return err
		}
		err := store.SetProfileDeleted(ctx, tx, user.ID, user.Role, in.Status == models.UserStatusDeleted)
		if errors.Is(err, database.ErrProfileNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user status updated",
		zap.Int64("user_id", user.ID),
		zap.String("status", string(in.Status)),
		zap.Int64("admin_user_id", caller.UserID))
	return s.withProfile(ctx, user.ID)
}
