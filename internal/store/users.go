package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safar/marketplace/internal/apperr"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
)

const userColumns = `id, email, password_hash, role, status, suspended_from, suspended_until, created_at, updated_at`

// profileTables maps each role to the table holding its profile rows.
var profileTables = map[models.Role]string{
	models.RoleAdmin:    "admins",
	models.RoleVendor:   "vendors",
	models.RoleCustomer: "customers",
}

var userSortable = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"email":     "email",
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.SuspendedFrom,
		&u.SuspendedUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func CreateUser(ctx context.Context, q database.Querier, email, passwordHash string, role models.Role) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + userColumns

	user, err := scanUser(q.QueryRowContext(ctx, query, email, passwordHash, role, models.UserStatusActive))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

func GetUser(ctx context.Context, q database.Querier, id int64) (*models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func GetUserByEmail(ctx context.Context, q database.Querier, email string) (*models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

type UserFilter struct {
	Role       *models.Role
	Status     *models.UserStatus
	SearchTerm string
}

func ListUsers(ctx context.Context, db *sql.DB, uf UserFilter, params PageParams) (*OffsetPage[models.User], error) {
	var f filter
	if uf.Role != nil {
		f.eq("role", *uf.Role)
	}
	if uf.Status != nil {
		f.eq("status", *uf.Status)
	}
	f.search(uf.SearchTerm, "email")

	page, err := listAndCount(ctx, db, userColumns, "users", &f, Paginate(params, userSortable), scanUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}

func UpdateUserStatus(ctx context.Context, q database.Querier, id int64, status models.UserStatus, from, until *time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET status = $2,
		    suspended_from = $3,
		    suspended_until = $4,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(q.QueryRowContext(ctx, query, id, status, from, until))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user status: %w", err)
	}

	return &user, nil
}

const profileColumns = `id, user_id, name, email, contact_number, address, profile_img, is_deleted, created_at, updated_at`

func scanProfile(row rowScanner, role models.Role) (*models.Profile, error) {
	p := &models.Profile{Role: role}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.ContactNumber,
		&p.Address,
		&p.ProfileImg,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func profileTable(role models.Role) (string, error) {
	table, ok := profileTables[role]
	if !ok {
		return "", apperr.BadRequest(fmt.Sprintf("Unknown role %q", role))
	}
	return table, nil
}

func CreateProfile(ctx context.Context, q database.Querier, p *models.Profile) (*models.Profile, error) {
	table, err := profileTable(p.Role)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, name, email, contact_number, address, profile_img, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING %s`, table, profileColumns)

	profile, err := scanProfile(q.QueryRowContext(ctx, query,
		p.UserID, p.Name, p.Email, p.ContactNumber, p.Address, p.ProfileImg), p.Role)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Profile with this email already exists")
		}
		return nil, fmt.Errorf("create %s profile: %w", p.Role, err)
	}

	return profile, nil
}

func GetProfileByUser(ctx context.Context, q database.Querier, userID int64, role models.Role) (*models.Profile, error) {
	table, err := profileTable(role)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1`, profileColumns, table)

	profile, err := scanProfile(q.QueryRowContext(ctx, query, userID), role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get %s profile: %w", role, err)
	}

	return profile, nil
}

// SetProfileDeleted flags the user's role profile deleted or live again.
func SetProfileDeleted(ctx context.Context, q database.Querier, userID int64, role models.Role, deleted bool) error {
	table, err := profileTable(role)
	if err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET is_deleted = $2, updated_at = NOW() WHERE user_id = $1`, table),
		userID, deleted)
	if err != nil {
		return fmt.Errorf("update %s profile: %w", role, err)
	}
	return expectOne(result, database.ErrProfileNotFound)
}
