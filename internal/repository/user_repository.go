package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"roombook/internal/booking"
	"roombook/internal/model"
	"roombook/internal/utils"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

var ErrEmailExists = errors.New("email already exists")

const userCols = `id, email, name, password_hash, role,
	calendar_access_token, calendar_refresh_token, calendar_token_expires_at,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var access, refresh sql.NullString
	var expiry sql.NullTime
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&access, &refresh, &expiry, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if access.Valid {
		v := access.String
		u.CalendarAccessToken = &v
	}
	if refresh.Valid {
		v := refresh.String
		u.CalendarRefreshToken = &v
	}
	if expiry.Valid {
		t := expiry.Time
		u.CalendarTokenExpiry = &t
	}
	return &u, nil
}

// Create inserts a user with a bcrypt-hashed password and returns the
// new ID. Duplicate emails surface as ErrEmailExists (MySQL 1062).
func (r *UserRepo) Create(ctx context.Context, email, name, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, role) VALUES (?, ?, ?, ?)`,
		email, name, hash, role)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email. A miss returns
// booking.ErrUserNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email = ? LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = ? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateCalendarTokens persists rotated OAuth2 calendar tokens after a
// refresh. refresh may be nil to keep the stored refresh token.
func (r *UserRepo) UpdateCalendarTokens(ctx context.Context, userID uint64, access string, refresh *string, expiry time.Time) error {
	if refresh != nil {
		_, err := r.db.ExecContext(ctx,
			`UPDATE users SET calendar_access_token = ?, calendar_refresh_token = ?, calendar_token_expires_at = ? WHERE id = ?`,
			access, *refresh, expiry.UTC(), userID)
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET calendar_access_token = ?, calendar_token_expires_at = ? WHERE id = ?`,
		access, expiry.UTC(), userID)
	return err
}
