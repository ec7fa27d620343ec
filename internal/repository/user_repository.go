package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jortega/backoffice-api/internal/model"
)

// userColumns is the select list shared by every user query in this file.
const userColumns = "id,email,password_hash,role,is_active,is_staff,is_superuser,company_id,first_name,last_name,last_login,created_at,updated_at"

// UserRepo persists accounts in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts an account and fills in its ID. Email is normalized before
// the insert; uniqueness is still enforced by the database unique key so a
// concurrent duplicate registration surfaces as ErrEmailExists (MySQL 1062)
// for exactly one of the two callers.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, is_active, is_staff, is_superuser, company_id, first_name, last_name) VALUES (?,?,?,?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.Role, u.IsActive, u.IsStaff, u.IsSuperuser, u.CompanyID, u.FirstName, u.LastName)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches an account by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all accounts, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
			&u.IsStaff, &u.IsSuperuser, &u.CompanyID, &u.FirstName, &u.LastName,
			&lastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			u.LastLogin = &t
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile changes the name fields of an account. This is the only
// mutation available to non-admin account holders.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName string) error {
	return r.exec(ctx, "UPDATE users SET first_name=?, last_name=? WHERE id=?", firstName, lastName, id)
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.exec(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
}

// UpdateAdmin applies a full admin field edit. The password hash, staff and
// superuser flags are deliberately excluded from this path.
func (r *UserRepo) UpdateAdmin(ctx context.Context, u model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email=?, role=?, is_active=?, company_id=?, first_name=?, last_name=? WHERE id=?",
		u.Email, u.Role, u.IsActive, u.CompanyID, u.FirstName, u.LastName, u.ID)
	if err != nil && strings.Contains(err.Error(), "1062") {
		return ErrEmailExists
	}
	return err
}

// SetRole changes the account role. The caller validates the value first.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) error {
	return r.exec(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
}

// SetActive toggles the active flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	return r.exec(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
}

// TouchLastLogin records a successful credential login. Called on token
// issuance at login, never on refresh.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	return r.exec(ctx, "UPDATE users SET last_login=NOW() WHERE id=?", id)
}

// Delete removes an account row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) exec(ctx context.Context, query string, args ...any) error {
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.IsStaff, &u.IsSuperuser, &u.CompanyID, &u.FirstName, &u.LastName,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}
