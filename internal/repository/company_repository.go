package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jortega/backoffice-api/internal/model"
)

// CompanyRepo persists tenants in the `companies` table. The is_primary
// invariant (at most one primary row) is enforced here: every write that
// promotes a company runs the demote and the promote inside one transaction
// so there is never a window with zero or two primaries.
type CompanyRepo struct{ DB *sql.DB }

func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{DB: db} }

// Create inserts a company and fills in its ID. When IsPrimary is set, all
// other rows are demoted in the same transaction.
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"INSERT INTO companies (name, is_primary) VALUES (?,?)", c.Name, c.IsPrimary)
	if err != nil {
		return err
	}
	var id int64
	id, err = res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	if c.IsPrimary {
		_, err = tx.ExecContext(ctx,
			"UPDATE companies SET is_primary=0 WHERE id<>?", c.ID)
	}
	return err
}

// Update rewrites name and is_primary. Promotion demotes siblings inside
// the transaction, mirroring Create.
func (r *CompanyRepo) Update(ctx context.Context, c model.Company) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"UPDATE companies SET name=?, is_primary=? WHERE id=?", c.Name, c.IsPrimary, c.ID)
	if err != nil {
		return err
	}
	if n, rerr := res.RowsAffected(); rerr == nil && n == 0 {
		// Distinguish "no such row" from "no change": the row must exist.
		var exists int
		if err = tx.QueryRowContext(ctx, "SELECT 1 FROM companies WHERE id=?", c.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = ErrNotFound
			}
			return err
		}
	}
	if c.IsPrimary {
		_, err = tx.ExecContext(ctx,
			"UPDATE companies SET is_primary=0 WHERE id<>?", c.ID)
	}
	return err
}

// GetByID fetches a single company.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (model.Company, error) {
	return scanCompany(r.DB.QueryRowContext(ctx,
		"SELECT id,name,is_primary,created_at,updated_at FROM companies WHERE id=? LIMIT 1", id))
}

// GetPrimary fetches the company currently flagged as primary.
func (r *CompanyRepo) GetPrimary(ctx context.Context) (model.Company, error) {
	return scanCompany(r.DB.QueryRowContext(ctx,
		"SELECT id,name,is_primary,created_at,updated_at FROM companies WHERE is_primary=1 LIMIT 1"))
}

// List returns all companies, newest first.
func (r *CompanyRepo) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,is_primary,created_at,updated_at FROM companies ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Company{}
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.IsPrimary, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a company. The users.company_id foreign key is RESTRICT,
// so MySQL rejects the delete (error 1451) while accounts still reference
// the row; that is surfaced as ErrCompanyInUse.
func (r *CompanyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM companies WHERE id=?", id)
	if err != nil {
		if strings.Contains(err.Error(), "1451") {
			return ErrCompanyInUse
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedDefault creates the "Mi Empresa" row and marks it primary when the
// table is empty. Called once at startup so registration always has a
// primary company to attach new accounts to.
func (r *CompanyRepo) SeedDefault(ctx context.Context) error {
	var count int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM companies").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO companies (name, is_primary) VALUES ('Mi Empresa', 1)")
	return err
}

func scanCompany(row *sql.Row) (model.Company, error) {
	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.IsPrimary, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, ErrNotFound
	}
	return c, err
}
