package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jortega/backoffice-api/internal/model"
)

// ProviderRepo persists supplier contacts in the `providers` table. Same
// shape as ClientRepo over its own table.
type ProviderRepo struct{ DB *sql.DB }

func NewProviderRepo(db *sql.DB) *ProviderRepo { return &ProviderRepo{DB: db} }

func (r *ProviderRepo) Create(ctx context.Context, p *model.Provider) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO providers (name, email, phone) VALUES (?,?,?)", p.Name, p.Email, p.Phone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

func (r *ProviderRepo) GetByID(ctx context.Context, id uint64) (model.Provider, error) {
	var p model.Provider
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,phone,created_at,updated_at FROM providers WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Provider{}, ErrNotFound
	}
	return p, err
}

func (r *ProviderRepo) List(ctx context.Context) ([]model.Provider, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,phone,created_at,updated_at FROM providers ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Provider{}
	for rows.Next() {
		var p model.Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProviderRepo) Update(ctx context.Context, p model.Provider) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE providers SET name=?, email=?, phone=? WHERE id=?", p.Name, p.Email, p.Phone, p.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, gerr := r.GetByID(ctx, p.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

func (r *ProviderRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM providers WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
