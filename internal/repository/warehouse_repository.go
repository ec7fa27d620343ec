package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jortega/backoffice-api/internal/model"
)

// WarehouseRepo persists storage locations in the `warehouses` table.
type WarehouseRepo struct{ DB *sql.DB }

func NewWarehouseRepo(db *sql.DB) *WarehouseRepo { return &WarehouseRepo{DB: db} }

func (r *WarehouseRepo) Create(ctx context.Context, w *model.Warehouse) error {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO warehouses (name) VALUES (?)", w.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id uint64) (model.Warehouse, error) {
	var w model.Warehouse
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,created_at,updated_at FROM warehouses WHERE id=? LIMIT 1",
		id).Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Warehouse{}, ErrNotFound
	}
	return w, err
}

func (r *WarehouseRepo) List(ctx context.Context) ([]model.Warehouse, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,created_at,updated_at FROM warehouses ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Warehouse{}
	for rows.Next() {
		var w model.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *WarehouseRepo) Update(ctx context.Context, w model.Warehouse) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE warehouses SET name=? WHERE id=?", w.Name, w.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, gerr := r.GetByID(ctx, w.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

func (r *WarehouseRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM warehouses WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
