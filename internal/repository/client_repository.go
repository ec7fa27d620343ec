package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jortega/backoffice-api/internal/model"
)

// ClientRepo persists customer contacts in the `clients` table.
type ClientRepo struct{ DB *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

// Create inserts a client and fills in its ID.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clients (name, email, phone) VALUES (?,?,?)", c.Name, c.Email, c.Phone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a single client.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	var c model.Client
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,phone,created_at,updated_at FROM clients WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, ErrNotFound
	}
	return c, err
}

// List returns all clients, newest first.
func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,phone,created_at,updated_at FROM clients ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Client{}
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites the contact fields.
func (r *ClientRepo) Update(ctx context.Context, c model.Client) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE clients SET name=?, email=?, phone=? WHERE id=?", c.Name, c.Email, c.Phone, c.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, gerr := r.GetByID(ctx, c.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a client row.
func (r *ClientRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM clients WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
