package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jortega/backoffice-api/internal/model"
)

// ArticleRepo persists catalog items in the `articles` table.
type ArticleRepo struct{ DB *sql.DB }

func NewArticleRepo(db *sql.DB) *ArticleRepo { return &ArticleRepo{DB: db} }

func (r *ArticleRepo) Create(ctx context.Context, a *model.Article) error {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO articles (name) VALUES (?)", a.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (r *ArticleRepo) GetByID(ctx context.Context, id uint64) (model.Article, error) {
	var a model.Article
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,created_at,updated_at FROM articles WHERE id=? LIMIT 1",
		id).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, ErrNotFound
	}
	return a, err
}

func (r *ArticleRepo) List(ctx context.Context) ([]model.Article, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,created_at,updated_at FROM articles ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Article{}
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ArticleRepo) Update(ctx context.Context, a model.Article) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE articles SET name=? WHERE id=?", a.Name, a.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, gerr := r.GetByID(ctx, a.ID); gerr != nil {
			return gerr
		}
	}
	return nil
}

func (r *ArticleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM articles WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedDefault creates the "Mi Artículo" row when the table is empty,
// matching the company seed behaviour at startup.
func (r *ArticleRepo) SeedDefault(ctx context.Context) error {
	var count int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, "INSERT INTO articles (name) VALUES ('Mi Artículo')")
	return err
}
