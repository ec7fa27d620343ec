package handler // handler defines http handlers

import (
	"context"
	"time"

	"github.com/jortega/backoffice-api/internal/model"
	"github.com/jortega/backoffice-api/internal/queue"
)

// Handlers depend on narrow store interfaces rather than the concrete
// repository types so tests can swap in fakes. The repository types satisfy
// these interfaces as-is.

// UserStore is the persistence surface the account handlers need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, id uint64, firstName, lastName string) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	UpdateAdmin(ctx context.Context, u model.User) error
	SetRole(ctx context.Context, id uint64, role string) error
	SetActive(ctx context.Context, id uint64, active bool) error
	TouchLastLogin(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
}

// CompanyStore is the persistence surface the company handlers need.
type CompanyStore interface {
	Create(ctx context.Context, c *model.Company) error
	Update(ctx context.Context, c model.Company) error
	GetByID(ctx context.Context, id uint64) (model.Company, error)
	GetPrimary(ctx context.Context) (model.Company, error)
	List(ctx context.Context) ([]model.Company, error)
	Delete(ctx context.Context, id uint64) error
}

// ClientStore is the persistence surface for customer contacts.
type ClientStore interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id uint64) (model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	Update(ctx context.Context, c model.Client) error
	Delete(ctx context.Context, id uint64) error
}

// ProviderStore is the persistence surface for supplier contacts.
type ProviderStore interface {
	Create(ctx context.Context, p *model.Provider) error
	GetByID(ctx context.Context, id uint64) (model.Provider, error)
	List(ctx context.Context) ([]model.Provider, error)
	Update(ctx context.Context, p model.Provider) error
	Delete(ctx context.Context, id uint64) error
}

// WarehouseStore is the persistence surface for storage locations.
type WarehouseStore interface {
	Create(ctx context.Context, w *model.Warehouse) error
	GetByID(ctx context.Context, id uint64) (model.Warehouse, error)
	List(ctx context.Context) ([]model.Warehouse, error)
	Update(ctx context.Context, w model.Warehouse) error
	Delete(ctx context.Context, id uint64) error
}

// ArticleStore is the persistence surface for catalog items.
type ArticleStore interface {
	Create(ctx context.Context, a *model.Article) error
	GetByID(ctx context.Context, id uint64) (model.Article, error)
	List(ctx context.Context) ([]model.Article, error)
	Update(ctx context.Context, a model.Article) error
	Delete(ctx context.Context, id uint64) error
}

// RefreshBlacklist records redeemed refresh tokens. Redeem must be atomic:
// under concurrent redemption of the same jti exactly one call succeeds.
type RefreshBlacklist interface {
	Redeem(ctx context.Context, jti string, ttl time.Duration) error
}

// AuditPublisher ships account events to the broker. Publishing is best
// effort: handlers log failures and carry on.
type AuditPublisher func(ctx context.Context, ev queue.AccountEvent) error

// dbTimeout bounds every store call made from a handler.
const dbTimeout = 5 * time.Second
