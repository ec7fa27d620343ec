package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jortega/backoffice-api/internal/model"
	"github.com/jortega/backoffice-api/internal/repository"
)

// In-memory fakes implementing the store interfaces. They reproduce the
// repository error contract (sentinels from internal/repository) so the
// handlers under test exercise the same branches as in production.

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[uint64]model.User{}}
}

func (s *fakeUserStore) add(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextID
	s.nextID++
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return u
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == strings.ToLower(u.Email) {
			return repository.ErrEmailExists
		}
	}
	u.ID = s.nextID
	s.nextID++
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.User{}
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, id uint64, first, last string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FirstName, u.LastName = first, last
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id uint64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) UpdateAdmin(_ context.Context, in model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[in.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Email, u.Role, u.IsActive = in.Email, in.Role, in.IsActive
	u.CompanyID, u.FirstName, u.LastName = in.CompanyID, in.FirstName, in.LastName
	s.users[in.ID] = u
	return nil
}

func (s *fakeUserStore) SetRole(_ context.Context, id uint64, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) SetActive(_ context.Context, id uint64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) TouchLastLogin(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	u.LastLogin = &now
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type fakeCompanyStore struct {
	mu        sync.Mutex
	nextID    uint64
	companies map[uint64]model.Company
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{nextID: 1, companies: map[uint64]model.Company{}}
}

func (s *fakeCompanyStore) Create(_ context.Context, c *model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	c.CreatedAt = time.Now().UTC()
	if c.IsPrimary {
		s.demoteOthers(c.ID)
	}
	s.companies[c.ID] = *c
	return nil
}

func (s *fakeCompanyStore) Update(_ context.Context, c model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.ID]; !ok {
		return repository.ErrNotFound
	}
	if c.IsPrimary {
		s.demoteOthers(c.ID)
	}
	s.companies[c.ID] = c
	return nil
}

func (s *fakeCompanyStore) demoteOthers(keep uint64) {
	for id, other := range s.companies {
		if id != keep && other.IsPrimary {
			other.IsPrimary = false
			s.companies[id] = other
		}
	}
}

func (s *fakeCompanyStore) GetByID(_ context.Context, id uint64) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return model.Company{}, repository.ErrNotFound
	}
	return c, nil
}

func (s *fakeCompanyStore) GetPrimary(_ context.Context) (model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.IsPrimary {
			return c, nil
		}
	}
	return model.Company{}, repository.ErrNotFound
}

func (s *fakeCompanyStore) List(_ context.Context) ([]model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Company{}
	for _, c := range s.companies {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeCompanyStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.companies, id)
	return nil
}

type fakeClientStore struct {
	mu      sync.Mutex
	nextID  uint64
	clients map[uint64]model.Client
}

func newFakeClientStore() *fakeClientStore {
	return &fakeClientStore{nextID: 1, clients: map[uint64]model.Client{}}
}

func (s *fakeClientStore) Create(_ context.Context, c *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	c.CreatedAt = time.Now().UTC()
	s.clients[c.ID] = *c
	return nil
}

func (s *fakeClientStore) GetByID(_ context.Context, id uint64) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return model.Client{}, repository.ErrNotFound
	}
	return c, nil
}

func (s *fakeClientStore) List(_ context.Context) ([]model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Client{}
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeClientStore) Update(_ context.Context, c model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; !ok {
		return repository.ErrNotFound
	}
	s.clients[c.ID] = c
	return nil
}

func (s *fakeClientStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

type fakeProviderStore struct {
	mu        sync.Mutex
	nextID    uint64
	providers map[uint64]model.Provider
}

func newFakeProviderStore() *fakeProviderStore {
	return &fakeProviderStore{nextID: 1, providers: map[uint64]model.Provider{}}
}

func (s *fakeProviderStore) Create(_ context.Context, p *model.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	p.CreatedAt = time.Now().UTC()
	s.providers[p.ID] = *p
	return nil
}

func (s *fakeProviderStore) GetByID(_ context.Context, id uint64) (model.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[id]
	if !ok {
		return model.Provider{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *fakeProviderStore) List(_ context.Context) ([]model.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Provider{}
	for _, p := range s.providers {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeProviderStore) Update(_ context.Context, p model.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[p.ID]; !ok {
		return repository.ErrNotFound
	}
	s.providers[p.ID] = p
	return nil
}

func (s *fakeProviderStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.providers, id)
	return nil
}

type fakeWarehouseStore struct {
	mu         sync.Mutex
	nextID     uint64
	warehouses map[uint64]model.Warehouse
}

func newFakeWarehouseStore() *fakeWarehouseStore {
	return &fakeWarehouseStore{nextID: 1, warehouses: map[uint64]model.Warehouse{}}
}

func (s *fakeWarehouseStore) Create(_ context.Context, w *model.Warehouse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = s.nextID
	s.nextID++
	w.CreatedAt = time.Now().UTC()
	s.warehouses[w.ID] = *w
	return nil
}

func (s *fakeWarehouseStore) GetByID(_ context.Context, id uint64) (model.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.warehouses[id]
	if !ok {
		return model.Warehouse{}, repository.ErrNotFound
	}
	return w, nil
}

func (s *fakeWarehouseStore) List(_ context.Context) ([]model.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Warehouse{}
	for _, w := range s.warehouses {
		out = append(out, w)
	}
	return out, nil
}

func (s *fakeWarehouseStore) Update(_ context.Context, w model.Warehouse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.warehouses[w.ID]; !ok {
		return repository.ErrNotFound
	}
	s.warehouses[w.ID] = w
	return nil
}

func (s *fakeWarehouseStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.warehouses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.warehouses, id)
	return nil
}

type fakeArticleStore struct {
	mu       sync.Mutex
	nextID   uint64
	articles map[uint64]model.Article
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{nextID: 1, articles: map[uint64]model.Article{}}
}

func (s *fakeArticleStore) Create(_ context.Context, a *model.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID
	s.nextID++
	a.CreatedAt = time.Now().UTC()
	s.articles[a.ID] = *a
	return nil
}

func (s *fakeArticleStore) GetByID(_ context.Context, id uint64) (model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return model.Article{}, repository.ErrNotFound
	}
	return a, nil
}

func (s *fakeArticleStore) List(_ context.Context) ([]model.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Article{}
	for _, a := range s.articles {
		out = append(out, a)
	}
	return out, nil
}

func (s *fakeArticleStore) Update(_ context.Context, a model.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[a.ID]; !ok {
		return repository.ErrNotFound
	}
	s.articles[a.ID] = a
	return nil
}

func (s *fakeArticleStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.articles, id)
	return nil
}

// fakeBlacklist mirrors the Redis SET NX semantics in memory.
type fakeBlacklist struct {
	mu   sync.Mutex
	used map[string]bool
	down bool
}

func newFakeBlacklist() *fakeBlacklist { return &fakeBlacklist{used: map[string]bool{}} }

func (b *fakeBlacklist) Redeem(_ context.Context, jti string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.down {
		return repository.ErrBlacklistUnavailable
	}
	if b.used[jti] {
		return repository.ErrTokenReused
	}
	b.used[jti] = true
	return nil
}
