package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
	"github.com/Sherryli112/HatGiveMe/internal/repository"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

// ---------------------------------------------------------------------------
// In-memory stub store
//
// One store backs stub implementations of every repository plus the unit of
// work. Transactions snapshot the store and restore it on error, and a
// transaction mutex serializes them, mirroring the all-or-nothing and
// serializable guarantees of the real database.
// ---------------------------------------------------------------------------

type stubStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users    map[string]*domain.User
	products map[string]*domain.Product
	orders   map[string]*domain.Order
	seq      int
}

func newStubStore() *stubStore {
	return &stubStore{
		users:    make(map[string]*domain.User),
		products: make(map[string]*domain.Product),
		orders:   make(map[string]*domain.Order),
	}
}

func (s *stubStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *stubStore) snapshot() (map[string]*domain.User, map[string]*domain.Product, map[string]*domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[string]*domain.User, len(s.users))
	for id, u := range s.users {
		clone := *u
		users[id] = &clone
	}
	products := make(map[string]*domain.Product, len(s.products))
	for id, p := range s.products {
		clone := *p
		products[id] = &clone
	}
	orders := make(map[string]*domain.Order, len(s.orders))
	for id, o := range s.orders {
		orders[id] = cloneOrder(o)
	}
	return users, products, orders
}

func (s *stubStore) restore(users map[string]*domain.User, products map[string]*domain.Product, orders map[string]*domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
	s.products = products
	s.orders = orders
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Items = append([]domain.OrderItem(nil), o.Items...)
	return &clone
}

// addUser seeds an account directly, bypassing repository validation.
func (s *stubStore) addUser(name, email string, role domain.Role, active bool) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &domain.User{
		ID:        s.nextID("user"),
		Name:      name,
		Email:     email,
		Role:      role,
		Active:    active,
		CreatedAt: time.Now(),
	}
	s.users[user.ID] = user
	return user
}

func (s *stubStore) addProduct(name, price string, stock int) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	product := &domain.Product{
		ID:        s.nextID("product"),
		Name:      name,
		Price:     mustDecimal(price),
		Stock:     stock,
		CreatedAt: time.Now(),
	}
	s.products[product.ID] = product
	return product
}

func (s *stubStore) productStock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.Stock
	}
	return -1
}

func (s *stubStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// ---------------------------------------------------------------------------
// Stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct{ store *stubStore }

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user.ID = r.store.nextID("user")
	user.CreatedAt = time.Now()
	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.User
	for _, user := range r.store.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && user.Active != *filter.Active {
			continue
		}
		result = append(result, *user)
	}
	return result, nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id string, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Active = active
	return nil
}

func (r *stubUserRepo) CountOtherActiveAdmins(_ context.Context, excludeID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, user := range r.store.users {
		if user.Role == domain.RoleAdmin && user.Active && user.ID != excludeID {
			count++
		}
	}
	return count, nil
}

type stubProductRepo struct{ store *stubStore }

func (r *stubProductRepo) Create(_ context.Context, product *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	product.ID = r.store.nextID("product")
	product.CreatedAt = time.Now()
	clone := *product
	r.store.products[product.ID] = &clone
	return nil
}

func (r *stubProductRepo) Update(_ context.Context, product *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.products[product.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	product.Stock = existing.Stock
	clone := *product
	r.store.products[product.ID] = &clone
	return nil
}

func (r *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	product, ok := r.store.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *product
	return &clone, nil
}

func (r *stubProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.Product
	for _, product := range r.store.products {
		if filter.InStockOnly && product.Stock <= 0 {
			continue
		}
		result = append(result, *product)
	}
	return result, nil
}

// DecrementStock applies the same conditional write the SQL implementation
// uses: the decrement happens only when enough stock remains.
func (r *stubProductRepo) DecrementStock(_ context.Context, id string, quantity int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	product, ok := r.store.products[id]
	if !ok {
		return false, nil
	}
	if product.Stock < quantity {
		return false, nil
	}
	product.Stock -= quantity
	return true, nil
}

type stubOrderRepo struct{ store *stubStore }

func (r *stubOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	order.ID = r.store.nextID("order")
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = r.store.nextID("item")
		order.Items[i].OrderID = order.ID
	}
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *stubOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	order, ok := r.store.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneOrder(order), nil
}

func (r *stubOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *stubOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []domain.Order
	for _, order := range r.store.orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		result = append(result, *cloneOrder(order))
	}
	return result, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	order, ok := r.store.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	order.Status = status
	return nil
}

// ---------------------------------------------------------------------------
// Stub unit of work
// ---------------------------------------------------------------------------

type stubUnitOfWork struct {
	store *stubStore

	// conflictsBeforeSuccess makes the first N serializable runs fail with
	// the retryable conflict error before touching the store.
	conflictsBeforeSuccess int
	conflictMu             sync.Mutex

	// products, when set, replaces the transactional product repository so
	// tests can interleave concurrent stock changes.
	products repository.ProductRepository
}

func (u *stubUnitOfWork) repos() repository.TxRepos {
	products := u.products
	if products == nil {
		products = &stubProductRepo{store: u.store}
	}
	return repository.TxRepos{
		Users:    &stubUserRepo{store: u.store},
		Products: products,
		Orders:   &stubOrderRepo{store: u.store},
	}
}

func (u *stubUnitOfWork) Run(ctx context.Context, fn func(ctx context.Context, r repository.TxRepos) error) error {
	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()

	users, products, orders := u.store.snapshot()
	if err := fn(ctx, u.repos()); err != nil {
		u.store.restore(users, products, orders)
		return err
	}
	return nil
}

func (u *stubUnitOfWork) RunSerializable(ctx context.Context, fn func(ctx context.Context, r repository.TxRepos) error) error {
	u.conflictMu.Lock()
	if u.conflictsBeforeSuccess > 0 {
		u.conflictsBeforeSuccess--
		u.conflictMu.Unlock()
		return apperrors.NewConflict("transaction conflict", nil)
	}
	u.conflictMu.Unlock()
	return u.Run(ctx, fn)
}
