package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"brilliora/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryOrderRepository implements OrderRepository in process memory. It backs
// the --in-memory development mode and unit tests.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{}
}

func (m *MemoryOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	m.orders = append(m.orders, cloneOrder(*order))
	return nil
}

func (m *MemoryOrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Order, 0)
	// newest first: later appends are newer
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID != userID {
			continue
		}
		result = append(result, cloneOrder(m.orders[i]))
		if limit > 0 && int64(len(result)) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MemoryOrderRepository) FindByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id, userID)
	if i < 0 {
		return nil, ErrNotFound
	}
	order := cloneOrder(m.orders[i])
	return &order, nil
}

func (m *MemoryOrderRepository) UpdateStatusForUser(ctx context.Context, id, userID primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id, userID)
	if i < 0 {
		return nil, ErrNotFound
	}
	m.orders[i].Status = status
	m.orders[i].UpdatedAt = time.Now().UTC()
	order := cloneOrder(m.orders[i])
	return &order, nil
}

func (m *MemoryOrderRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, o := range m.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored orders across all users
func (m *MemoryOrderRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

func (m *MemoryOrderRepository) indexOf(id, userID primitive.ObjectID) int {
	for i, o := range m.orders {
		if o.ID == id && o.UserID == userID {
			return i
		}
	}
	return -1
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	return o
}

// MemoryProductRepository implements ProductRepository in process memory
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products []models.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{}
}

func (m *MemoryProductRepository) List(ctx context.Context, q models.ProductQuery, limit int64) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Product, 0)
	for _, p := range m.products {
		if q.Category == "" || p.Category == q.Category {
			result = append(result, p)
		}
	}

	switch q.Sort {
	case models.SortPriceAsc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	case models.SortPriceDesc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	case models.SortPopular:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Rating > result[j].Rating })
	}

	if limit > 0 && int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stampProduct(product, time.Now().UTC())
	product.ID = primitive.NewObjectID()
	m.products = append(m.products, *product)
	return nil
}

func (m *MemoryProductRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.products {
		if m.products[i].ID != id {
			continue
		}
		p := &m.products[i]
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Images != nil {
			p.Images = patch.Images
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.OriginalPrice != nil {
			p.OriginalPrice = *patch.OriginalPrice
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Tags != nil {
			p.Tags = patch.Tags
		}
		if patch.Rating != nil {
			p.Rating = *patch.Rating
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		p.UpdatedAt = time.Now().UTC()
		product := *p
		return &product, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryProductRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.products)), nil
}

func (m *MemoryProductRepository) InsertMany(ctx context.Context, products []models.Product) error {
	for i := range products {
		if err := m.Create(ctx, &products[i]); err != nil {
			return err
		}
	}
	return nil
}

// MemoryUserRepository implements UserRepository in process memory
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{}
}

func (m *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := normalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == email {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users = append(m.users, *user)
	return nil
}

func (m *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	return m.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *MemoryUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.ID == id })
}

func (m *MemoryUserRepository) FindFirst(ctx context.Context) (*models.User, error) {
	return m.find(func(models.User) bool { return true })
}

func (m *MemoryUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == id {
			u := &m.users[i]
			u.Name = update.Name
			u.Phone = update.Phone
			u.Address = update.Address
			u.AvatarURL = update.AvatarURL
			u.UpdatedAt = time.Now().UTC()
			user := *u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].Password = passwordHash
			m.users[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}
