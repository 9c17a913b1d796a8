// Package seed loads the sample catalog and demo orders.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"brilliora/models"
	"brilliora/repository"
)

// Result reports what a seed run inserted
type Result struct {
	Products int
	Orders   int
}

// Products returns the sample jewelry catalog
func Products() []models.Product {
	return []models.Product{
		{Title: "The Yashashvi Om Ring", Description: "Elegant ring", Price: 700, OriginalPrice: 850, Category: "ring", Tags: []string{"ring"}, Rating: 4.6, Stock: 25},
		{Title: "The Elijah Gold Chain", Description: "Gold chain", Price: 900, OriginalPrice: 1250, Category: "chain", Tags: []string{"chain"}, Rating: 4.4, Stock: 40},
		{Title: "Anurita Hoop Earrings", Description: "Hoop earrings", Price: 1200, OriginalPrice: 1250, Category: "earrings", Tags: []string{"earrings"}, Rating: 4.7, Stock: 30},
		{Title: "Cursive A Necklace", Description: "Necklace", Price: 900, OriginalPrice: 1100, Category: "necklace", Tags: []string{"necklace"}, Rating: 4.5, Stock: 20},
		{Title: "Radiant Charms Bracelet", Description: "Bracelet", Price: 550, OriginalPrice: 1000, Category: "bracelets", Tags: []string{"bracelets"}, Rating: 4.2, Stock: 15},
		{Title: "Michael Kors Watch", Description: "Women watch", Price: 1200, OriginalPrice: 1450, Category: "watch", Tags: []string{"watch"}, Rating: 4.3, Stock: 12},
	}
}

var demoAddress = models.ShippingAddress{
	Line1:      "123 Main Street",
	City:       "Mumbai",
	State:      "Maharashtra",
	PostalCode: "400001",
	Country:    "India",
}

// DemoOrders returns one delivered, one shipped and one processing order
func DemoOrders(user models.User) []models.Order {
	order := func(item models.OrderItem, status models.OrderStatus) models.Order {
		total := item.Price * float64(item.Quantity)
		return models.Order{
			UserID:          user.ID,
			Items:           []models.OrderItem{item},
			Subtotal:        total,
			Total:           total,
			Status:          status,
			ShippingAddress: demoAddress,
		}
	}
	return []models.Order{
		order(models.OrderItem{Product: "1", Title: "Diamond Ring", Image: "/src/assets/img/ring/ring1.webp", Price: 1499, Quantity: 1}, models.StatusDelivered),
		order(models.OrderItem{Product: "2", Title: "Gold Necklace", Image: "/src/assets/img/nacklase/nack1.jpg", Price: 2499, Quantity: 1}, models.StatusShipped),
		order(models.OrderItem{Product: "3", Title: "Pearl Earrings", Image: "/src/assets/img/EarRing/er3.jpg", Price: 799, Quantity: 2}, models.StatusProcessing),
	}
}

// Seeder inserts sample data into empty stores
type Seeder struct {
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Users    repository.UserRepository
	Logger   *slog.Logger
}

// Run seeds the catalog when it is empty, then demo orders for the first
// user when that user has none. Existing data is never modified.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	count, err := s.Products.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count products: %w", err)
	}
	if count == 0 {
		products := Products()
		if err := s.Products.InsertMany(ctx, products); err != nil {
			return res, fmt.Errorf("insert products: %w", err)
		}
		res.Products = len(products)
		log.Info("seeded products", "count", res.Products)
	} else {
		log.Info("products already exist, skipping", "count", count)
	}

	user, err := s.Users.FindFirst(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("no users found, skipping demo orders")
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("find first user: %w", err)
	}

	existing, err := s.Orders.CountByUser(ctx, user.ID)
	if err != nil {
		return res, fmt.Errorf("count orders: %w", err)
	}
	if existing > 0 {
		log.Info("user already has orders, skipping", "email", user.Email, "count", existing)
		return res, nil
	}

	for _, order := range DemoOrders(*user) {
		if err := s.Orders.Create(ctx, &order); err != nil {
			return res, fmt.Errorf("insert demo order: %w", err)
		}
		res.Orders++
	}
	log.Info("seeded demo orders", "email", user.Email, "count", res.Orders)
	return res, nil
}
