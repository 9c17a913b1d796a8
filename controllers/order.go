package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"brilliora/models"
	"brilliora/repository"
	"brilliora/services"
	"brilliora/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderListLimit caps GET /orders
const OrderListLimit = 20

// OrderController serves the caller's orders. Every lookup is scoped to the
// authenticated user, so other users' orders read as not found.
type OrderController struct {
	Orders  repository.OrderRepository
	Mailer  utils.Mailer
	Timeout time.Duration
}

// NewOrderController creates a new OrderController
func NewOrderController(orders repository.OrderRepository, mailer utils.Mailer, timeout time.Duration) *OrderController {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OrderController{
		Orders:  orders,
		Mailer:  mailer,
		Timeout: timeout,
	}
}

type createOrderBody struct {
	Items           []models.OrderItem      `json:"items"`
	Subtotal        *float64                `json:"subtotal"`
	Total           *float64                `json:"total"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
}

type updateStatusBody struct {
	Status models.OrderStatus `json:"status"`
}

var errOrderNotFound = services.NewError(services.ErrNotFound, "Order not found", nil)

// GetOrders lists the caller's most recent orders, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(r)
	if !ok {
		respondUnauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oc.Timeout)
	defer cancel()
	orders, err := oc.Orders.ListByUser(ctx, userID, OrderListLimit)
	if err != nil {
		respondServiceError(w, r, storeError(err, "Failed to fetch orders"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// GetOrder fetches one of the caller's orders
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(r)
	if !ok {
		respondUnauthorized(w)
		return
	}
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, errOrderNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oc.Timeout)
	defer cancel()
	order, err := oc.Orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		respondServiceError(w, r, storeError(err, "Failed to fetch order"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// CreateOrder records an order without a payment step
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, userID, ok := currentUser(r)
	if !ok {
		respondUnauthorized(w)
		return
	}

	var body createOrderBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body.Items) == 0 {
		respondError(w, http.StatusBadRequest, "Order must contain at least one item")
		return
	}
	if body.Total == nil {
		respondError(w, http.StatusBadRequest, "Order total is required")
		return
	}
	if body.ShippingAddress == nil {
		respondError(w, http.StatusBadRequest, "Shipping address is required")
		return
	}
	items, err := normalizeItems(body.Items)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	order := &models.Order{
		UserID:          userID,
		Items:           items,
		Subtotal:        *body.Total,
		Total:           *body.Total,
		Status:          models.StatusProcessing,
		ShippingAddress: *body.ShippingAddress,
	}
	if body.Subtotal != nil {
		order.Subtotal = *body.Subtotal
	}

	ctx, cancel := context.WithTimeout(r.Context(), oc.Timeout)
	defer cancel()
	if err := oc.Orders.Create(ctx, order); err != nil {
		respondServiceError(w, r, storeError(err, "Failed to create order"))
		return
	}

	notifyOrderPlaced(r, oc.Mailer, claims.Email, *order)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"order":   order,
	})
}

// UpdateOrderStatus sets any valid status on one of the caller's orders
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUser(r)
	if !ok {
		respondUnauthorized(w)
		return
	}

	var body updateStatusBody
	if err := decodeJSON(r, &body); err != nil || !body.Status.Valid() {
		respondError(w, http.StatusBadRequest, "Status must be one of processing, shipped, delivered or cancelled")
		return
	}
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, r, errOrderNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oc.Timeout)
	defer cancel()
	order, err := oc.Orders.UpdateStatusForUser(ctx, orderID, userID, body.Status)
	if err != nil {
		respondServiceError(w, r, storeError(err, "Failed to update order"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// normalizeItems defaults a zero quantity to one and rejects line items
// without a product reference or with a negative quantity.
func normalizeItems(items []models.OrderItem) ([]models.OrderItem, error) {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Product) == "" {
			return nil, services.NewError(services.ErrInvalidRequest, "Each item needs a product reference", nil)
		}
		if item.Quantity < 0 {
			return nil, services.NewError(services.ErrInvalidRequest, "Item quantity must be at least 1", nil)
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		out = append(out, item)
	}
	return out, nil
}

// storeError classifies a repository failure
func storeError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errOrderNotFound
	case repository.IsTimeout(err):
		return services.NewError(services.ErrPersistenceTimeout, message, err)
	default:
		return services.NewError(services.ErrPersistence, message, err)
	}
}
