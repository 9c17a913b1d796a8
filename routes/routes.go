package routes

import (
	"log/slog"
	"net/http"

	"brilliora/controllers"
	"brilliora/middleware"
	"brilliora/utils"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter returns a router with request id, access log and metrics
// middleware installed.
func NewRouter(logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.AccessLog)
	router.Use(middleware.Instrument)
	router.NotFoundHandler = middleware.RequestID(logger)(http.HandlerFunc(notFound))
	return router
}

// RegisterRoutes sets up all the API routes under /api
func RegisterRoutes(router *mux.Router, tokens *utils.TokenManager, userController *controllers.UserController, productController *controllers.ProductController, orderController *controllers.OrderController, paymentController *controllers.PaymentController) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", health).Methods("GET")

	requireAuth := middleware.AuthMiddleware(tokens)

	// Auth routes
	api.HandleFunc("/auth/register", userController.Register).Methods("POST")
	api.HandleFunc("/auth/login", userController.Login).Methods("POST")
	account := api.PathPrefix("/auth").Subrouter()
	account.Use(requireAuth)
	account.HandleFunc("/me", userController.Me).Methods("GET")
	account.HandleFunc("/profile", userController.UpdateProfile).Methods("PUT")
	account.HandleFunc("/change-password", userController.ChangePassword).Methods("POST")

	// Product routes
	api.HandleFunc("/products", productController.GetProducts).Methods("GET")
	api.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")

	// Admin routes
	admin := api.PathPrefix("/products").Subrouter()
	admin.Use(requireAuth)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("", productController.CreateProduct).Methods("POST")
	admin.HandleFunc("/{id}", productController.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/{id}", productController.DeleteProduct).Methods("DELETE")

	// Order routes
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(requireAuth)
	orders.HandleFunc("", orderController.GetOrders).Methods("GET")
	orders.HandleFunc("", orderController.CreateOrder).Methods("POST")
	orders.HandleFunc("/{id}", orderController.GetOrder).Methods("GET")
	orders.HandleFunc("/{id}/status", orderController.UpdateOrderStatus).Methods("PUT")

	// Payment routes
	payments := api.PathPrefix("/payments").Subrouter()
	payments.Use(requireAuth)
	payments.HandleFunc("/create-order", paymentController.CreateOrder).Methods("POST")
	payments.HandleFunc("/verify", paymentController.Verify).Methods("POST")
}

// RegisterMetrics exposes the Prometheus registry at /metrics
func RegisterMetrics(router *mux.Router, gatherer prometheus.Gatherer) {
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"message":"Not found"}`))
}
