package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"brilliora/cache"
	"brilliora/metrics"
	"brilliora/middleware"
	"brilliora/models"
	"brilliora/repository"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductListLimit caps GET /products
const ProductListLimit = 100

// ProductController handles catalog requests. Reads go through Cache when
// one is configured.
type ProductController struct {
	Products repository.ProductRepository
	Cache    cache.ProductCache
	Timeout  time.Duration
}

// NewProductController creates a new ProductController. productCache may be nil.
func NewProductController(products repository.ProductRepository, productCache cache.ProductCache, timeout time.Duration) *ProductController {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ProductController{
		Products: products,
		Cache:    productCache,
		Timeout:  timeout,
	}
}

// GetProducts lists products filtered by category and sorted by price or rating
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := models.ProductQuery{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Sort:     parseSort(r.URL.Query().Get("sort")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	if pc.Cache != nil {
		products, err := pc.Cache.GetList(ctx, q)
		if err == nil {
			metrics.ProductCacheLookupsTotal.WithLabelValues("hit").Inc()
			respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
			return
		}
		pc.recordMiss(r, err)
	}

	products, err := pc.Products.List(ctx, q, ProductListLimit)
	if err != nil {
		middleware.LoggerFromContext(r.Context()).Error("list products failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}

	if pc.Cache != nil {
		if err := pc.Cache.SetList(ctx, q, products); err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("product list not cached", "error", err)
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// GetProductByID retrieves a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	rawID := mux.Vars(r)["id"]
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()

	if pc.Cache != nil {
		product, err := pc.Cache.GetProduct(ctx, id.Hex())
		if err == nil {
			metrics.ProductCacheLookupsTotal.WithLabelValues("hit").Inc()
			respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})
			return
		}
		pc.recordMiss(r, err)
	}

	product, err := pc.Products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		middleware.LoggerFromContext(r.Context()).Error("find product failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Error fetching product")
		return
	}

	if pc.Cache != nil {
		if err := pc.Cache.SetProduct(ctx, id.Hex(), product); err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("product not cached", "error", err)
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeJSON(r, &product); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if strings.TrimSpace(product.Title) == "" || product.Price <= 0 {
		respondError(w, http.StatusBadRequest, "Product title and a positive price are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()
	if err := pc.Products.Create(ctx, &product); err != nil {
		middleware.LoggerFromContext(r.Context()).Error("create product failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Error creating product")
		return
	}

	pc.invalidate(ctx, r, product.ID.Hex())
	respondJSON(w, http.StatusCreated, map[string]interface{}{"product": product})
}

// UpdateProduct applies a partial update (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}

	var patch models.ProductPatch
	if err := decodeJSON(r, &patch); err != nil || patch.Empty() {
		respondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		respondError(w, http.StatusBadRequest, "Product title cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()
	product, err := pc.Products.Update(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		middleware.LoggerFromContext(r.Context()).Error("update product failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Error updating product")
		return
	}

	pc.invalidate(ctx, r, id.Hex())
	respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

// DeleteProduct removes a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pc.Timeout)
	defer cancel()
	err = pc.Products.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		middleware.LoggerFromContext(r.Context()).Error("delete product failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Error deleting product")
		return
	}

	pc.invalidate(ctx, r, id.Hex())
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (pc *ProductController) recordMiss(r *http.Request, err error) {
	if errors.Is(err, cache.ErrCacheMiss) {
		metrics.ProductCacheLookupsTotal.WithLabelValues("miss").Inc()
		return
	}
	metrics.ProductCacheLookupsTotal.WithLabelValues("error").Inc()
	middleware.LoggerFromContext(r.Context()).Warn("product cache read failed", "error", err)
}

func (pc *ProductController) invalidate(ctx context.Context, r *http.Request, id string) {
	if pc.Cache == nil {
		return
	}
	if err := pc.Cache.Invalidate(ctx, id); err != nil {
		middleware.LoggerFromContext(r.Context()).Warn("product cache invalidation failed", "product_id", id, "error", err)
	}
}

// parseSort ignores unknown sort keys
func parseSort(raw string) models.ProductSort {
	switch s := models.ProductSort(raw); s {
	case models.SortPriceAsc, models.SortPriceDesc, models.SortPopular:
		return s
	default:
		return models.SortNone
	}
}
