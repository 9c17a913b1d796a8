package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"brilliora/metrics"
	"brilliora/models"
	"brilliora/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCatalog(t *testing.T) *repository.MemoryProductRepository {
	t.Helper()
	repo := repository.NewMemoryProductRepository()
	require.NoError(t, repo.InsertMany(context.Background(), []models.Product{
		{Title: "The Yashashvi Om Ring", Price: 700, Category: "ring", Rating: 4.6},
		{Title: "The Elijah Gold Chain", Price: 900, Category: "chain", Rating: 4.4},
		{Title: "Silver Band", Price: 300, Category: "ring", Rating: 4.8},
	}))
	return repo
}

type productList struct {
	Products []models.Product `json:"products"`
}

func TestProductController_GetProducts(t *testing.T) {
	pc := NewProductController(newCatalog(t), nil, time.Second)

	rec := serve(pc.GetProducts, jsonRequest(t, http.MethodGet, "/api/products?category=ring&sort=price_asc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body productList
	decodeBody(t, rec, &body)
	require.Len(t, body.Products, 2)
	assert.Equal(t, "Silver Band", body.Products[0].Title)

	rec = serve(pc.GetProducts, jsonRequest(t, http.MethodGet, "/api/products?sort=bogus", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &body)
	assert.Len(t, body.Products, 3)
}

func TestProductController_ListThroughCache(t *testing.T) {
	repo := newCatalog(t)
	c := newMapCache()
	pc := NewProductController(repo, c, time.Second)
	hits := metrics.ProductCacheLookupsTotal.WithLabelValues("hit")
	before := testutil.ToFloat64(hits)

	rec := serve(pc.GetProducts, jsonRequest(t, http.MethodGet, "/api/products?sort=popular", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// a write to the store bypassing the controller is not visible until invalidation
	require.NoError(t, repo.Create(context.Background(), &models.Product{Title: "Hidden", Price: 1}))
	rec = serve(pc.GetProducts, jsonRequest(t, http.MethodGet, "/api/products?sort=popular", nil))
	var body productList
	decodeBody(t, rec, &body)
	assert.Len(t, body.Products, 3)
	assert.Equal(t, before+1, testutil.ToFloat64(hits))

	// admin writes invalidate cached listings
	rec = serve(pc.CreateProduct, jsonRequest(t, http.MethodPost, "/api/products", map[string]interface{}{"title": "New", "price": 10}))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = serve(pc.GetProducts, jsonRequest(t, http.MethodGet, "/api/products?sort=popular", nil))
	decodeBody(t, rec, &body)
	assert.Len(t, body.Products, 5)
}

func TestProductController_GetProductByID(t *testing.T) {
	repo := newCatalog(t)
	c := newMapCache()
	pc := NewProductController(repo, c, time.Second)
	list, err := repo.List(context.Background(), models.ProductQuery{}, 1)
	require.NoError(t, err)
	id := list[0].ID.Hex()

	rec := serve(pc.GetProductByID, withVars(jsonRequest(t, http.MethodGet, "/", nil), map[string]string{"id": id}))
	require.Equal(t, http.StatusOK, rec.Code)
	_, cached := c.products[id]
	assert.True(t, cached)

	rec = serve(pc.GetProductByID, withVars(jsonRequest(t, http.MethodGet, "/", nil), map[string]string{"id": primitive.NewObjectID().Hex()}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", messageOf(t, rec))

	rec = serve(pc.GetProductByID, withVars(jsonRequest(t, http.MethodGet, "/", nil), map[string]string{"id": "xyz"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductController_AdminWrites(t *testing.T) {
	repo := newCatalog(t)
	pc := NewProductController(repo, newMapCache(), time.Second)

	rec := serve(pc.CreateProduct, jsonRequest(t, http.MethodPost, "/", map[string]interface{}{"description": "no title"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(pc.CreateProduct, jsonRequest(t, http.MethodPost, "/", map[string]interface{}{
		"title": "Cursive A Necklace", "price": 900, "originalPrice": 1100, "category": "necklace",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Product models.Product `json:"product"`
	}
	decodeBody(t, rec, &created)
	require.False(t, created.Product.ID.IsZero())
	vars := map[string]string{"id": created.Product.ID.Hex()}

	rec = serve(pc.UpdateProduct, withVars(jsonRequest(t, http.MethodPut, "/", map[string]interface{}{"price": 850}), vars))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		Product models.Product `json:"product"`
	}
	decodeBody(t, rec, &updated)
	assert.Equal(t, 850.0, updated.Product.Price)
	assert.Equal(t, "Cursive A Necklace", updated.Product.Title)

	rec = serve(pc.UpdateProduct, withVars(jsonRequest(t, http.MethodPut, "/", map[string]interface{}{}), vars))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(pc.DeleteProduct, withVars(jsonRequest(t, http.MethodDelete, "/", nil), vars))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = serve(pc.DeleteProduct, withVars(jsonRequest(t, http.MethodDelete, "/", nil), vars))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
