package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"brilliora/cache"
	"brilliora/middleware"
	"brilliora/models"
	"brilliora/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type sentEmail struct {
	To, Subject, Body string
}

// recordingMailer captures sent emails on a channel
type recordingMailer struct {
	sent chan sentEmail
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan sentEmail, 8)}
}

func (m *recordingMailer) SendEmail(toEmail, subject, htmlContent string) error {
	m.sent <- sentEmail{To: toEmail, Subject: subject, Body: htmlContent}
	return nil
}

// mapCache is an in-process ProductCache
type mapCache struct {
	mu       sync.Mutex
	lists    map[models.ProductQuery][]models.Product
	products map[string]models.Product
}

func newMapCache() *mapCache {
	return &mapCache{lists: map[models.ProductQuery][]models.Product{}, products: map[string]models.Product{}}
}

func (c *mapCache) GetList(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.lists[q]; ok {
		return l, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *mapCache) SetList(ctx context.Context, q models.ProductQuery, products []models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[q] = products
	return nil
}

func (c *mapCache) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.products[id]; ok {
		return &p, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *mapCache) SetProduct(ctx context.Context, id string, product *models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[id] = *product
	return nil
}

func (c *mapCache) Invalidate(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
	c.lists = map[models.ProductQuery][]models.Product{}
	return nil
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID primitive.ObjectID, email string) *http.Request {
	claims := &utils.Claims{UserID: userID.Hex(), Email: email, Role: "user"}
	return req.WithContext(middleware.WithUser(req.Context(), claims))
}

func withVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	msg, _ := body["message"].(string)
	return msg
}
