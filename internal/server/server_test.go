package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/kollect-it/catalog/internal/catalog/domain"
	catalogrepository "github.com/kollect-it/catalog/internal/catalog/repository"
	catalogservice "github.com/kollect-it/catalog/internal/catalog/service"
	"github.com/kollect-it/catalog/internal/clock"
	"github.com/kollect-it/catalog/internal/config"
	obsmetrics "github.com/kollect-it/catalog/internal/observability/metrics"
	productdomain "github.com/kollect-it/catalog/internal/product/domain"
	"github.com/kollect-it/catalog/internal/reference"
	skudomain "github.com/kollect-it/catalog/internal/sku/domain"
	skurepository "github.com/kollect-it/catalog/internal/sku/repository"
	skuservice "github.com/kollect-it/catalog/internal/sku/service"
	"github.com/kollect-it/catalog/pkg/db/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testServiceKey = "test-service-key"

func setupServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := db.AutoMigrate(&skudomain.Counter{}, &catalogdomain.Product{}, &catalogdomain.ProductImage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC))
	catalog := reference.Default()
	skuRepo := skurepository.Provide()

	skuSvc := skuservice.New(skuservice.Params{
		DB:      db,
		Log:     log,
		Clock:   clk,
		Catalog: catalog,
		Repo:    skuRepo,
	})
	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:      db,
		Log:     log,
		GenID:   node,
		Clock:   clk,
		Catalog: catalog,
		Repo:    catalogrepository.Provide(),
		SKURepo: skuRepo,
	})

	metrics := obsmetrics.New(prometheus.NewRegistry())
	engine := NewEngine(log, metrics)

	cfg := config.Config{HTTPAddr: ":0"}
	cfg.API.ServiceKey = testServiceKey

	return NewServer(ServerParams{
		Gin:        engine,
		Cfg:        cfg,
		DB:         db,
		Log:        log,
		Catalog:    catalog,
		Metrics:    metrics,
		SKUSvc:     skuSvc,
		CatalogSvc: catalogSvc,
	})
}

func doJSON(s *Server, method, path, key string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func validBody() productdomain.Payload {
	return productdomain.Draft{
		Title:       "WWII M1 Helmet",
		SKU:         "MILI-2025-0001",
		Category:    "militaria",
		Description: "Original WWII helmet",
		Price:       450,
		Condition:   "Very Good",
		Images:      []productdomain.ImageRef{{URL: "https://cdn.kollect-it.com/a.jpg"}},
	}.Normalize()
}

func TestHealth(t *testing.T) {
	s := setupServer(t)
	rec := doJSON(s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(s, http.MethodPost, "/api/admin/products/service-create", "", validBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/admin/products/service-create", "wrong-key", validBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid API key", resp.Error)
}

func TestServiceCreate(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(s, http.MethodPost, "/api/admin/products/service-create", testServiceKey, validBody())
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string `json:"message"`
		Product struct {
			ID    string `json:"id"`
			Slug  string `json:"slug"`
			SKU   string `json:"sku"`
			Title string `json:"title"`
		} `json:"product"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Product created successfully", resp.Message)
	assert.Equal(t, "MILI-2025-0001", resp.Product.SKU)
	assert.Equal(t, "wwii-m1-helmet-mili-2025-0001", resp.Product.Slug)
	assert.NotEmpty(t, resp.Product.ID)
}

func TestServiceCreateValidation(t *testing.T) {
	s := setupServer(t)

	body := validBody()
	body.Title = ""
	body.Price = -5

	rec := doJSON(s, http.MethodPost, "/api/admin/products/service-create", testServiceKey, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error    string   `json:"error"`
		Messages []string `json:"messages"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Messages, "Missing required field: title")
	assert.Contains(t, resp.Messages, "Price must be a positive number")
}

func TestServiceCreateDuplicate(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(s, http.MethodPost, "/api/admin/products/service-create", testServiceKey, validBody())
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/admin/products/service-create", testServiceKey, validBody())
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "MILI-2025-0001")
}

func TestServiceStatus(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(s, http.MethodGet, "/api/admin/products/service-create", testServiceKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status     string   `json:"status"`
		Service    string   `json:"service"`
		Categories []string `json:"categories"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"militaria", "collectibles", "books", "fineart"}, resp.Categories)
}

func TestListProducts(t *testing.T) {
	s := setupServer(t)

	for i := 1; i <= 2; i++ {
		body := validBody()
		body.SKU = fmt.Sprintf("MILI-2025-%04d", i)
		rec := doJSON(s, http.MethodPost, "/api/admin/products/service-create", testServiceKey, body)
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(s, http.MethodGet, "/api/admin/products", testServiceKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data catalogdomain.ListResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Products, 2)
}

func TestListProductsBadPageToken(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(s, http.MethodGet, "/api/admin/products?page_token=not-a-cursor", testServiceKey, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A decodable token with a non-numeric cursor id is just as bad.
	token, err := pagination.EncodeCursor(pagination.Cursor{ID: "abc"})
	assert.NoError(t, err)
	rec = doJSON(s, http.MethodGet, "/api/admin/products?page_token="+token, testServiceKey, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(s, http.MethodPost, "/api/admin/products/service-create", testServiceKey, validBody())
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Lookup is case-insensitive on the SKU.
	rec = doJSON(s, http.MethodGet, "/api/admin/products/mili-2025-0001", testServiceKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data catalogdomain.Response `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MILI-2025-0001", resp.Data.SKU)
	assert.Equal(t, "WWII M1 Helmet", resp.Data.Title)
	assert.Len(t, resp.Data.Images, 1)

	rec = doJSON(s, http.MethodGet, "/api/admin/products/MILI-2025-9999", testServiceKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAllocateSKURoute(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(s, http.MethodPost, "/api/admin/skus/allocate", testServiceKey, gin.H{"category": "books"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		SKU string `json:"sku"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BOOK-2025-0001", resp.SKU)

	rec = doJSON(s, http.MethodPost, "/api/admin/skus/allocate", testServiceKey, gin.H{"category": "furniture"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSKUStatsAndRebuild(t *testing.T) {
	s := setupServer(t)

	body := validBody()
	body.SKU = "MILI-2025-0042"
	rec := doJSON(s, http.MethodPost, "/api/admin/products/service-create", testServiceKey, body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(s, http.MethodPost, "/api/admin/skus/rebuild", testServiceKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var rebuild struct {
		Data catalogdomain.RebuildResult `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rebuild))
	assert.Equal(t, 42, rebuild.Data.Counters["MILI-2025"])

	rec = doJSON(s, http.MethodGet, "/api/admin/skus/stats", testServiceKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Data skudomain.Stats `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 42, stats.Data.GrandTotal)
}
