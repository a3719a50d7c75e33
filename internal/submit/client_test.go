package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kollect-it/catalog/internal/config"
	productdomain "github.com/kollect-it/catalog/internal/product/domain"
	"github.com/kollect-it/catalog/internal/reference"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testAPIConfig(baseURL string) config.APIConfig {
	return config.APIConfig{
		LocalURL:      baseURL,
		UseProduction: false,
		ServiceKey:    "test-key",
		Timeout:       5 * time.Second,
		MaxRetries:    3,
		RetryBackoff:  500 * time.Millisecond,
	}
}

func testPayload() productdomain.Payload {
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

func newTestClient(t *testing.T, cfg config.APIConfig) (*Client, *[]time.Duration) {
	t.Helper()
	client := New(cfg, reference.Default(), zap.NewNop())
	delays := &[]time.Duration{}
	client.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return client, delays
}

// countingTransport counts round trips and can fail the first N of them
// with a network error.
type countingTransport struct {
	mu       sync.Mutex
	calls    int
	failures int
	base     http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.calls++
	n := c.calls
	c.mu.Unlock()
	if n <= c.failures {
		return nil, errors.New("dial tcp: connection refused")
	}
	return c.base.RoundTrip(req)
}

func (c *countingTransport) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func createdHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/admin/products/service-create", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "KollectIt-Desktop/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload productdomain.Payload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"message":"Product created successfully","product":{"id":"123","slug":"wwii-m1-helmet-mili-2025-0001","sku":%q,"title":%q}}`,
			payload.SKU, payload.Title)
	}
}

func TestSubmitSuccess(t *testing.T) {
	srv := httptest.NewServer(createdHandler(t))
	defer srv.Close()

	client, delays := newTestClient(t, testAPIConfig(srv.URL))
	result, err := client.Submit(context.Background(), testPayload())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "MILI-2025-0001", result.Product.SKU)
	assert.Equal(t, "wwii-m1-helmet-mili-2025-0001", result.Product.Slug)
	assert.Empty(t, *delays)
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	transport := &countingTransport{base: http.DefaultTransport}
	client, _ := newTestClient(t, testAPIConfig("http://localhost:0"))
	client.http.SetTransport(transport)

	payload := testPayload()
	payload.SKU = "not-a-sku"

	_, err := client.Submit(context.Background(), payload)

	var vErr *productdomain.ValidationErrors
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, transport.Calls(), "invalid payload must never reach the network")
}

func TestSubmitNotConfigured(t *testing.T) {
	cfg := testAPIConfig("http://localhost:0")
	cfg.ServiceKey = ""
	client, _ := newTestClient(t, cfg)

	_, err := client.Submit(context.Background(), testPayload())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSubmitConflictDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":"A product with SKU MILI-2025-0001 already exists"}`)
	}))
	defer srv.Close()

	client, delays := newTestClient(t, testAPIConfig(srv.URL))
	_, err := client.Submit(context.Background(), testPayload())

	assert.ErrorIs(t, err, ErrDuplicateSKU)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
}

func TestSubmitUnauthorizedDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"Invalid API key"}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, testAPIConfig(srv.URL))
	_, err := client.Submit(context.Background(), testPayload())

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, calls)
}

func TestSubmitServerValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"Validation failed","messages":["Unknown condition grade: Pristine"]}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, testAPIConfig(srv.URL))
	_, err := client.Submit(context.Background(), testPayload())

	var sErr *ServerValidationError
	if assert.ErrorAs(t, err, &sErr) {
		assert.Equal(t, []string{"Unknown condition grade: Pristine"}, sErr.Messages)
	}
}

func TestSubmitRetriesTransientThenSucceeds(t *testing.T) {
	srv := httptest.NewServer(createdHandler(t))
	defer srv.Close()

	transport := &countingTransport{failures: 3, base: http.DefaultTransport}
	client, delays := newTestClient(t, testAPIConfig(srv.URL))
	client.http.SetTransport(transport)

	result, err := client.Submit(context.Background(), testPayload())

	assert.NoError(t, err)
	assert.Equal(t, 4, result.Attempts)
	assert.Equal(t, 4, transport.Calls())
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		1 * time.Second,
		2 * time.Second,
	}, *delays)
}

func TestSubmitExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, delays := newTestClient(t, testAPIConfig(srv.URL))
	_, err := client.Submit(context.Background(), testPayload())

	var tErr *TransientError
	if assert.ErrorAs(t, err, &tErr) {
		assert.Equal(t, http.StatusInternalServerError, tErr.Status)
	}
	assert.Equal(t, 4, calls, "MaxRetries=3 means four total attempts")
	assert.Len(t, *delays, 3)
}

func TestSubmitContextCancelled(t *testing.T) {
	transport := &countingTransport{failures: 10, base: http.DefaultTransport}
	client, _ := newTestClient(t, testAPIConfig("http://localhost:0"))
	client.http.SetTransport(transport)

	ctx, cancel := context.WithCancel(context.Background())
	client.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := client.Submit(ctx, testPayload())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","service":"product-service-create","categories":["militaria","collectibles","books","fineart"]}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, testAPIConfig(srv.URL))
	status, err := client.Status(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.Len(t, status.Categories, 4)
}
