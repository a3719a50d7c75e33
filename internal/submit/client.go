package submit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kollect-it/catalog/internal/config"
	productdomain "github.com/kollect-it/catalog/internal/product/domain"
	"github.com/kollect-it/catalog/internal/reference"
	"go.uber.org/zap"
)

const (
	createPath = "/api/admin/products/service-create"
	userAgent  = "KollectIt-Desktop/1.0"
)

// errorBody is the endpoint's error envelope: a human-readable error
// string plus, for validation failures, the individual messages.
type errorBody struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages"`
}

type createResponse struct {
	Product CreatedProduct `json:"product"`
	Message string         `json:"message"`
}

// ServiceStatus is the GET probe response from the endpoint.
type ServiceStatus struct {
	Status     string   `json:"status"`
	Service    string   `json:"service"`
	Categories []string `json:"categories"`
}

// Client submits normalized product payloads to the service-create
// endpoint. It validates locally before any network call, classifies
// responses into terminal and transient failures, and retries only the
// transient ones with exponential backoff.
type Client struct {
	http    *resty.Client
	cfg     config.APIConfig
	catalog reference.Catalog
	log     *zap.Logger

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg config.APIConfig, catalog reference.Catalog, log *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL()).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", cfg.ServiceKey).
		SetHeader("User-Agent", userAgent)

	return &Client{
		http:    httpClient,
		cfg:     cfg,
		catalog: catalog,
		log:     log.Named("submit.client"),
		sleep:   sleepContext,
	}
}

// Submit sends the payload and returns the created product identifiers.
//
// Terminal outcomes (validation, 400, 401, 409) return immediately;
// network errors, timeouts and unexpected statuses are retried up to
// the configured budget with doubling delays. After exhaustion the last
// observed error is returned, never a generic failure.
//
// Submit has no side effects beyond the network call: it never touches
// the SKU allocator, so a retried submission reuses the same payload
// and the same already-allocated SKU.
func (c *Client) Submit(ctx context.Context, payload productdomain.Payload) (*Result, error) {
	if c.cfg.ServiceKey == "" {
		return nil, ErrNotConfigured
	}
	if err := payload.Validate(c.catalog); err != nil {
		return nil, err
	}

	maxAttempts := c.cfg.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.backoff(attempt - 1)
			c.log.Warn("retrying submission",
				zap.String("sku", payload.SKU),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		result, err := c.post(ctx, payload, attempt)
		if err == nil {
			return result, nil
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (c *Client) post(ctx context.Context, payload productdomain.Payload, attempt int) (*Result, error) {
	var created createResponse
	var body errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&created).
		SetError(&body).
		Post(createPath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransientError{Cause: err}
	}

	switch resp.StatusCode() {
	case http.StatusCreated:
		c.log.Info("product created",
			zap.String("sku", created.Product.SKU),
			zap.String("slug", created.Product.Slug),
			zap.Int("attempts", attempt),
		)
		return &Result{Product: created.Product, Attempts: attempt}, nil
	case http.StatusBadRequest:
		messages := body.Messages
		if len(messages) == 0 && body.Error != "" {
			messages = []string{body.Error}
		}
		return nil, &ServerValidationError{Messages: messages}
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: invalid or missing API key", ErrUnauthorized)
	case http.StatusConflict:
		return nil, fmt.Errorf("%w: product with SKU %s already exists", ErrDuplicateSKU, payload.SKU)
	default:
		detail := body.Error
		if detail == "" {
			detail = resp.String()
		}
		return nil, &TransientError{Status: resp.StatusCode(), Detail: detail}
	}
}

// Status probes the endpoint with a GET, reporting reachability and the
// categories the server accepts.
func (c *Client) Status(ctx context.Context) (*ServiceStatus, error) {
	if c.cfg.ServiceKey == "" {
		return nil, ErrNotConfigured
	}

	var status ServiceStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&status).
		Get(createPath)
	if err != nil {
		return nil, &TransientError{Cause: err}
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return &status, nil
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: invalid or missing API key", ErrUnauthorized)
	default:
		return nil, &TransientError{Status: resp.StatusCode(), Detail: resp.String()}
	}
}

// backoff doubles per completed attempt: base, 2x, 4x, ...
func (c *Client) backoff(completed int) time.Duration {
	base := c.cfg.RetryBackoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return base << (completed - 1)
}

func isTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
