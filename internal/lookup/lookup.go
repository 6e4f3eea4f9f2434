// Package lookup resolves barcodes to product names through the Open Food
// Facts product API.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL = "https://world.openfoodfacts.org/api/v2/product"
	DefaultTimeout = 10 * time.Second

	cacheTTL  = 24 * time.Hour
	fields    = "product_name,product_name_en"
	userAgent = "grocerycalc/1.0 (+https://github.com/dukerupert/grocerycalc)"
)

var (
	// ErrProductNotFound means the database answered but has no usable name.
	// The user should enter the item manually.
	ErrProductNotFound = errors.New("product not found")

	// ErrLookupFailed means the database could not be reached or answered
	// with something unreadable. The user may retry the scan.
	ErrLookupFailed = errors.New("product lookup failed")
)

// Config holds lookup client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type cacheEntry struct {
	name      string
	fetchedAt time.Time
}

// Client looks up product names. Each call makes at most one request;
// concurrent calls for the same barcode share it.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	group   singleflight.Group

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		cache:   make(map[string]cacheEntry),
	}
}

type apiResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName   string `json:"product_name"`
		ProductNameEn string `json:"product_name_en"`
	} `json:"product"`
}

// LookupBarcode returns the product name for barcode. Errors wrap
// ErrProductNotFound or ErrLookupFailed.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (string, error) {
	barcode = strings.TrimSpace(barcode)
	if !validBarcode(barcode) {
		return "", fmt.Errorf("barcode %q: %w", barcode, ErrProductNotFound)
	}

	if name, ok := c.cached(barcode); ok {
		return name, nil
	}

	// The shared request outlives any one caller; the client timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(barcode, func() (any, error) {
		if name, ok := c.cached(barcode); ok {
			return name, nil
		}
		name, err := c.fetch(shared, barcode)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.cache[barcode] = cacheEntry{name: name, fetchedAt: time.Now()}
		c.mu.Unlock()
		return name, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrLookupFailed, ctx.Err())
	}
}

func (c *Client) cached(barcode string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.cache[barcode]
	c.mu.RUnlock()
	if !ok || time.Since(entry.fetchedAt) >= cacheTTL {
		return "", false
	}
	return entry.name, true
}

func (c *Client) fetch(ctx context.Context, barcode string) (string, error) {
	u := fmt.Sprintf("%s/%s.json?fields=%s", c.baseURL, url.PathEscape(barcode), url.QueryEscape(fields))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w: %w", ErrLookupFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("lookup request failed", "barcode", barcode, "error", err)
		return "", fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("barcode %s: %w", barcode, ErrProductNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("lookup returned error status", "barcode", barcode, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrLookupFailed, err)
	}

	if apiResp.Status != 1 {
		return "", fmt.Errorf("barcode %s: %w", barcode, ErrProductNotFound)
	}
	name := strings.TrimSpace(apiResp.Product.ProductName)
	if name == "" {
		name = strings.TrimSpace(apiResp.Product.ProductNameEn)
	}
	if name == "" {
		return "", fmt.Errorf("barcode %s has no name: %w", barcode, ErrProductNotFound)
	}
	return name, nil
}

func validBarcode(s string) bool {
	if s == "" || len(s) > 32 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
