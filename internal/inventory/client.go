package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client talks to the remote inventory API over HTTP.
// The request timeout doubles as the commit timeout during sale completion:
// a hung sell call fails the request instead of blocking the sale forever.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a Client for the API at baseURL (e.g. "http://localhost:8000/api").
// A timeout of 0 disables the request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type createProductRequest struct {
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type quantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// ListProducts returns all products. Soft-deleted products are excluded
// unless includeDeleted is set.
func (c *Client) ListProducts(ctx context.Context, includeDeleted bool) ([]Product, error) {
	path := "/inventory/"
	if includeDeleted {
		path += "?include_deleted=true"
	}
	var products []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListLowStock returns products with quantity at or below threshold.
// A nil threshold uses the server-side default.
func (c *Client) ListLowStock(ctx context.Context, threshold *int64) ([]Product, error) {
	path := "/inventory/low-stock"
	if threshold != nil {
		path += "?threshold=" + strconv.FormatInt(*threshold, 10)
	}
	var products []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns a single product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var product Product
	err := c.do(ctx, http.MethodGet, productPath(id), nil, &product)
	return product, err
}

// CreateProduct adds a new product to the inventory.
func (c *Client) CreateProduct(ctx context.Context, name string, quantity int64, price decimal.Decimal) (Product, error) {
	var product Product
	err := c.do(ctx, http.MethodPost, "/inventory/", createProductRequest{
		ProductName: name,
		Quantity:    quantity,
		Price:       price,
	}, &product)
	return product, err
}

// SetQuantity replaces a product's stock quantity.
func (c *Client) SetQuantity(ctx context.Context, id, quantity int64) (Product, error) {
	var product Product
	err := c.do(ctx, http.MethodPatch, productPath(id)+"/quantity", quantityRequest{Quantity: quantity}, &product)
	return product, err
}

// UpdateProduct applies a partial update to a product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, update ProductUpdate) (Product, error) {
	var product Product
	err := c.do(ctx, http.MethodPatch, productPath(id), update, &product)
	return product, err
}

// Sell decrements a product's stock by quantity. The server rejects the
// call with an insufficient-stock error instead of clamping when quantity
// exceeds the current stock.
func (c *Client) Sell(ctx context.Context, id, quantity int64) (Product, error) {
	var product Product
	err := c.do(ctx, http.MethodPatch, productPath(id)+"/sell", quantityRequest{Quantity: quantity}, &product)
	return product, err
}

// DeleteProduct soft-deletes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil)
}

func productPath(id int64) string {
	return "/inventory/" + strconv.FormatInt(id, 10)
}

// do issues one request and decodes the response into out (when out is
// non-nil and the response has a body). Non-2xx responses are returned as
// *APIError carrying the server's detail message verbatim.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		// Unwrap the *url.Error so the message that reaches the user is
		// the transport failure itself, not the request plumbing.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return urlErr.Err
		}
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail := struct {
			Detail string `json:"detail"`
		}{}
		if decodeErr := json.NewDecoder(res.Body).Decode(&detail); decodeErr != nil || detail.Detail == "" {
			detail.Detail = res.Status
		}
		c.logger.Warn("inventory api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", res.StatusCode),
			zap.String("detail", detail.Detail))
		return &APIError{StatusCode: res.StatusCode, Detail: detail.Detail}
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
