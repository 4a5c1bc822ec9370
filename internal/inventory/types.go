package inventory

import "github.com/shopspring/decimal"

// Product is the wire representation of a product as the inventory API
// returns it. Quantity is the server's last-known stock truth at the time
// of the response; callers must treat it as possibly stale.
type Product struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	IsDeleted   bool            `json:"is_deleted"`
}

// ProductUpdate is a partial update. Nil fields are left untouched by the
// server.
type ProductUpdate struct {
	ProductName *string          `json:"product_name,omitempty"`
	Quantity    *int64           `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// APIError is a non-2xx response from the inventory API. Error returns the
// server's detail message verbatim so callers can surface it unmodified.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}
