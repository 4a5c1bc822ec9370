package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sumakasetty9/Inventory/internal/cart"
	"github.com/sumakasetty9/Inventory/internal/inventory"
	"github.com/sumakasetty9/Inventory/internal/invoice"
	"github.com/sumakasetty9/Inventory/internal/sale"
	"github.com/sumakasetty9/Inventory/internal/service"
)

// Handler exposes the POS operations as the JSON surface the browser front
// end drives. It depends on the service layer only.
type Handler struct {
	pos             *service.POS
	logger          *zap.Logger
	lowStockDefault int64
}

// NewHandler creates a Handler. lowStockDefault is the threshold used for
// the low-stock listing when the request does not carry one.
func NewHandler(pos *service.POS, lowStockDefault int64, logger *zap.Logger) *Handler {
	return &Handler{
		pos:             pos,
		logger:          logger,
		lowStockDefault: lowStockDefault,
	}
}

// CreateProductRequest is the POST /api/products payload.
type CreateProductRequest struct {
	ProductName *string          `json:"product_name"`
	Quantity    *int64           `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
}

// QuantityRequest carries a single quantity, used by the stock and cart
// quantity endpoints.
type QuantityRequest struct {
	Quantity *int64 `json:"quantity"`
}

// AddToCartRequest is the POST /api/cart/items payload.
type AddToCartRequest struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int64 `json:"quantity"`
}

// CartResponse is the cart view plus an optional truncation notice from the
// mutation that produced it.
type CartResponse struct {
	Items  []cart.Line      `json:"items"`
	Total  decimal.Decimal  `json:"total"`
	Notice *cart.Truncation `json:"notice,omitempty"`
}

// GetProducts handles GET /api/products. Without include_deleted it
// refreshes and returns the product snapshot; with include_deleted=true it
// lists straight from the API, soft-deleted products included.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []inventory.Product
		err      error
	)
	if r.URL.Query().Get("include_deleted") == "true" {
		products, err = h.pos.ProductsIncludingDeleted(r.Context())
	} else {
		products, err = h.pos.RefreshProducts(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

// GetLowStock handles GET /api/products/low-stock.
func (h *Handler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.lowStockDefault
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.writeDetail(w, http.StatusBadRequest, "threshold must be an integer")
			return
		}
		threshold = n
	}
	products, err := h.pos.LowStock(r.Context(), &threshold)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request, id int64) {
	product, err := h.pos.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

// PostProducts handles POST /api/products.
func (h *Handler) PostProducts(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ProductName == nil || req.Quantity == nil {
		h.writeDetail(w, http.StatusBadRequest, "product_name and quantity are required")
		return
	}
	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	}
	product, err := h.pos.CreateProduct(r.Context(), *req.ProductName, *req.Quantity, price)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, product)
}

// PatchProduct handles PATCH /api/products/{id} with a partial update.
func (h *Handler) PatchProduct(w http.ResponseWriter, r *http.Request, id int64) {
	var update inventory.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	product, err := h.pos.UpdateProduct(r.Context(), id, update)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

// PatchProductQuantity handles PATCH /api/products/{id}/quantity.
func (h *Handler) PatchProductQuantity(w http.ResponseWriter, r *http.Request, id int64) {
	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Quantity == nil {
		h.writeDetail(w, http.StatusBadRequest, "quantity is required")
		return
	}
	product, err := h.pos.SetProductQuantity(r.Context(), id, *req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.pos.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCart handles GET /api/cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	view := h.pos.Cart()
	h.writeJSON(w, http.StatusOK, CartResponse{Items: view.Items, Total: view.Total})
}

// PostCartItems handles POST /api/cart/items: add a product to the cart.
// A truncated add still succeeds and carries the notice in the response.
func (h *Handler) PostCartItems(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.ProductID == nil || req.Quantity == nil {
		h.writeDetail(w, http.StatusBadRequest, "product_id and quantity are required")
		return
	}
	notice, err := h.pos.AddToCart(*req.ProductID, *req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view := h.pos.Cart()
	h.writeJSON(w, http.StatusOK, CartResponse{Items: view.Items, Total: view.Total, Notice: notice})
}

// PutCartItem handles PUT /api/cart/items/{id}: set a cart line's quantity.
func (h *Handler) PutCartItem(w http.ResponseWriter, r *http.Request, id int64) {
	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Quantity == nil {
		h.writeDetail(w, http.StatusBadRequest, "quantity is required")
		return
	}
	notice := h.pos.SetCartQuantity(id, *req.Quantity)
	view := h.pos.Cart()
	h.writeJSON(w, http.StatusOK, CartResponse{Items: view.Items, Total: view.Total, Notice: notice})
}

// DeleteCartItem handles DELETE /api/cart/items/{id}. Removing an absent
// line is a silent no-op.
func (h *Handler) DeleteCartItem(w http.ResponseWriter, r *http.Request, id int64) {
	h.pos.RemoveFromCart(id)
	view := h.pos.Cart()
	h.writeJSON(w, http.StatusOK, CartResponse{Items: view.Items, Total: view.Total})
}

// PostSale handles POST /api/sale: complete the sale and return the
// invoice. An empty cart returns 409; a commit failure surfaces the
// upstream error with the cart untouched.
func (h *Handler) PostSale(w http.ResponseWriter, r *http.Request) {
	inv, err := h.pos.CompleteSale(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if inv == nil {
		h.writeDetail(w, http.StatusConflict, "cart is empty")
		return
	}
	h.writeJSON(w, http.StatusCreated, inv)
}

// GetInvoice handles GET /api/sale/invoices/{id}.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request, id string) {
	inv, err := h.pos.Invoice(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, inv)
}

// GetInvoicePDF handles GET /api/sale/invoices/{id}/pdf: the invoice as a
// downloadable document. Downloading does not discard the invoice; only
// closing it does.
func (h *Handler) GetInvoicePDF(w http.ResponseWriter, r *http.Request, id string) {
	inv, err := h.pos.Invoice(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+inv.ID+`.pdf"`)
	if err := invoice.RenderPDF(inv, w); err != nil {
		h.logger.Error("invoice pdf render failed", zap.String("invoice_id", inv.ID), zap.Error(err))
	}
}

// DeleteInvoice handles DELETE /api/sale/invoices/{id}: close the invoice
// view. Committed state is unaffected.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.pos.CloseInvoice(id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps service-level errors onto HTTP statuses. The error
// message always reaches the client unmodified.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *service.ValidationError
		capacityErr   *cart.CapacityError
		apiErr        *inventory.APIError
	)
	switch {
	case errors.As(err, &validationErr):
		h.writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrInvoiceNotFound):
		h.writeDetail(w, http.StatusNotFound, err.Error())
	case errors.As(err, &capacityErr), errors.Is(err, sale.ErrSaleInProgress):
		h.writeDetail(w, http.StatusConflict, err.Error())
	case errors.As(err, &apiErr):
		// Domain errors from the inventory API keep their status and
		// detail, so the front end sees what the API said.
		h.writeDetail(w, apiErr.StatusCode, apiErr.Detail)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		h.writeDetail(w, http.StatusGatewayTimeout, err.Error())
	default:
		h.writeDetail(w, http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) writeDetail(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, map[string]string{"detail": detail})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response failed", zap.Error(err))
	}
}

// productID parses the {id} URL parameter.
func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}
