package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sumakasetty9/Inventory/internal/api/http/middleware"
	"github.com/sumakasetty9/Inventory/internal/health"
)

// NewRouter wires the POS JSON surface. readiness feeds the health
// endpoint: when it returns false the endpoint answers 503.
func NewRouter(handler *Handler, readiness func() bool, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	if logger != nil {
		router.Use(middleware.RequestLogger(logger))
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", handler.GetProducts)
			r.Get("/low-stock", handler.GetLowStock)
			r.Get("/{id}", withProductID(handler.GetProduct))
			r.Post("/", handler.PostProducts)
			r.Patch("/{id}", withProductID(handler.PatchProduct))
			r.Patch("/{id}/quantity", withProductID(handler.PatchProductQuantity))
			r.Delete("/{id}", withProductID(handler.DeleteProduct))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", handler.GetCart)
			r.Post("/items", handler.PostCartItems)
			r.Put("/items/{id}", withProductID(handler.PutCartItem))
			r.Delete("/items/{id}", withProductID(handler.DeleteCartItem))
		})

		r.Route("/sale", func(r chi.Router) {
			r.Post("/", handler.PostSale)
			r.Get("/invoices/{id}", withInvoiceID(handler.GetInvoice))
			r.Get("/invoices/{id}/pdf", withInvoiceID(handler.GetInvoicePDF))
			r.Delete("/invoices/{id}", withInvoiceID(handler.DeleteInvoice))
		})
	})

	router.Get("/health", health.Handler(readiness))

	return router
}

func withProductID(fn func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := productID(r)
		if !ok {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}
		fn(w, r, id)
	}
}

func withInvoiceID(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, chi.URLParam(r, "id"))
	}
}
