package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/report"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler handles checkout, tracking and receipts
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers the checkout and order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, optionalAuth func(http.Handler) http.Handler) {
	r.With(optionalAuth).Post("/api/checkout", h.Checkout)

	r.Route("/api/orders", func(r chi.Router) {
		r.With(authMiddleware).Get("/mine", h.ListMine)
		r.Get("/{id}", h.Track)
		r.Get("/{id}/receipt", h.Receipt)
	})
}

// Checkout handles POST /api/checkout. The cart of the requesting owner becomes the order.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	owner, err := requestOwner(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var form service.CheckoutForm
	if err := middleware.DecodeJSON(r, &form); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.Checkout(r.Context(), owner, form)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "place order")
		return
	}

	w.Header().Set("Location", "/api/orders/"+order.ID)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// Track handles GET /api/orders/{id}
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.Track(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "track order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListMine lists the orders of the signed-in user
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetUserEmail(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, h.orderService.ListForCustomer(r.Context(), email))
}

// Receipt handles GET /api/orders/{id}/receipt and returns an xlsx workbook
func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.Track(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get receipt")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteOrderReceipt(&buf, *order); err != nil {
		respondWithServiceError(w, h.logger, err, "render receipt")
		return
	}

	writeWorkbook(w, fmt.Sprintf("receipt-%s.xlsx", strings.ToLower(order.ID)), buf.Bytes())
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
