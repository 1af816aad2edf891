package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewRequest represents a review submitted from a product page
type ReviewRequest struct {
	UserName string `json:"userName" validate:"required,notblank,max=100"`
	service.ReviewInput
}

// CatalogHandler serves the public storefront: products, reviews and home page content
type CatalogHandler struct {
	catalogService service.CatalogService
	reviewService  service.ReviewService
	contentService service.ContentService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, reviewService service.ReviewService, contentService service.ContentService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		reviewService:  reviewService,
		contentService: contentService,
		logger:         logger,
	}
}

// RegisterRoutes registers the public catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/brands", h.ListBrands)
		r.Get("/{id}", h.GetProduct)
		r.Get("/{id}/reviews", h.ListReviews)
		r.Post("/{id}/reviews", h.AddReview)
	})
	r.Get("/api/reviews/featured", h.FeaturedReviews)
	r.Get("/api/content", h.GetContent)
}

// ListProducts handles GET /api/products with filter, sort and page query parameters
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query, err := catalogQuery(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.catalogService.List(r.Context(), query))
}

func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalogService.Brands(r.Context()))
}

// GetProduct returns one product with its reviews and stock warnings
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalogService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.reviewService.ListForProduct(r.Context(), id))
}

// AddReview handles POST /api/products/{id}/reviews
func (h *CatalogHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ReviewRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	review, err := h.reviewService.Add(r.Context(), id, req.UserName, req.ReviewInput)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "add review")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *CatalogHandler) FeaturedReviews(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reviewService.Featured(r.Context()))
}

func (h *CatalogHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.contentService.Get(r.Context()))
}
