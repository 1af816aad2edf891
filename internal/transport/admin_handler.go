package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/report"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBackupBytes = 10 << 20

// UpdateStatusRequest moves an order to a new status
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

type FeatureReviewRequest struct {
	Featured bool `json:"featured"`
}

// AdminHandler handles the back office: catalog, orders, content, reviews and backups
type AdminHandler struct {
	catalogService service.CatalogService
	orderService   service.OrderService
	contentService service.ContentService
	reviewService  service.ReviewService
	backupService  service.BackupService
	logger         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	catalogService service.CatalogService,
	orderService service.OrderService,
	contentService service.ContentService,
	reviewService service.ReviewService,
	backupService service.BackupService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		orderService:   orderService,
		contentService: contentService,
		reviewService:  reviewService,
		backupService:  backupService,
		logger:         logger,
	}
}

// RegisterRoutes registers the admin routes behind authentication and the admin role
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware, requireAdmin)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.CreateProduct)
			r.Get("/low-stock", h.LowStock)
			r.Get("/export", h.ExportCatalog)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Get("/stats", h.OrderStats)
			r.Put("/{id}/status", h.UpdateOrderStatus)
		})

		r.Route("/content", func(r chi.Router) {
			r.Put("/hero-slides", h.UpdateHeroSlides)
			r.Put("/promo", h.UpdatePromoBanner)
			r.Put("/brands", h.UpdateBrands)
			r.Put("/spotlight", h.UpdateSpotlight)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.ListReviews)
			r.Put("/{id}/featured", h.SetReviewFeatured)
			r.Delete("/{id}", h.DeleteReview)
		})

		r.Route("/backup", func(r chi.Router) {
			r.Get("/", h.ExportBackup)
			r.Post("/", h.ImportBackup)
			r.Get("/history", h.BackupHistory)
		})
	})
}

// CreateProduct handles POST /api/admin/products. The id is assigned by the store.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := middleware.DecodeJSON(r, &product); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.catalogService.Create(r.Context(), product)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/admin/products/{id}. The path id wins over the body.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var product domain.Product
	if err := middleware.DecodeJSON(r, &product); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product.ID = id

	updated, err := h.catalogService.Update(r.Context(), product)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalogService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalogService.LowStock(r.Context()))
}

// ExportCatalog returns the whole catalog as an xlsx workbook
func (h *AdminHandler) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	backup := h.backupService.Export(r.Context())

	var buf bytes.Buffer
	if err := report.WriteCatalog(&buf, backup.Products, backup.Timestamp); err != nil {
		respondWithServiceError(w, h.logger, err, "export catalog")
		return
	}

	writeWorkbook(w, fmt.Sprintf("catalog-%s.xlsx", backup.Timestamp.Format("2006-01-02")), buf.Bytes())
}

// ListOrders handles GET /api/admin/orders with an optional status filter
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, domain.ErrInvalidStatus.Error())
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.orderService.ListAll(r.Context(), status))
}

func (h *AdminHandler) OrderStats(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.orderService.Stats(r.Context()))
}

// UpdateOrderStatus handles PUT /api/admin/orders/{id}/status
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update order status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) UpdateHeroSlides(w http.ResponseWriter, r *http.Request) {
	var slides []domain.HeroSlide
	if err := middleware.DecodeJSON(r, &slides); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondContent(w, r, "update hero slides", func() (domain.Content, error) {
		return h.contentService.UpdateHeroSlides(r.Context(), slides)
	})
}

func (h *AdminHandler) UpdatePromoBanner(w http.ResponseWriter, r *http.Request) {
	var promo domain.PromoBanner
	if err := middleware.DecodeJSON(r, &promo); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondContent(w, r, "update promo banner", func() (domain.Content, error) {
		return h.contentService.UpdatePromoBanner(r.Context(), promo)
	})
}

func (h *AdminHandler) UpdateBrands(w http.ResponseWriter, r *http.Request) {
	var brands []domain.Brand
	if err := middleware.DecodeJSON(r, &brands); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondContent(w, r, "update brands", func() (domain.Content, error) {
		return h.contentService.UpdateBrands(r.Context(), brands)
	})
}

func (h *AdminHandler) UpdateSpotlight(w http.ResponseWriter, r *http.Request) {
	var spotlight domain.Spotlight
	if err := middleware.DecodeJSON(r, &spotlight); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondContent(w, r, "update spotlight", func() (domain.Content, error) {
		return h.contentService.UpdateSpotlight(r.Context(), spotlight)
	})
}

func (h *AdminHandler) respondContent(w http.ResponseWriter, r *http.Request, action string, update func() (domain.Content, error)) {
	content, err := update()
	if err != nil {
		respondWithServiceError(w, h.logger, err, action)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, content)
}

func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reviewService.ListAll(r.Context()))
}

func (h *AdminHandler) SetReviewFeatured(w http.ResponseWriter, r *http.Request) {
	var req FeatureReviewRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.reviewService.SetFeatured(r.Context(), chi.URLParam(r, "id"), req.Featured); err != nil {
		respondWithServiceError(w, h.logger, err, "update review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.reviewService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportBackup downloads products, content, reviews and orders as one JSON document
func (h *AdminHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	backup := h.backupService.Export(r.Context())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="backup-%s.json"`, backup.Timestamp.Format("2006-01-02")))
	middleware.RespondWithJSON(w, http.StatusOK, backup)
}

// ImportBackup handles POST /api/admin/backup. The import replaces the catalog
// wholesale, so the caller has to confirm it with ?confirm=true.
func (h *AdminHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	if confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirmed {
		middleware.RespondWithError(w, http.StatusPreconditionRequired,
			"importing a backup replaces the current catalog; repeat the request with ?confirm=true")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "backup file is too large")
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email, _ := middleware.GetUserEmail(r.Context())
	entry, err := h.backupService.Import(r.Context(), raw, email)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "import backup")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, entry)
}

func (h *AdminHandler) BackupHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.RespondWithError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	history, err := h.backupService.History(r.Context(), limit)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list backup history")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, history)
}
