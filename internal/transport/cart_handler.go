package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddToCartRequest adds one unit of a product. Without a size the product's
// first listed size is used, whatever its stock.
type AddToCartRequest struct {
	ProductID int      `json:"productId" validate:"required,gt=0"`
	Size      *float64 `json:"size" validate:"omitempty,gt=0"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// WishlistToggleResponse reports whether the product is liked after the toggle
type WishlistToggleResponse struct {
	ProductID int  `json:"productId"`
	Liked     bool `json:"liked"`
}

// CartHandler handles the cart and wishlist of the requesting owner
type CartHandler struct {
	cartService     service.CartService
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, wishlistService service.WishlistService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// RegisterRoutes registers cart and wishlist routes. optionalAuth lets signed-in
// users reach their own cart while guests use their session header.
func (h *CartHandler) RegisterRoutes(r chi.Router, optionalAuth func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}/{size}", h.UpdateQuantity)
		r.Post("/items/{productId}/{size}/decrement", h.DecrementItem)
		r.Delete("/items/{productId}/{size}", h.RemoveItem)
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", h.GetWishlist)
		r.Post("/{productId}/toggle", h.ToggleWishlist)
	})
}

// owner writes a 400 response and returns false when the request has no owner
func (h *CartHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, err := requestOwner(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return owner, true
}

// line reads the product id and size path parameters
func (h *CartHandler) line(w http.ResponseWriter, r *http.Request) (int, float64, bool) {
	productID, err := intParam(r, "productId")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return 0, 0, false
	}
	size, err := sizeParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid size")
		return 0, 0, false
	}
	return productID, size, true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, h.cartService.Get(r.Context(), owner))
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	cart, err := h.cartService.Add(r.Context(), owner, req.ProductID, req.Size)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "add to cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	productID, size, ok := h.line(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Decrement(r.Context(), owner, productID, size)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// UpdateQuantity handles PUT /api/cart/items/{productId}/{size}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	productID, size, ok := h.line(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	cart, err := h.cartService.UpdateQuantity(r.Context(), owner, productID, size, req.Quantity)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	productID, size, ok := h.line(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Remove(r.Context(), owner, productID, size)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Clear(r.Context(), owner)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "clear cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, h.wishlistService.Get(r.Context(), owner))
}

// ToggleWishlist handles POST /api/wishlist/{productId}/toggle
func (h *CartHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	productID, err := intParam(r, "productId")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	liked, err := h.wishlistService.Toggle(r.Context(), owner, productID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update wishlist")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, WishlistToggleResponse{ProductID: productID, Liked: liked})
}
