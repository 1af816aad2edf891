package transport

import (
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the login request payload. Identifier is an email or a display name.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse represents the login response. Cart is the user's cart after
// any guest cart sent along was merged into it.
type LoginResponse struct {
	AccessToken string            `json:"accessToken"`
	User        *service.Profile  `json:"user"`
	Cart        *service.CartView `json:"cart"`
}

// ProfileResponse is returned after a profile edit; the token is reissued
// because the email is one of its claims
type ProfileResponse struct {
	AccessToken string           `json:"accessToken"`
	User        *service.Profile `json:"user"`
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService service.UserService
	cartService service.CartService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, cartService service.CartService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes. rateLimit guards the credential endpoints.
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, rateLimit func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		// Public routes
		r.With(rateLimit).Post("/register", h.Register)
		r.With(rateLimit).Post("/login", h.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Put("/password", h.ChangePassword)
			r.Post("/addresses", h.AddAddress)
			r.Put("/addresses/{id}", h.UpdateAddress)
			r.Delete("/addresses/{id}", h.DeleteAddress)
			r.Post("/addresses/{id}/default", h.SetDefaultAddress)
		})
	})
}

// Register handles user registration
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	profile, err := h.userService.Register(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "register user")
		return
	}

	h.logger.Info("User registered successfully", zap.String("email", profile.Email))
	middleware.RespondWithJSON(w, http.StatusCreated, profile)
}

// Login handles user authentication. A guest cart named by the session header
// is merged into the user's cart.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	accessToken, profile, err := h.userService.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "login")
		return
	}

	owner := store.UserOwner(profile.Email)
	var cart *service.CartView
	if session := strings.TrimSpace(r.Header.Get(middleware.SessionHeader)); session != "" {
		cart, err = h.cartService.Merge(r.Context(), store.GuestOwner(session), owner)
		if err != nil {
			// the login itself succeeded; the guest cart simply stays where it was
			h.logger.Warn("Failed to merge guest cart", zap.String("email", profile.Email), zap.Error(err))
		}
	}
	if cart == nil {
		cart = h.cartService.Get(r.Context(), owner)
	}

	h.logger.Info("User logged in successfully", zap.String("email", profile.Email))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken: accessToken,
		User:        profile,
		Cart:        cart,
	})
}

// GetProfile returns the current user's profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetUserEmail(r.Context())

	profile, err := h.userService.GetProfile(r.Context(), email)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetUserEmail(r.Context())

	var req service.ProfileInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	accessToken, profile, err := h.userService.UpdateProfile(r.Context(), email, req)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProfileResponse{AccessToken: accessToken, User: profile})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetUserEmail(r.Context())

	var req service.PasswordInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), email, req); err != nil {
		respondWithServiceError(w, h.logger, err, "change password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetUserEmail(r.Context())

	var req service.AddressInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	profile, err := h.userService.AddAddress(r.Context(), email, req)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "add address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, profile)
}

func (h *UserHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetUserEmail(r.Context())

	var req service.AddressInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	profile, err := h.userService.UpdateAddress(r.Context(), email, chi.URLParam(r, "id"), req)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetUserEmail(r.Context())

	profile, err := h.userService.DeleteAddress(r.Context(), email, chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.GetUserEmail(r.Context())

	profile, err := h.userService.SetDefaultAddress(r.Context(), email, chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "set default address")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profile)
}
