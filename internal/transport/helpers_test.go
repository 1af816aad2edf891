package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handler-test-secret"

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	router http.Handler
	store  *store.Store
	orders service.OrderService
	feed   *OrderFeed
}

func testState(t *testing.T) store.State {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	s := store.NewState()
	s.Products = []domain.Product{
		{ID: 1, Name: "Air Runner", Brand: "Nike", Category: domain.CategoryMen, Price: decimal.NewFromInt(1599),
			Images: []string{"/img/1.jpg"}, Sizes: []domain.SizeStock{{Size: 42, Stock: 8}, {Size: 43, Stock: 2}}},
		{ID: 2, Name: "Ultraboost", Brand: "Adidas", Category: domain.CategoryMen, Price: decimal.NewFromInt(1899), Discount: 20,
			Images: []string{"/img/2.jpg"}, Sizes: []domain.SizeStock{{Size: 41, Stock: 5}}},
		{ID: 3, Name: "Club C", Brand: "Reebok", Category: domain.CategoryWomen, Price: decimal.NewFromInt(749),
			Sizes: []domain.SizeStock{{Size: 37, Stock: 0}}},
	}
	s.Users = []domain.User{
		{Name: "Admin", Email: "admin@example.com", PasswordHash: string(hash), Role: domain.RoleAdmin, CreatedAt: testNow},
		{Name: "Ana", Email: "ana@example.com", PasswordHash: string(hash), Role: domain.RoleUser, CreatedAt: testNow},
	}
	s.Content = domain.Content{Brands: []domain.Brand{{Name: "Nike"}}}
	return s
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	st := store.New(testState(t), store.WithClock(func() time.Time { return testNow }))

	catalog := service.NewCatalogService(st, 2, 5, logger)
	carts := service.NewCartService(st, logger)
	wishlist := service.NewWishlistService(st)
	orders := service.NewOrderService(st, logger)
	users := service.NewUserService(st, testSecret, time.Hour, logger, service.WithHashCost(bcrypt.MinCost))
	content := service.NewContentService(st)
	reviews := service.NewReviewService(st, logger)
	backups := service.NewBackupService(st, repository.NewMemoryBackupImportRepository(), logger)

	auth := middleware.AuthMiddleware(testSecret, logger)
	optional := middleware.OptionalAuthMiddleware(testSecret, logger)
	limiter := middleware.LocalRateLimitMiddleware(middleware.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute}, logger)

	r := chi.NewRouter()
	NewCatalogHandler(catalog, reviews, content, logger).RegisterRoutes(r)
	NewCartHandler(carts, wishlist, logger).RegisterRoutes(r, optional)
	NewOrderHandler(orders, logger).RegisterRoutes(r, auth, optional)
	NewUserHandler(users, carts, logger).RegisterRoutes(r, auth, limiter)
	NewAdminHandler(catalog, orders, content, reviews, backups, logger).RegisterRoutes(r, auth, middleware.RequireAdmin(logger))

	feed := NewOrderFeed(orders, nil, logger)
	st.Subscribe(feed.Listener())
	feed.RegisterRoutes(r)

	return &testEnv{router: r, store: st, orders: orders, feed: feed}
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	session string
}

func (e *testEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	switch b := req.body.(type) {
	case nil:
	case string:
		body.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&body).Encode(b))
	}

	r := httptest.NewRequest(req.method, req.path, &body)
	r.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.session != "" {
		r.Header.Set(middleware.SessionHeader, req.session)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func (e *testEnv) login(t *testing.T, identifier string) string {
	t.Helper()
	w := e.do(t, request{method: http.MethodPost, path: "/api/users/login",
		body: LoginRequest{Identifier: identifier, Password: "secret1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	decodeBody(t, w, &resp)
	return resp.AccessToken
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func validCheckout() service.CheckoutForm {
	return service.CheckoutForm{
		FullName:      "Ana Pop",
		Email:         "ana@example.com",
		Phone:         "0712 345 678",
		Address:       "Main Street 1",
		City:          "Cluj",
		PostalCode:    "400001",
		PaymentMethod: domain.PaymentCOD,
	}
}

func (e *testEnv) placeGuestOrder(t *testing.T, session string) domain.Order {
	t.Helper()
	w := e.do(t, request{method: http.MethodPost, path: "/api/cart/items", session: session,
		body: AddToCartRequest{ProductID: 1}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, request{method: http.MethodPost, path: "/api/checkout", session: session, body: validCheckout()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order domain.Order
	decodeBody(t, w, &order)
	return order
}
