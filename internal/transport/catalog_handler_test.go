package transport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productPage struct {
	Items []struct {
		ID int `json:"id"`
	} `json:"items"`
	Page       int `json:"page"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

func (p productPage) ids() []int {
	out := []int{}
	for _, item := range p.Items {
		out = append(out, item.ID)
	}
	return out
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		path      string
		wantIDs   []int
		wantTotal int
		wantPage  int
		wantPages int
	}{
		{"first page", "/api/products", []int{1, 2}, 3, 1, 2},
		{"second page", "/api/products?page=2", []int{3}, 3, 2, 2},
		{"category and price sort", "/api/products?category=Men&sort=price-low", []int{2, 1}, 2, 1, 1},
		{"brand", "/api/products?brand=Reebok", []int{3}, 1, 1, 1},
		{"search", "/api/products?search=ULTRA", []int{2}, 1, 1, 1},
		{"discounted price bounds", "/api/products?minPrice=1500&maxPrice=1550", []int{2}, 1, 1, 1},
		{"size in stock", "/api/products?sizes=43,37", []int{1}, 1, 1, 1},
		{"no match", "/api/products?category=Kids", []int{}, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, request{method: http.MethodGet, path: tt.path})
			require.Equal(t, http.StatusOK, w.Code)

			var page productPage
			decodeBody(t, w, &page)
			assert.Equal(t, tt.wantIDs, page.ids())
			assert.Equal(t, tt.wantTotal, page.TotalItems)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantPages, page.TotalPages)
		})
	}
}

func TestListProductsRejectsBadQuery(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/api/products?minPrice=cheap",
		"/api/products?sizes=42,big",
		"/api/products?page=two",
	} {
		w := env.do(t, request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodGet, path: "/api/products/1"})
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		ID            int       `json:"id"`
		LowStockSizes []float64 `json:"lowStockSizes"`
		ReviewCount   int       `json:"reviewCount"`
	}
	decodeBody(t, w, &detail)
	assert.Equal(t, 1, detail.ID)
	assert.Equal(t, []float64{43}, detail.LowStockSizes)
	assert.Zero(t, detail.ReviewCount)

	assert.Equal(t, http.StatusNotFound, env.do(t, request{method: http.MethodGet, path: "/api/products/99"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, request{method: http.MethodGet, path: "/api/products/abc"}).Code)
}

func TestAddReview(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/products/2/reviews",
		body: map[string]interface{}{"userName": "Ana", "rating": 5, "comment": "Light and fast"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, request{method: http.MethodPost, path: "/api/products/2/reviews",
		body: map[string]interface{}{"userName": "Ana", "rating": 9, "comment": "!"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_errors")

	w = env.do(t, request{method: http.MethodPost, path: "/api/products/42/reviews",
		body: map[string]interface{}{"userName": "Ana", "rating": 4, "comment": "?"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/products/2/reviews"})
	require.Equal(t, http.StatusOK, w.Code)
	var reviews []map[string]interface{}
	decodeBody(t, w, &reviews)
	assert.Len(t, reviews, 1)
}

func TestGetContent(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodGet, path: "/api/content"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Nike"`)
}
