package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

var errNoOwner = errors.New("sign in or send an " + middleware.SessionHeader + " header")

// requestOwner resolves who owns the cart and wishlist of a request: the
// signed-in user, else the guest session
func requestOwner(r *http.Request) (string, error) {
	if email, ok := middleware.GetUserEmail(r.Context()); ok {
		return store.UserOwner(email), nil
	}
	if session := strings.TrimSpace(r.Header.Get(middleware.SessionHeader)); session != "" {
		return store.GuestOwner(session), nil
	}
	return "", errNoOwner
}

func intParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

func sizeParam(r *http.Request) (float64, error) {
	return strconv.ParseFloat(chi.URLParam(r, "size"), 64)
}

// catalogQuery reads filter, sort and page from the query string
func catalogQuery(r *http.Request) (domain.CatalogQuery, error) {
	q := r.URL.Query()

	filter := domain.Filter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Search:   q.Get("search"),
	}

	for _, bound := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		raw := q.Get(bound.key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.CatalogQuery{}, errors.New(bound.key + " must be a number")
		}
		*bound.dst = &d
	}

	for _, raw := range q["sizes"] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			size, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return domain.CatalogQuery{}, errors.New("sizes must be numbers")
			}
			filter.Sizes = append(filter.Sizes, size)
		}
	}

	query := domain.CatalogQuery{}.WithFilter(filter).WithSort(domain.SortKey(q.Get("sort")))
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return domain.CatalogQuery{}, errors.New("page must be a number")
		}
		query = query.WithPage(page)
	}
	return query, nil
}
