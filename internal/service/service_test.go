package service

import (
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Air Runner", Brand: "Nike", Category: domain.CategoryMen, Price: decimal.NewFromInt(1599),
			Images: []string{"/img/1.jpg"}, Sizes: []domain.SizeStock{{Size: 42, Stock: 8}, {Size: 43, Stock: 2}}},
		{ID: 2, Name: "Ultraboost", Brand: "Adidas", Category: domain.CategoryMen, Price: decimal.NewFromInt(1899), Discount: 20,
			Images: []string{"/img/2.jpg"}, Sizes: []domain.SizeStock{{Size: 41, Stock: 5}}},
		{ID: 3, Name: "Club C", Brand: "Reebok", Category: domain.CategoryWomen, Price: decimal.NewFromInt(749),
			Sizes: []domain.SizeStock{{Size: 37, Stock: 0}}},
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.NewState()
	s.Products = testProducts()
	s.Reviews = []domain.Review{
		{ID: "r1", ProductID: 1, UserName: "Ana", Rating: 5, Comment: "great", Date: testNow},
		{ID: "r2", ProductID: 1, UserName: "Dan", Rating: 4, Comment: "good", Date: testNow, IsFeatured: true},
	}
	s.Content = domain.Content{Brands: []domain.Brand{{Name: "Nike"}}}
	return store.New(s, store.WithClock(func() time.Time { return testNow }))
}

func newTestUserService(st *store.Store) UserService {
	return NewUserService(st, "test-secret", time.Hour, zap.NewNop(), WithHashCost(bcrypt.MinCost))
}

func validForm() CheckoutForm {
	return CheckoutForm{
		FullName:      "Ana Pop",
		Email:         "Ana@Example.com",
		Phone:         "0712 345 678",
		Address:       "Main Street 1",
		City:          "Cluj",
		PostalCode:    "400001",
		PaymentMethod: domain.PaymentCard,
		CardNumber:    "4111 1111 1111 1111",
		CardExpiry:    "12/29",
		CardCVV:       "123",
	}
}
