// Package seed holds the default catalog, accounts, reviews and home page
// content a fresh storefront boots with.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/store"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Users    []seedUser     `yaml:"users"`
	Products []seedProduct  `yaml:"products"`
	Reviews  []seedReview   `yaml:"reviews"`
	Content  domain.Content `yaml:"content"`
}

type seedUser struct {
	Name      string        `yaml:"name"`
	Email     string        `yaml:"email"`
	Password  string        `yaml:"password"`
	Role      domain.Role   `yaml:"role"`
	Addresses []seedAddress `yaml:"addresses"`
}

type seedAddress struct {
	ID         string `yaml:"id"`
	FullName   string `yaml:"fullName"`
	Phone      string `yaml:"phone"`
	Address1   string `yaml:"address1"`
	Address2   string `yaml:"address2"`
	City       string `yaml:"city"`
	PostalCode string `yaml:"postalCode"`
	IsDefault  bool   `yaml:"isDefault"`
}

type seedProduct struct {
	ID              int             `yaml:"id"`
	Name            string          `yaml:"name"`
	Brand           string          `yaml:"brand"`
	Category        domain.Category `yaml:"category"`
	Description     string          `yaml:"description"`
	Price           float64         `yaml:"price"`
	Discount        int             `yaml:"discount"`
	DiscountEndTime *time.Time      `yaml:"discountEndTime"`
	Images          []string        `yaml:"images"`
	Sizes           []struct {
		Size  float64 `yaml:"size"`
		Stock int     `yaml:"stock"`
	} `yaml:"sizes"`
}

type seedReview struct {
	ID         string    `yaml:"id"`
	ProductID  int       `yaml:"productId"`
	UserName   string    `yaml:"userName"`
	Rating     int       `yaml:"rating"`
	Comment    string    `yaml:"comment"`
	Date       time.Time `yaml:"date"`
	IsFeatured bool      `yaml:"isFeatured"`
}

// Default parses the embedded seed. Passwords are hashed with the given bcrypt cost.
func Default(hashCost int, now time.Time) (store.State, error) {
	return Parse(defaultSeed, hashCost, now)
}

// Parse builds a state from a seed document
func Parse(data []byte, hashCost int, now time.Time) (store.State, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return store.State{}, fmt.Errorf("failed to parse seed: %w", err)
	}

	s := store.NewState()
	s.Content = f.Content

	for _, u := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), hashCost)
		if err != nil {
			return store.State{}, fmt.Errorf("failed to hash seed password for %s: %w", u.Email, err)
		}
		user := domain.User{
			Name:         u.Name,
			Email:        u.Email,
			PasswordHash: string(hash),
			Role:         u.Role,
			CreatedAt:    now,
		}
		if user.Role == "" {
			user.Role = domain.RoleUser
		}
		for _, a := range u.Addresses {
			user.Addresses = append(user.Addresses, domain.Address(a))
		}
		s.Users = append(s.Users, user)
	}

	for _, p := range f.Products {
		product := domain.Product{
			ID:              p.ID,
			Name:            p.Name,
			Brand:           p.Brand,
			Category:        p.Category,
			Description:     p.Description,
			Price:           decimal.NewFromFloat(p.Price),
			Discount:        p.Discount,
			DiscountEndTime: p.DiscountEndTime,
			Images:          p.Images,
		}
		for _, sz := range p.Sizes {
			product.Sizes = append(product.Sizes, domain.SizeStock{Size: sz.Size, Stock: sz.Stock})
		}
		if err := product.Validate(); err != nil {
			return store.State{}, fmt.Errorf("invalid seed product %d: %w", p.ID, err)
		}
		if domain.FindProduct(s.Products, product.ID) >= 0 {
			return store.State{}, fmt.Errorf("duplicate seed product id %d", product.ID)
		}
		s.Products = append(s.Products, product)
	}

	for _, r := range f.Reviews {
		review := domain.Review(r)
		if err := review.Validate(); err != nil {
			return store.State{}, fmt.Errorf("invalid seed review %s: %w", r.ID, err)
		}
		s.Reviews = append(s.Reviews, review)
	}

	return s, nil
}
