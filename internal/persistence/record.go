package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/store"
)

// Record is the durable form of the whitelisted slices. Content is not part of
// it and always comes from the seed.
type Record struct {
	Version  int                        `json:"version"`
	SavedAt  time.Time                  `json:"savedAt"`
	Auth     []domain.User              `json:"auth"`
	Cart     map[string]domain.Cart     `json:"cart"`
	Reviews  []domain.Review            `json:"reviews"`
	Wishlist map[string]domain.Wishlist `json:"wishlist"`
	Orders   []domain.Order             `json:"orders"`
	Products []domain.Product           `json:"products"`

	// LastProductID travels with products so deleted ids stay retired
	LastProductID int `json:"lastProductId,omitempty"`
}

// NewRecord captures the whitelisted slices of s
func NewRecord(s store.State, version int, savedAt time.Time) Record {
	return Record{
		Version:  version,
		SavedAt:  savedAt.UTC(),
		Auth:     s.Users,
		Cart:     s.Carts,
		Reviews:  s.Reviews,
		Wishlist: s.Wishlists,
		Orders:   s.Orders,
		Products: s.Products,

		LastProductID: s.LastProductID,
	}
}

// Apply overlays the record on base. Slices missing from the record keep the
// base value.
func (r Record) Apply(base store.State) store.State {
	out := base.Clone()
	if r.Auth != nil {
		out.Users = r.Auth
	}
	if r.Cart != nil {
		out.Carts = r.Cart
	}
	if r.Reviews != nil {
		out.Reviews = r.Reviews
	}
	if r.Wishlist != nil {
		out.Wishlists = r.Wishlist
	}
	if r.Orders != nil {
		out.Orders = r.Orders
	}
	if r.Products != nil {
		out.Products = r.Products
	}
	if r.LastProductID > out.LastProductID {
		out.LastProductID = r.LastProductID
	}
	return out.Clone()
}

func Encode(r Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state record: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("failed to decode state record: %w", err)
	}
	return r, nil
}
