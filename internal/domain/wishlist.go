package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistItem is a product snapshot taken when it was liked
type WishlistItem struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

// Wishlist is a set of liked products
type Wishlist struct {
	Items []WishlistItem `json:"items"`
}

func (w Wishlist) Contains(productID int) bool {
	for _, it := range w.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Toggle adds p when absent and removes it when present. It reports whether p is now liked.
func (w *Wishlist) Toggle(p Product, now time.Time) bool {
	for i, it := range w.Items {
		if it.ProductID == p.ID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			return false
		}
	}
	w.Items = append(w.Items, WishlistItem{
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Price:     p.DiscountedPrice(now),
		Image:     p.PrimaryImage(),
		AddedAt:   now,
	})
	return true
}

func (w Wishlist) Clone() Wishlist {
	return Wishlist{Items: append([]WishlistItem(nil), w.Items...)}
}
