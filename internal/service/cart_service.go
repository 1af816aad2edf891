package service

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartView is a cart with its derived totals
type CartView struct {
	Items         []domain.CartLine `json:"items"`
	TotalQuantity int               `json:"totalQuantity"`
	TotalAmount   decimal.Decimal   `json:"totalAmount"`
}

func newCartView(c domain.Cart) *CartView {
	items := c.Clone().Lines
	if items == nil {
		items = []domain.CartLine{}
	}
	return &CartView{
		Items:         items,
		TotalQuantity: c.TotalQuantity(),
		TotalAmount:   c.TotalAmount(),
	}
}

// CartService defines the interface for shopping cart operations. Every call
// names the cart owner, either a signed-in user or a guest session.
type CartService interface {
	Get(ctx context.Context, owner string) *CartView
	Add(ctx context.Context, owner string, productID int, size *float64) (*CartView, error)
	Decrement(ctx context.Context, owner string, productID int, size float64) (*CartView, error)
	Remove(ctx context.Context, owner string, productID int, size float64) (*CartView, error)
	UpdateQuantity(ctx context.Context, owner string, productID int, size float64, quantity int) (*CartView, error)
	Clear(ctx context.Context, owner string) (*CartView, error)
	Merge(ctx context.Context, from, to string) (*CartView, error)
}

type cartService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(st *store.Store, logger *zap.Logger) CartService {
	return &cartService{store: st, logger: logger}
}

func (s *cartService) Get(ctx context.Context, owner string) *CartView {
	var view *CartView
	s.store.View(func(st store.State) {
		view = newCartView(st.Cart(owner))
	})
	return view
}

func (s *cartService) dispatch(ctx context.Context, owner string, cmd store.Command) (*CartView, error) {
	if owner == "" {
		return nil, store.ErrOwnerRequired
	}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return s.Get(ctx, owner), nil
}

// Add puts one unit into the cart; a nil size picks the product's first size
func (s *cartService) Add(ctx context.Context, owner string, productID int, size *float64) (*CartView, error) {
	return s.dispatch(ctx, owner, &store.AddToCart{Owner: owner, ProductID: productID, Size: size})
}

func (s *cartService) Decrement(ctx context.Context, owner string, productID int, size float64) (*CartView, error) {
	return s.dispatch(ctx, owner, &store.DecrementCartItem{Owner: owner, ProductID: productID, Size: size})
}

func (s *cartService) Remove(ctx context.Context, owner string, productID int, size float64) (*CartView, error) {
	return s.dispatch(ctx, owner, &store.RemoveCartItem{Owner: owner, ProductID: productID, Size: size})
}

func (s *cartService) UpdateQuantity(ctx context.Context, owner string, productID int, size float64, quantity int) (*CartView, error) {
	return s.dispatch(ctx, owner, &store.UpdateCartQuantity{Owner: owner, ProductID: productID, Size: size, Quantity: quantity})
}

func (s *cartService) Clear(ctx context.Context, owner string) (*CartView, error) {
	return s.dispatch(ctx, owner, &store.ClearCart{Owner: owner})
}

// Merge moves a guest cart into a user's cart after sign-in
func (s *cartService) Merge(ctx context.Context, from, to string) (*CartView, error) {
	if from == "" || from == to {
		return s.Get(ctx, to), nil
	}
	view, err := s.dispatch(ctx, to, &store.MergeCart{From: from, To: to})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Guest cart merged", zap.String("from", from), zap.String("to", to))
	return view, nil
}

// WishlistService defines the interface for liked products
type WishlistService interface {
	Get(ctx context.Context, owner string) []domain.WishlistItem
	Toggle(ctx context.Context, owner string, productID int) (liked bool, err error)
}

type wishlistService struct {
	store *store.Store
}

func NewWishlistService(st *store.Store) WishlistService {
	return &wishlistService{store: st}
}

func (s *wishlistService) Get(ctx context.Context, owner string) []domain.WishlistItem {
	items := []domain.WishlistItem{}
	s.store.View(func(st store.State) {
		items = append(items, st.Wishlist(owner).Items...)
	})
	return items
}

func (s *wishlistService) Toggle(ctx context.Context, owner string, productID int) (bool, error) {
	cmd := &store.ToggleWishlist{Owner: owner, ProductID: productID}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return false, fmt.Errorf("failed to toggle wishlist: %w", err)
	}
	return cmd.Liked, nil
}
