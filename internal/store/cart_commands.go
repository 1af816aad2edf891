package store

import (
	"time"

	"storefront/internal/domain"
)

// AddToCart adds one unit of a product. Size nil picks the product's first size.
type AddToCart struct {
	Owner     string
	ProductID int
	Size      *float64

	Line domain.CartLine
}

func (c *AddToCart) Name() string { return "cart/add" }

func (c *AddToCart) Apply(s *State, now time.Time) error {
	if c.Owner == "" {
		return ErrOwnerRequired
	}
	i := domain.FindProduct(s.Products, c.ProductID)
	if i < 0 {
		return domain.ErrProductNotFound
	}
	cart := s.Carts[c.Owner]
	line, err := cart.Add(s.Products[i], c.Size, now)
	if err != nil {
		return err
	}
	s.Carts[c.Owner] = cart
	c.Line = line
	return nil
}

// DecrementCartItem removes one unit of a line
type DecrementCartItem struct {
	Owner     string
	ProductID int
	Size      float64
}

func (c *DecrementCartItem) Name() string { return "cart/decrement" }

func (c *DecrementCartItem) Apply(s *State, _ time.Time) error {
	cart := s.Carts[c.Owner]
	if err := cart.Decrement(c.ProductID, c.Size); err != nil {
		return err
	}
	s.Carts[c.Owner] = cart
	return nil
}

// RemoveCartItem deletes a line whatever its quantity
type RemoveCartItem struct {
	Owner     string
	ProductID int
	Size      float64
}

func (c *RemoveCartItem) Name() string { return "cart/remove" }

func (c *RemoveCartItem) Apply(s *State, _ time.Time) error {
	cart := s.Carts[c.Owner]
	if err := cart.Remove(c.ProductID, c.Size); err != nil {
		return err
	}
	s.Carts[c.Owner] = cart
	return nil
}

type UpdateCartQuantity struct {
	Owner     string
	ProductID int
	Size      float64
	Quantity  int
}

func (c *UpdateCartQuantity) Name() string { return "cart/update-quantity" }

func (c *UpdateCartQuantity) Apply(s *State, _ time.Time) error {
	cart := s.Carts[c.Owner]
	if err := cart.SetQuantity(c.ProductID, c.Size, c.Quantity); err != nil {
		return err
	}
	s.Carts[c.Owner] = cart
	return nil
}

type ClearCart struct {
	Owner string
}

func (c *ClearCart) Name() string { return "cart/clear" }

func (c *ClearCart) Apply(s *State, _ time.Time) error {
	delete(s.Carts, c.Owner)
	return nil
}

// MergeCart moves the lines of one owner's cart into another's
type MergeCart struct {
	From string
	To   string
}

func (c *MergeCart) Name() string { return "cart/merge" }

func (c *MergeCart) Apply(s *State, _ time.Time) error {
	if c.To == "" {
		return ErrOwnerRequired
	}
	from, ok := s.Carts[c.From]
	if !ok || c.From == c.To {
		return nil
	}
	to := s.Carts[c.To]
	to.Merge(from)
	s.Carts[c.To] = to
	delete(s.Carts, c.From)
	return nil
}

// ToggleWishlist likes or unlikes a product
type ToggleWishlist struct {
	Owner     string
	ProductID int

	Liked bool
}

func (c *ToggleWishlist) Name() string { return "wishlist/toggle" }

func (c *ToggleWishlist) Apply(s *State, now time.Time) error {
	if c.Owner == "" {
		return ErrOwnerRequired
	}
	w := s.Wishlists[c.Owner]
	if w.Contains(c.ProductID) {
		// unliking works even after the product left the catalog
		w.Toggle(domain.Product{ID: c.ProductID}, now)
		c.Liked = false
	} else {
		i := domain.FindProduct(s.Products, c.ProductID)
		if i < 0 {
			return domain.ErrProductNotFound
		}
		c.Liked = w.Toggle(s.Products[i], now)
	}
	if len(w.Items) == 0 {
		delete(s.Wishlists, c.Owner)
		return nil
	}
	s.Wishlists[c.Owner] = w
	return nil
}
