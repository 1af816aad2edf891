package store

import (
	"strings"

	"storefront/internal/domain"
)

// State is the whole storefront state tree. Every slice is owned by the store;
// cross-slice references are by value.
type State struct {
	Users     []domain.User
	Carts     map[string]domain.Cart
	Wishlists map[string]domain.Wishlist
	Orders    []domain.Order
	Products  []domain.Product
	Reviews   []domain.Review
	Content   domain.Content

	// LastProductID is the highest product id ever assigned
	LastProductID int
}

// NewState returns an empty, fully initialised state
func NewState() State {
	return State{
		Users:     []domain.User{},
		Carts:     map[string]domain.Cart{},
		Wishlists: map[string]domain.Wishlist{},
		Orders:    []domain.Order{},
		Products:  []domain.Product{},
		Reviews:   []domain.Review{},
	}
}

// Clone returns a deep copy of s
func (s State) Clone() State {
	out := NewState()
	for _, u := range s.Users {
		out.Users = append(out.Users, u.Clone())
	}
	for k, c := range s.Carts {
		out.Carts[k] = c.Clone()
	}
	for k, w := range s.Wishlists {
		out.Wishlists[k] = w.Clone()
	}
	for _, o := range s.Orders {
		out.Orders = append(out.Orders, o.Clone())
	}
	for _, p := range s.Products {
		out.Products = append(out.Products, p.Clone())
	}
	out.Reviews = append(out.Reviews, s.Reviews...)
	out.Content = s.Content.Clone()
	out.LastProductID = s.LastProductID
	return out
}

func (s State) Cart(owner string) domain.Cart {
	return s.Carts[owner]
}

func (s State) Wishlist(owner string) domain.Wishlist {
	return s.Wishlists[owner]
}

func (s State) Product(id int) (domain.Product, bool) {
	i := domain.FindProduct(s.Products, id)
	if i < 0 {
		return domain.Product{}, false
	}
	return s.Products[i], true
}

func (s State) Order(id string) (domain.Order, bool) {
	i := domain.FindOrder(s.Orders, id)
	if i < 0 {
		return domain.Order{}, false
	}
	return s.Orders[i], true
}

func (s State) User(email string) (domain.User, bool) {
	i := domain.FindUserByEmail(s.Users, email)
	if i < 0 {
		return domain.User{}, false
	}
	return s.Users[i], true
}

// OrdersOf lists the orders placed by owner, oldest first
func (s State) OrdersOf(owner string) []domain.Order {
	var out []domain.Order
	for _, o := range s.Orders {
		if o.Owner == owner {
			out = append(out, o)
		}
	}
	return out
}

// UserOwner is the cart, wishlist and order owner key of a signed-in user
func UserOwner(email string) string {
	return "user:" + domain.NormalizeEmail(email)
}

// GuestOwner is the owner key of an anonymous browser session
func GuestOwner(sessionID string) string {
	return "guest:" + strings.TrimSpace(sessionID)
}
