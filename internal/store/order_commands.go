package store

import (
	"time"

	"storefront/internal/domain"
)

// PlaceOrder turns the owner's cart into an order, takes the ordered
// quantities out of stock and empties the cart, as one commit.
type PlaceOrder struct {
	Owner         string
	OrderID       string
	Customer      domain.ShippingInfo
	PaymentMethod domain.PaymentMethod

	Order domain.Order
}

func (c *PlaceOrder) Name() string { return "orders/place" }

func (c *PlaceOrder) Apply(s *State, now time.Time) error {
	if c.Owner == "" {
		return ErrOwnerRequired
	}
	if c.OrderID == "" || domain.FindOrder(s.Orders, c.OrderID) >= 0 {
		return ErrDuplicateOrder
	}
	cart := s.Carts[c.Owner]
	if cart.IsEmpty() {
		return domain.ErrEmptyCart
	}

	items := cart.Snapshot()
	for _, it := range items {
		i := domain.FindProduct(s.Products, it.ProductID)
		if i < 0 {
			return domain.ErrProductNotFound
		}
		if err := s.Products[i].AdjustStock(it.Size, -it.Quantity); err != nil {
			return err
		}
	}

	order := domain.Order{
		ID:            c.OrderID,
		Owner:         c.Owner,
		Date:          now,
		Status:        domain.StatusProcessing,
		Total:         cart.TotalAmount(),
		Items:         items,
		Customer:      c.Customer,
		PaymentMethod: c.PaymentMethod,
		History:       []domain.StatusChange{{Status: domain.StatusProcessing, Timestamp: now}},
	}
	s.Orders = append(s.Orders, order)
	delete(s.Carts, c.Owner)

	c.Order = order.Clone()
	return nil
}

// UpdateOrderStatus moves an order through its lifecycle. Cancelling puts the
// quantities recorded on the order back into stock; terminal orders reject the
// edit, so stock is restored at most once.
type UpdateOrderStatus struct {
	OrderID string
	Status  domain.OrderStatus

	Previous domain.OrderStatus
	Order    domain.Order
}

func (c *UpdateOrderStatus) Name() string { return "orders/update-status" }

func (c *UpdateOrderStatus) Apply(s *State, now time.Time) error {
	i := domain.FindOrder(s.Orders, c.OrderID)
	if i < 0 {
		return domain.ErrOrderNotFound
	}
	order := &s.Orders[i]
	c.Previous = order.Status
	if err := order.Transition(c.Status, now); err != nil {
		return err
	}

	if c.Status == domain.StatusCancelled {
		for _, it := range order.Items {
			pi := domain.FindProduct(s.Products, it.ProductID)
			if pi < 0 {
				continue
			}
			// a size dropped from the catalog since checkout has nothing to restock
			_ = s.Products[pi].AdjustStock(it.Size, it.Quantity)
		}
	}

	c.Order = order.Clone()
	return nil
}
