package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/store"
	"storefront/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutForm is the shipping and payment form submitted at checkout.
// Card fields are only required when paying by card.
type CheckoutForm struct {
	FullName      string               `json:"fullName" validate:"required,notblank"`
	Email         string               `json:"email" validate:"required,email"`
	Phone         string               `json:"phone" validate:"required,phone"`
	Address       string               `json:"address" validate:"required,notblank"`
	City          string               `json:"city" validate:"required,notblank"`
	PostalCode    string               `json:"postalCode" validate:"required,notblank"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" validate:"required,oneof=card cod"`
	CardNumber    string               `json:"cardNumber" validate:"required_if=PaymentMethod card,cardnumber"`
	CardExpiry    string               `json:"cardExpiry" validate:"required_if=PaymentMethod card,expiry"`
	CardCVV       string               `json:"cardCvv" validate:"required_if=PaymentMethod card,cvv"`
}

func (f CheckoutForm) shipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName:   strings.TrimSpace(f.FullName),
		Email:      domain.NormalizeEmail(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Address:    strings.TrimSpace(f.Address),
		City:       strings.TrimSpace(f.City),
		PostalCode: strings.TrimSpace(f.PostalCode),
	}
}

// OrderStats summarises orders for the back office
type OrderStats struct {
	TotalOrders int                        `json:"totalOrders"`
	ByStatus    map[domain.OrderStatus]int `json:"byStatus"`
	Revenue     decimal.Decimal            `json:"revenue"`
}

// OrderService defines the interface for checkout and order lifecycle
type OrderService interface {
	Checkout(ctx context.Context, owner string, form CheckoutForm) (*domain.Order, error)
	Track(ctx context.Context, id string) (*domain.Order, error)
	ListForCustomer(ctx context.Context, email string) []domain.Order
	ListAll(ctx context.Context, status domain.OrderStatus) []domain.Order
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	Stats(ctx context.Context) OrderStats
}

type orderService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(st *store.Store, logger *zap.Logger) OrderService {
	return &orderService{store: st, logger: logger}
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}

// Checkout validates the form, then places the order, takes the items out of
// stock and clears the cart in a single commit.
func (s *orderService) Checkout(ctx context.Context, owner string, form CheckoutForm) (*domain.Order, error) {
	if form.PaymentMethod == domain.PaymentCOD {
		form.CardNumber, form.CardExpiry, form.CardCVV = "", "", ""
	}
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	cmd := &store.PlaceOrder{
		Owner:         owner,
		OrderID:       newOrderID(),
		Customer:      form.shipping(),
		PaymentMethod: form.PaymentMethod,
	}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", cmd.Order.ID),
		zap.String("owner", owner),
		zap.Int("items", cmd.Order.TotalQuantity()),
		zap.String("total", cmd.Order.Total.String()),
	)
	return &cmd.Order, nil
}

// Track looks an order up by id
func (s *orderService) Track(ctx context.Context, id string) (*domain.Order, error) {
	var (
		order domain.Order
		found bool
	)
	s.store.View(func(st store.State) {
		var o domain.Order
		if o, found = st.Order(strings.TrimSpace(id)); found {
			order = o.Clone()
		}
	})
	if !found {
		return nil, domain.ErrOrderNotFound
	}
	return &order, nil
}

// ListForCustomer returns the orders owned by the user or placed with their email, newest first
func (s *orderService) ListForCustomer(ctx context.Context, email string) []domain.Order {
	owner := store.UserOwner(email)
	normalized := domain.NormalizeEmail(email)

	orders := []domain.Order{}
	s.store.View(func(st store.State) {
		for _, o := range st.Orders {
			if o.Owner == owner || o.Customer.Email == normalized {
				orders = append(orders, o.Clone())
			}
		}
	})
	sortNewestFirst(orders)
	return orders
}

// ListAll returns every order, newest first. An empty status lists all statuses.
func (s *orderService) ListAll(ctx context.Context, status domain.OrderStatus) []domain.Order {
	orders := []domain.Order{}
	s.store.View(func(st store.State) {
		for _, o := range st.Orders {
			if status == "" || o.Status == status {
				orders = append(orders, o.Clone())
			}
		}
	})
	sortNewestFirst(orders)
	return orders
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	cmd := &store.UpdateOrderStatus{OrderID: id, Status: status}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("from", string(cmd.Previous)),
		zap.String("to", string(status)),
	)
	return &cmd.Order, nil
}

// Stats counts orders per status. Cancelled orders do not count as revenue.
func (s *orderService) Stats(ctx context.Context) OrderStats {
	stats := OrderStats{ByStatus: map[domain.OrderStatus]int{}, Revenue: decimal.Zero}
	s.store.View(func(st store.State) {
		for _, o := range st.Orders {
			stats.TotalOrders++
			stats.ByStatus[o.Status]++
			if o.Status != domain.StatusCancelled {
				stats.Revenue = stats.Revenue.Add(o.Total)
			}
		}
	})
	return stats
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date.After(orders[j].Date)
	})
}
