package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// position on the forward-only path; Cancelled is a side exit
var statusRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

func (s OrderStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no transition may leave s
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks a status edit against the order state machine
func (s OrderStatus) CanTransitionTo(next OrderStatus) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if s.Terminal() {
		return ErrTerminalStatus
	}
	if next == StatusCancelled {
		return nil
	}
	if statusRank[next] <= statusRank[s] {
		return ErrInvalidTransition
	}
	return nil
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCOD  PaymentMethod = "cod"
)

// OrderItem is a by-value copy of a cart line taken at checkout
type OrderItem struct {
	ProductID int             `json:"productId"`
	Size      float64         `json:"size"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// ShippingInfo is the contact and delivery snapshot of a checkout form
type ShippingInfo struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type StatusChange struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// Order is created once at checkout and only changes status afterwards
type Order struct {
	ID            string          `json:"id"`
	Owner         string          `json:"owner,omitempty"`
	Date          time.Time       `json:"date"`
	Status        OrderStatus     `json:"status"`
	Total         decimal.Decimal `json:"total"`
	Items         []OrderItem     `json:"items"`
	Customer      ShippingInfo    `json:"customer"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	History       []StatusChange  `json:"history"`
}

// Transition moves the order to next and records it in the history
func (o *Order) Transition(next OrderStatus, at time.Time) error {
	if err := o.Status.CanTransitionTo(next); err != nil {
		return err
	}
	o.Status = next
	o.History = append(o.History, StatusChange{Status: next, Timestamp: at})
	return nil
}

func (o Order) TotalQuantity() int {
	total := 0
	for _, it := range o.Items {
		total += it.Quantity
	}
	return total
}

func (o Order) Clone() Order {
	out := o
	out.Items = append([]OrderItem(nil), o.Items...)
	out.History = append([]StatusChange(nil), o.History...)
	return out
}

// FindOrder returns the index of the order with id, or -1
func FindOrder(orders []Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}
