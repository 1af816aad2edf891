package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
	feedBuffer     = 8
)

// OrderEvent is pushed to order feed subscribers on every status change
type OrderEvent struct {
	OrderID string                `json:"orderId"`
	Status  domain.OrderStatus    `json:"status"`
	History []domain.StatusChange `json:"history"`
}

func newOrderEvent(o domain.Order) OrderEvent {
	return OrderEvent{
		OrderID: o.ID,
		Status:  o.Status,
		History: append([]domain.StatusChange{}, o.History...),
	}
}

// OrderFeed fans order status changes out to websocket subscribers, one
// channel per connection, keyed by order id
type OrderFeed struct {
	mu       sync.Mutex
	subs     map[string]map[chan OrderEvent]struct{}
	orders   service.OrderService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewOrderFeed creates an OrderFeed. An empty allowedOrigins accepts any origin.
func NewOrderFeed(orders service.OrderService, allowedOrigins []string, logger *zap.Logger) *OrderFeed {
	f := &OrderFeed{
		subs:   make(map[string]map[chan OrderEvent]struct{}),
		orders: orders,
		logger: logger,
	}
	f.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return f
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Listener returns the store listener that publishes committed status changes.
// It runs under the store lock, so sends never block: a subscriber that is
// behind misses the event and catches up from the next one's history.
func (f *OrderFeed) Listener() store.Listener {
	return func(ctx context.Context, s store.State, cmd store.Command) {
		var orderID string
		switch c := cmd.(type) {
		case *store.UpdateOrderStatus:
			orderID = c.OrderID
		case *store.PlaceOrder:
			orderID = c.OrderID
		default:
			return
		}

		order, ok := s.Order(orderID)
		if !ok {
			return
		}
		f.publish(newOrderEvent(order))
	}
}

func (f *OrderFeed) publish(ev OrderEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subs[ev.OrderID] {
		select {
		case ch <- ev:
		default:
			f.logger.Debug("Order feed subscriber is behind", zap.String("order_id", ev.OrderID))
		}
	}
}

func (f *OrderFeed) subscribe(orderID string) (chan OrderEvent, func()) {
	ch := make(chan OrderEvent, feedBuffer)

	f.mu.Lock()
	if f.subs[orderID] == nil {
		f.subs[orderID] = make(map[chan OrderEvent]struct{})
	}
	f.subs[orderID][ch] = struct{}{}
	f.mu.Unlock()

	return ch, func() {
		f.mu.Lock()
		delete(f.subs[orderID], ch)
		if len(f.subs[orderID]) == 0 {
			delete(f.subs, orderID)
		}
		f.mu.Unlock()
	}
}

// Subscribers counts the open connections watching orderID
func (f *OrderFeed) Subscribers(orderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[orderID])
}

func (f *OrderFeed) RegisterRoutes(r chi.Router) {
	r.Get("/ws/orders/{id}", f.Serve)
}

// Serve upgrades the request and streams the order's current state followed by
// every later status change until the client goes away
func (f *OrderFeed) Serve(w http.ResponseWriter, r *http.Request) {
	order, err := f.orders.Track(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, f.logger, err, "watch order")
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, unsubscribe := f.subscribe(order.ID)
	defer unsubscribe()

	f.logger.Debug("Order feed subscribed", zap.String("order_id", order.ID))

	// the reader only handles control frames and notices the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	if err := writeEvent(conn, newOrderEvent(*order)); err != nil {
		return
	}

	for {
		select {
		case ev := <-events:
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev OrderEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return conn.WriteJSON(ev)
}
