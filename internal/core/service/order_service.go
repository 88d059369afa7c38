package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nthminh/Pho-Viet/internal/core/domain"
	"github.com/nthminh/Pho-Viet/internal/metrics"
	"github.com/nthminh/Pho-Viet/internal/port"
)

var (
	ErrNoItems           = errors.New("order has no line items")
	ErrInvalidTable      = errors.New("invalid table number")
	ErrInvalidQuantity   = errors.New("invalid line item quantity")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

const (
	backendCloud  = "cloud"
	backendMemory = "memory"
)

// NewOrder is a customer submission before the store assigns identity.
type NewOrder struct {
	TableNumber  int
	Items        []domain.OrderItem
	CustomerName string
}

// OrderService routes order operations to the cloud backend when one is
// configured, falling back to the in-memory store on any cloud error so
// the floor keeps running through a backend outage. Callers never see
// which backend served a call.
type OrderService struct {
	remote port.OrderStore // nil when the cloud backend is unconfigured
	local  port.OrderStore
	log    zerolog.Logger
	met    *metrics.Metrics
}

func NewOrderService(remote, local port.OrderStore, log zerolog.Logger, met *metrics.Metrics) *OrderService {
	return &OrderService{remote: remote, local: local, log: log, met: met}
}

// CloudBacked reports whether the cloud backend is in use.
func (s *OrderService) CloudBacked() bool {
	return s.remote != nil
}

func (s *OrderService) fellBack(op string, err error) {
	s.log.Warn().Err(err).Str("collection", "orders").Str("operation", op).
		Msg("cloud backend failed, serving from memory store")
	s.met.Fallbacks.WithLabelValues("orders", op).Inc()
}

func (s *OrderService) served(op, backend string) {
	s.met.Operations.WithLabelValues("orders", op, backend).Inc()
}

// Submit validates and stores a new order. The total is computed here,
// from the submitted menu item snapshots, and is never recalculated
// when menu prices change later.
func (s *OrderService) Submit(ctx context.Context, in NewOrder) (string, error) {
	if len(in.Items) == 0 {
		return "", ErrNoItems
	}
	if in.TableNumber <= 0 {
		return "", ErrInvalidTable
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return "", ErrInvalidQuantity
		}
	}

	order := domain.Order{
		TableNumber:  in.TableNumber,
		Items:        in.Items,
		TotalAmount:  domain.OrderTotal(in.Items),
		Status:       domain.OrderStatusPending,
		CreatedAt:    time.Now(),
		CustomerName: in.CustomerName,
	}

	if s.remote != nil {
		id, err := s.remote.CreateOrder(ctx, order)
		if err == nil {
			s.served("create", backendCloud)
			return id, nil
		}
		s.fellBack("create", err)
	}
	id, _ := s.local.CreateOrder(ctx, order)
	s.served("create", backendMemory)
	return id, nil
}

func (s *OrderService) List(ctx context.Context, filter port.OrderFilter) []domain.Order {
	if s.remote != nil {
		orders, err := s.remote.ListOrders(ctx, filter)
		if err == nil {
			s.served("list", backendCloud)
			return orders
		}
		s.fellBack("list", err)
	}
	orders, _ := s.local.ListOrders(ctx, filter)
	s.served("list", backendMemory)
	return orders
}

func (s *OrderService) Get(ctx context.Context, id string) *domain.Order {
	if s.remote != nil {
		order, err := s.remote.GetOrder(ctx, id)
		if err == nil {
			s.served("get", backendCloud)
			return order
		}
		s.fellBack("get", err)
	}
	order, _ := s.local.GetOrder(ctx, id)
	s.served("get", backendMemory)
	return order
}

// Advance moves an order to target along the status graph. The current
// status is re-read and the edge re-validated here; the caller's idea
// of the current status is never trusted, because another actor may
// have advanced the order in the meantime.
func (s *OrderService) Advance(ctx context.Context, id string, target domain.OrderStatus) error {
	if !target.Valid() {
		return ErrUnknownStatus
	}

	order := s.Get(ctx, id)
	if order == nil {
		return ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}

	if ok := s.update(ctx, id, port.OrderPatch{Status: &target}); !ok {
		// Deleted between the read and the write.
		return ErrOrderNotFound
	}
	return nil
}

func (s *OrderService) update(ctx context.Context, id string, patch port.OrderPatch) bool {
	if s.remote != nil {
		ok, err := s.remote.UpdateOrder(ctx, id, patch)
		if err == nil {
			s.served("update", backendCloud)
			return ok
		}
		s.fellBack("update", err)
	}
	ok, _ := s.local.UpdateOrder(ctx, id, patch)
	s.served("update", backendMemory)
	return ok
}

func (s *OrderService) Delete(ctx context.Context, id string) bool {
	if s.remote != nil {
		ok, err := s.remote.DeleteOrder(ctx, id)
		if err == nil {
			s.served("delete", backendCloud)
			return ok
		}
		s.fellBack("delete", err)
	}
	ok, _ := s.local.DeleteOrder(ctx, id)
	s.served("delete", backendMemory)
	return ok
}

// Subscribe registers fn for whole-snapshot notifications, optionally
// narrowed by filter. fn receives the current snapshot before Subscribe
// returns. The handle is safe to call more than once.
func (s *OrderService) Subscribe(ctx context.Context, filter port.OrderFilter, fn port.OrderSnapshotFunc) port.Unsubscribe {
	var unsubscribe port.Unsubscribe
	if s.remote != nil {
		var err error
		unsubscribe, err = s.remote.SubscribeOrders(ctx, filter, fn)
		if err != nil {
			s.fellBack("subscribe", err)
			unsubscribe = nil
		}
	}
	if unsubscribe == nil {
		unsubscribe, _ = s.local.SubscribeOrders(ctx, filter, fn)
	}

	s.met.ActiveSubscriptions.WithLabelValues("orders").Inc()
	var release sync.Once
	return func() {
		unsubscribe()
		release.Do(func() {
			s.met.ActiveSubscriptions.WithLabelValues("orders").Dec()
		})
	}
}
