package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/nthminh/Pho-Viet/internal/adapter/storage"
	"github.com/nthminh/Pho-Viet/internal/core/domain"
	"github.com/nthminh/Pho-Viet/internal/metrics"
	"github.com/nthminh/Pho-Viet/internal/port"
)

var errBackendDown = errors.New("backend down")

// failingOrderStore stands in for an unreachable cloud backend: every
// operation errors.
type failingOrderStore struct{}

func (failingOrderStore) ListOrders(context.Context, port.OrderFilter) ([]domain.Order, error) {
	return nil, errBackendDown
}

func (failingOrderStore) GetOrder(context.Context, string) (*domain.Order, error) {
	return nil, errBackendDown
}

func (failingOrderStore) CreateOrder(context.Context, domain.Order) (string, error) {
	return "", errBackendDown
}

func (failingOrderStore) UpdateOrder(context.Context, string, port.OrderPatch) (bool, error) {
	return false, errBackendDown
}

func (failingOrderStore) DeleteOrder(context.Context, string) (bool, error) {
	return false, errBackendDown
}

func (failingOrderStore) SubscribeOrders(context.Context, port.OrderFilter, port.OrderSnapshotFunc) (port.Unsubscribe, error) {
	return nil, errBackendDown
}

func newTestOrderService(remote port.OrderStore) (*OrderService, *storage.MemoryStore) {
	local := storage.NewMemoryStore()
	return NewOrderService(remote, local, zerolog.Nop(), metrics.New()), local
}

func pendingOrder(table int) NewOrder {
	return NewOrder{
		TableNumber: table,
		Items: []domain.OrderItem{
			{MenuItem: domain.MenuItem{ID: "m1", Name: "Phở bò tái", Price: 65000}, Quantity: 2},
			{MenuItem: domain.MenuItem{ID: "m2", Name: "Trà đá", Price: 10000}, Quantity: 2},
		},
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc, _ := newTestOrderService(nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, NewOrder{TableNumber: 1})
	if !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems, got %v", err)
	}

	in := pendingOrder(0)
	_, err = svc.Submit(ctx, in)
	if !errors.Is(err, ErrInvalidTable) {
		t.Errorf("expected ErrInvalidTable, got %v", err)
	}

	in = pendingOrder(1)
	in.Items[0].Quantity = 0
	_, err = svc.Submit(ctx, in)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestSubmit_ComputesTotalAndPending(t *testing.T) {
	svc, _ := newTestOrderService(nil)
	ctx := context.Background()

	id, err := svc.Submit(ctx, pendingOrder(4))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	order := svc.Get(ctx, id)
	if order == nil {
		t.Fatal("expected order to exist")
	}
	if order.TotalAmount != 150000 {
		t.Errorf("expected total 150000, got %d", order.TotalAmount)
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("expected pending, got %s", order.Status)
	}
	if order.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}
}

func TestSubmit_TotalFixedAtSubmission(t *testing.T) {
	svc, _ := newTestOrderService(nil)
	ctx := context.Background()

	in := pendingOrder(4)
	id, err := svc.Submit(ctx, in)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// The caller raising its price after submission must not reach the
	// stored order.
	in.Items[0].MenuItem.Price = 999999

	order := svc.Get(ctx, id)
	if order.TotalAmount != 150000 {
		t.Errorf("expected total to stay 150000, got %d", order.TotalAmount)
	}
	if order.Items[0].MenuItem.Price != 65000 {
		t.Errorf("expected snapshot price 65000, got %d", order.Items[0].MenuItem.Price)
	}
}

func TestOrderService_FallsBackToMemory(t *testing.T) {
	svc, local := newTestOrderService(failingOrderStore{})
	ctx := context.Background()

	id, err := svc.Submit(ctx, pendingOrder(2))
	if err != nil {
		t.Fatalf("submit should fall back, got error: %v", err)
	}

	// The order landed in the memory store despite the failing backend.
	stored, _ := local.GetOrder(ctx, id)
	if stored == nil {
		t.Fatal("expected order in memory store")
	}

	orders := svc.List(ctx, port.OrderFilter{})
	if len(orders) != 1 {
		t.Errorf("expected 1 order via fallback list, got %d", len(orders))
	}
	if got := svc.Get(ctx, id); got == nil {
		t.Error("expected fallback get to find the order")
	}
}

func TestAdvance_FollowsStatusGraph(t *testing.T) {
	svc, _ := newTestOrderService(nil)
	ctx := context.Background()

	id, _ := svc.Submit(ctx, pendingOrder(2))

	if err := svc.Advance(ctx, id, domain.OrderStatusReady); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending -> ready: expected ErrInvalidTransition, got %v", err)
	}

	if err := svc.Advance(ctx, id, domain.OrderStatusPreparing); err != nil {
		t.Fatalf("pending -> preparing failed: %v", err)
	}
	if err := svc.Advance(ctx, id, domain.OrderStatusReady); err != nil {
		t.Fatalf("preparing -> ready failed: %v", err)
	}
	if err := svc.Advance(ctx, id, domain.OrderStatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("ready -> cancelled: expected ErrInvalidTransition, got %v", err)
	}
	if err := svc.Advance(ctx, id, domain.OrderStatusCompleted); err != nil {
		t.Fatalf("ready -> completed failed: %v", err)
	}

	// Terminal: nothing further is allowed.
	for _, target := range []domain.OrderStatus{
		domain.OrderStatusPending, domain.OrderStatusPreparing,
		domain.OrderStatusReady, domain.OrderStatusCancelled,
	} {
		if err := svc.Advance(ctx, id, target); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("completed -> %s: expected ErrInvalidTransition, got %v", target, err)
		}
	}
}

func TestAdvance_Errors(t *testing.T) {
	svc, _ := newTestOrderService(nil)
	ctx := context.Background()

	if err := svc.Advance(ctx, "missing", domain.OrderStatusPreparing); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	if err := svc.Advance(ctx, "missing", domain.OrderStatus("shipped")); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestOrderService_Delete(t *testing.T) {
	svc, _ := newTestOrderService(nil)
	ctx := context.Background()

	id, _ := svc.Submit(ctx, pendingOrder(2))
	if !svc.Delete(ctx, id) {
		t.Error("expected delete to succeed")
	}
	if svc.Delete(ctx, id) {
		t.Error("expected second delete to report false")
	}
}

func TestSubscribe_GaugeSingleRelease(t *testing.T) {
	local := storage.NewMemoryStore()
	met := metrics.New()
	svc := NewOrderService(nil, local, zerolog.Nop(), met)
	ctx := context.Background()

	unsubscribe := svc.Subscribe(ctx, port.OrderFilter{}, func([]domain.Order) {})
	if got := testutil.ToFloat64(met.ActiveSubscriptions.WithLabelValues("orders")); got != 1 {
		t.Fatalf("expected gauge 1 after subscribe, got %v", got)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsubscribe()
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(met.ActiveSubscriptions.WithLabelValues("orders")); got != 0 {
		t.Errorf("expected gauge 0 after release, got %v", got)
	}
}

func TestOrderService_SubscribeFallsBack(t *testing.T) {
	svc, _ := newTestOrderService(failingOrderStore{})
	ctx := context.Background()

	var last []domain.Order
	unsubscribe := svc.Subscribe(ctx, port.OrderFilter{}, func(orders []domain.Order) {
		last = orders
	})
	defer unsubscribe()

	if last == nil {
		t.Fatal("expected an immediate initial snapshot")
	}

	id, _ := svc.Submit(ctx, pendingOrder(6))
	if len(last) != 1 || last[0].ID != id {
		t.Errorf("expected snapshot with the new order, got %+v", last)
	}
}
