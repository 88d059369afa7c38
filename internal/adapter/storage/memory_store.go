package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nthminh/Pho-Viet/internal/core/domain"
	"github.com/nthminh/Pho-Viet/internal/port"
)

// MemoryStore is the in-process fallback backend. It is authoritative
// whenever the cloud backend is unconfigured or unreachable. Data lives
// for the lifetime of the process only.
//
// Mutations and notification fan-out run under the store lock, so every
// observer sees mutations in the order they were applied and never a
// half-applied one. Callbacks must not call back into the store's
// read/write methods; unsubscribing from within a callback is fine.
type MemoryStore struct {
	mu        sync.Mutex
	menuItems []domain.MenuItem
	orders    []domain.Order

	lmu            sync.Mutex
	menuListeners  map[uuid.UUID]port.MenuSnapshotFunc
	orderListeners map[uuid.UUID]orderListener
}

type orderListener struct {
	filter port.OrderFilter
	fn     port.OrderSnapshotFunc
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		menuListeners:  make(map[uuid.UUID]port.MenuSnapshotFunc),
		orderListeners: make(map[uuid.UUID]orderListener),
	}
}

func copyMenuItems(items []domain.MenuItem) []domain.MenuItem {
	out := make([]domain.MenuItem, len(items))
	copy(out, items)
	return out
}

func copyOrders(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	// Line items are copied too, so callers cannot reach store state
	// through a snapshot.
	for i := range out {
		items := make([]domain.OrderItem, len(out[i].Items))
		copy(items, out[i].Items)
		out[i].Items = items
	}
	return out
}

// sortedOrders returns a copy sorted by creation time descending.
func sortedOrders(orders []domain.Order) []domain.Order {
	out := copyOrders(orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ---- menu collection ----

func (s *MemoryStore) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMenuItems(s.menuItems), nil
}

func (s *MemoryStore) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.menuItems {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateMenuItem(ctx context.Context, item domain.MenuItem) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = domain.NewRecordID()
	s.menuItems = append(s.menuItems, item)
	s.notifyMenuLocked()
	return item.ID, nil
}

func (s *MemoryStore) UpdateMenuItem(ctx context.Context, id string, patch port.MenuItemPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.menuItems {
		if s.menuItems[i].ID != id {
			continue
		}
		applyMenuItemPatch(&s.menuItems[i], patch)
		s.notifyMenuLocked()
		return true, nil
	}
	return false, nil
}

func (s *MemoryStore) DeleteMenuItem(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.menuItems {
		if s.menuItems[i].ID != id {
			continue
		}
		s.menuItems = append(s.menuItems[:i], s.menuItems[i+1:]...)
		s.notifyMenuLocked()
		return true, nil
	}
	return false, nil
}

func (s *MemoryStore) SubscribeMenu(ctx context.Context, fn port.MenuSnapshotFunc) (port.Unsubscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.lmu.Lock()
	s.menuListeners[id] = fn
	s.lmu.Unlock()

	// First snapshot is delivered before Subscribe returns, even when
	// the collection is empty.
	fn(copyMenuItems(s.menuItems))

	return s.removeMenuListener(id), nil
}

func (s *MemoryStore) removeMenuListener(id uuid.UUID) port.Unsubscribe {
	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.menuListeners, id)
	}
}

func (s *MemoryStore) notifyMenuLocked() {
	s.lmu.Lock()
	fns := make([]port.MenuSnapshotFunc, 0, len(s.menuListeners))
	for _, fn := range s.menuListeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(copyMenuItems(s.menuItems))
	}
}

// ---- order collection ----

func (s *MemoryStore) ListOrders(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Apply(sortedOrders(s.orders)), nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			found := o
			found.Items = make([]domain.OrderItem, len(o.Items))
			copy(found.Items, o.Items)
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, order domain.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = domain.NewOrderID()
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	s.orders = append(s.orders, order)
	s.notifyOrdersLocked()
	return order.ID, nil
}

func (s *MemoryStore) UpdateOrder(ctx context.Context, id string, patch port.OrderPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		applyOrderPatch(&s.orders[i], patch)
		s.notifyOrdersLocked()
		return true, nil
	}
	return false, nil
}

func (s *MemoryStore) DeleteOrder(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		s.orders = append(s.orders[:i], s.orders[i+1:]...)
		s.notifyOrdersLocked()
		return true, nil
	}
	return false, nil
}

func (s *MemoryStore) SubscribeOrders(ctx context.Context, filter port.OrderFilter, fn port.OrderSnapshotFunc) (port.Unsubscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.lmu.Lock()
	s.orderListeners[id] = orderListener{filter: filter, fn: fn}
	s.lmu.Unlock()

	fn(filter.Apply(sortedOrders(s.orders)))

	return s.removeOrderListener(id), nil
}

func (s *MemoryStore) removeOrderListener(id uuid.UUID) port.Unsubscribe {
	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.orderListeners, id)
	}
}

func (s *MemoryStore) notifyOrdersLocked() {
	s.lmu.Lock()
	ls := make([]orderListener, 0, len(s.orderListeners))
	for _, l := range s.orderListeners {
		ls = append(ls, l)
	}
	s.lmu.Unlock()

	snapshot := sortedOrders(s.orders)
	for _, l := range ls {
		l.fn(l.filter.Apply(snapshot))
	}
}

// ---- patch application ----

func applyMenuItemPatch(item *domain.MenuItem, patch port.MenuItemPatch) {
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.NameEn != nil {
		item.NameEn = *patch.NameEn
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.ImageURL != nil {
		item.ImageURL = *patch.ImageURL
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}
}

func applyOrderPatch(order *domain.Order, patch port.OrderPatch) {
	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.TableNumber != nil {
		order.TableNumber = *patch.TableNumber
	}
	if patch.CustomerName != nil {
		order.CustomerName = *patch.CustomerName
	}
}
