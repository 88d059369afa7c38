package port

import (
	"context"

	"github.com/nthminh/Pho-Viet/internal/core/domain"
)

// OrderSnapshotFunc receives a full copy of the (filtered) order
// collection, newest first.
type OrderSnapshotFunc func(orders []domain.Order)

// OrderFilter narrows listings and subscriptions with equality matches
// only. Zero values mean "no constraint".
type OrderFilter struct {
	Status      domain.OrderStatus
	TableNumber int
}

func (f OrderFilter) Matches(o domain.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.TableNumber != 0 && o.TableNumber != f.TableNumber {
		return false
	}
	return true
}

// Apply returns the orders matching the filter, preserving input order.
func (f OrderFilter) Apply(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

// OrderPatch is a shallow partial update; nil fields are preserved.
type OrderPatch struct {
	Status       *domain.OrderStatus
	TableNumber  *int
	CustomerName *string
}

type OrderStore interface {
	// ListOrders returns matching orders sorted by creation time
	// descending.
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)

	// GetOrder returns (nil, nil) when the id does not exist.
	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	// CreateOrder assigns a fresh id (any id on order is ignored) and
	// returns it.
	CreateOrder(ctx context.Context, order domain.Order) (string, error)

	// UpdateOrder merges the patch into the order. Returns false when
	// the id does not exist.
	UpdateOrder(ctx context.Context, id string, patch OrderPatch) (bool, error)

	// DeleteOrder returns false when the id does not exist.
	DeleteOrder(ctx context.Context, id string) (bool, error)

	// SubscribeOrders invokes fn synchronously with the current
	// filtered snapshot before returning, then again after every
	// mutation of the order collection.
	SubscribeOrders(ctx context.Context, filter OrderFilter, fn OrderSnapshotFunc) (Unsubscribe, error)
}
