package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// transitions is the full set of allowed status edges. Orders move
// forward one step at a time; cancellation is only possible before the
// kitchen has finished the order.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusCompleted},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the edge s -> target is allowed.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s, in the order the
// kitchen and POS surfaces present them. Empty for terminal statuses.
func (s OrderStatus) NextStatuses() []OrderStatus {
	next := transitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// OrderItem is one line of an order. MenuItem is a snapshot of the item
// as it was when the customer ordered; later menu edits do not touch it.
type OrderItem struct {
	MenuItem MenuItem `json:"menuItem"`
	Quantity int      `json:"quantity"`
	Note     string   `json:"note,omitempty"`
}

type Order struct {
	ID           string      `json:"id"`
	TableNumber  int         `json:"tableNumber"`
	Items        []OrderItem `json:"items"`
	TotalAmount  int64       `json:"totalAmount"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	CustomerName string      `json:"customerName,omitempty"`
}

// OrderTotal sums price x quantity over the line items. The result is
// fixed on the order at submission time and never recomputed from live
// menu prices.
func OrderTotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.MenuItem.Price * int64(it.Quantity)
	}
	return total
}
