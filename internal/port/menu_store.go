package port

import (
	"context"

	"github.com/nthminh/Pho-Viet/internal/core/domain"
)

// MenuSnapshotFunc receives a full copy of the menu collection. The
// slice is owned by the receiver; mutating it never touches store state.
type MenuSnapshotFunc func(items []domain.MenuItem)

// Unsubscribe revokes a subscription. Calling it more than once is safe
// and has no additional effect.
type Unsubscribe func()

// MenuItemPatch is a shallow partial update; nil fields are preserved.
type MenuItemPatch struct {
	Name        *string
	NameEn      *string
	Description *string
	Price       *int64
	Category    *domain.Category
	ImageURL    *string
	Available   *bool
}

type MenuStore interface {
	// ListMenuItems returns a snapshot of the whole menu collection.
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)

	// GetMenuItem returns (nil, nil) when the id does not exist.
	GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error)

	// CreateMenuItem assigns a fresh id (any id on item is ignored) and
	// returns it.
	CreateMenuItem(ctx context.Context, item domain.MenuItem) (string, error)

	// UpdateMenuItem merges the patch into the item. Returns false when
	// the id does not exist.
	UpdateMenuItem(ctx context.Context, id string, patch MenuItemPatch) (bool, error)

	// DeleteMenuItem returns false when the id does not exist.
	DeleteMenuItem(ctx context.Context, id string) (bool, error)

	// SubscribeMenu invokes fn synchronously with the current snapshot
	// before returning, then again after every mutation.
	SubscribeMenu(ctx context.Context, fn MenuSnapshotFunc) (Unsubscribe, error)
}
