package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nthminh/Pho-Viet/internal/core/domain"
	"github.com/nthminh/Pho-Viet/internal/metrics"
	"github.com/nthminh/Pho-Viet/internal/port"
)

var ErrInvalidMenuItem = errors.New("invalid menu item")

// MenuService is the menu counterpart of OrderService: cloud backend
// when configured, memory store as the per-call fallback.
type MenuService struct {
	remote port.MenuStore // nil when the cloud backend is unconfigured
	local  port.MenuStore
	log    zerolog.Logger
	met    *metrics.Metrics
}

func NewMenuService(remote, local port.MenuStore, log zerolog.Logger, met *metrics.Metrics) *MenuService {
	return &MenuService{remote: remote, local: local, log: log, met: met}
}

func (s *MenuService) CloudBacked() bool {
	return s.remote != nil
}

func (s *MenuService) fellBack(op string, err error) {
	s.log.Warn().Err(err).Str("collection", "menu").Str("operation", op).
		Msg("cloud backend failed, serving from memory store")
	s.met.Fallbacks.WithLabelValues("menu", op).Inc()
}

func (s *MenuService) served(op, backend string) {
	s.met.Operations.WithLabelValues("menu", op, backend).Inc()
}

func (s *MenuService) List(ctx context.Context) []domain.MenuItem {
	if s.remote != nil {
		items, err := s.remote.ListMenuItems(ctx)
		if err == nil {
			s.served("list", backendCloud)
			return items
		}
		s.fellBack("list", err)
	}
	items, _ := s.local.ListMenuItems(ctx)
	s.served("list", backendMemory)
	return items
}

// ListByCategory filters client side; CategoryAll (or empty) means no
// category constraint. Only available items are returned, matching the
// customer menu view.
func (s *MenuService) ListByCategory(ctx context.Context, category domain.Category) []domain.MenuItem {
	items := s.List(ctx)
	out := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		if !item.Available {
			continue
		}
		if category != "" && category != domain.CategoryAll && item.Category != category {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *MenuService) Get(ctx context.Context, id string) *domain.MenuItem {
	if s.remote != nil {
		item, err := s.remote.GetMenuItem(ctx, id)
		if err == nil {
			s.served("get", backendCloud)
			return item
		}
		s.fellBack("get", err)
	}
	item, _ := s.local.GetMenuItem(ctx, id)
	s.served("get", backendMemory)
	return item
}

func (s *MenuService) Create(ctx context.Context, item domain.MenuItem) (string, error) {
	if item.Name == "" || item.Price < 0 || !item.Category.Valid() {
		return "", ErrInvalidMenuItem
	}

	if s.remote != nil {
		id, err := s.remote.CreateMenuItem(ctx, item)
		if err == nil {
			s.served("create", backendCloud)
			return id, nil
		}
		s.fellBack("create", err)
	}
	id, _ := s.local.CreateMenuItem(ctx, item)
	s.served("create", backendMemory)
	return id, nil
}

func (s *MenuService) Update(ctx context.Context, id string, patch port.MenuItemPatch) (bool, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return false, ErrInvalidMenuItem
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return false, ErrInvalidMenuItem
	}

	if s.remote != nil {
		ok, err := s.remote.UpdateMenuItem(ctx, id, patch)
		if err == nil {
			s.served("update", backendCloud)
			return ok, nil
		}
		s.fellBack("update", err)
	}
	ok, _ := s.local.UpdateMenuItem(ctx, id, patch)
	s.served("update", backendMemory)
	return ok, nil
}

// SetAvailability toggles the availability flag, the most frequent
// admin edit.
func (s *MenuService) SetAvailability(ctx context.Context, id string, available bool) (bool, error) {
	return s.Update(ctx, id, port.MenuItemPatch{Available: &available})
}

func (s *MenuService) Delete(ctx context.Context, id string) bool {
	if s.remote != nil {
		ok, err := s.remote.DeleteMenuItem(ctx, id)
		if err == nil {
			s.served("delete", backendCloud)
			return ok
		}
		s.fellBack("delete", err)
	}
	ok, _ := s.local.DeleteMenuItem(ctx, id)
	s.served("delete", backendMemory)
	return ok
}

func (s *MenuService) Subscribe(ctx context.Context, fn port.MenuSnapshotFunc) port.Unsubscribe {
	var unsubscribe port.Unsubscribe
	if s.remote != nil {
		var err error
		unsubscribe, err = s.remote.SubscribeMenu(ctx, fn)
		if err != nil {
			s.fellBack("subscribe", err)
			unsubscribe = nil
		}
	}
	if unsubscribe == nil {
		unsubscribe, _ = s.local.SubscribeMenu(ctx, fn)
	}

	s.met.ActiveSubscriptions.WithLabelValues("menu").Inc()
	var release sync.Once
	return func() {
		unsubscribe()
		release.Do(func() {
			s.met.ActiveSubscriptions.WithLabelValues("menu").Dec()
		})
	}
}
