package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/nthminh/Pho-Viet/internal/core/domain"
	"github.com/nthminh/Pho-Viet/internal/port"
)

const (
	menuTable  = "menu_items"
	orderTable = "orders"
)

// SurrealStore implements the store contracts against SurrealDB over
// WebSocket RPC. The database assigns its own record ids on create, and
// subscriptions ride on live queries.
//
// The surrealcbor codec is required so that time.Time round-trips
// through SurrealDB's native datetime type (see the createdAt field on
// orders); default marshaling produces values the server rejects.
type SurrealStore struct {
	db *surrealdb.DB
}

// NewSurrealStore connects, authenticates and selects the namespace and
// database. Credentials: user defaults to root, password is the API key.
func NewSurrealStore(ctx context.Context, endpoint, namespace, database, user, pass string) (*SurrealStore, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)
	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if user != "" && pass != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": user,
			"pass": pass,
		}); err != nil {
			return nil, fmt.Errorf("sign in: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		return nil, fmt.Errorf("use %s/%s: %w", namespace, database, err)
	}

	return &SurrealStore{db: db}, nil
}

func (s *SurrealStore) Close() error {
	return s.db.Close(context.Background())
}

// notFoundErr matches the errors the client returns when a record id
// does not exist, so callers get the boolean not-found contract instead
// of an error.
func notFoundErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "but got 0") ||
		strings.Contains(msg, "no record found") ||
		strings.Contains(msg, "cannot unmarshal array")
}

// ---- wire records ----

type menuRecord struct {
	ID          *models.RecordID `json:"id,omitempty"`
	Name        string           `json:"name"`
	NameEn      string           `json:"nameEn"`
	Description string           `json:"description"`
	Price       int64            `json:"price"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"imageUrl"`
	Available   bool             `json:"available"`
}

type orderItemRecord struct {
	MenuItem menuSnapshotRecord `json:"menuItem"`
	Quantity int                `json:"quantity"`
	Note     string             `json:"note,omitempty"`
}

// menuSnapshotRecord embeds the ordered item as plain data. The id is a
// string copy, not a record link; the snapshot must survive menu edits
// and deletions untouched.
type menuSnapshotRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NameEn      string `json:"nameEn"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
	Available   bool   `json:"available"`
}

type orderRecord struct {
	ID           *models.RecordID      `json:"id,omitempty"`
	TableNumber  int                   `json:"tableNumber"`
	Items        []orderItemRecord     `json:"items"`
	TotalAmount  int64                 `json:"totalAmount"`
	Status       string                `json:"status"`
	CreatedAt    models.CustomDateTime `json:"createdAt"`
	CustomerName string                `json:"customerName,omitempty"`
}

func recordIDString(id *models.RecordID) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id.ID)
}

func (r menuRecord) toDomain() domain.MenuItem {
	return domain.MenuItem{
		ID:          recordIDString(r.ID),
		Name:        r.Name,
		NameEn:      r.NameEn,
		Description: r.Description,
		Price:       r.Price,
		Category:    domain.Category(r.Category),
		ImageURL:    r.ImageURL,
		Available:   r.Available,
	}
}

func menuItemContent(item domain.MenuItem) map[string]any {
	return map[string]any{
		"name":        item.Name,
		"nameEn":      item.NameEn,
		"description": item.Description,
		"price":       item.Price,
		"category":    string(item.Category),
		"imageUrl":    item.ImageURL,
		"available":   item.Available,
	}
}

func (r orderRecord) toDomain() domain.Order {
	items := make([]domain.OrderItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.OrderItem{
			MenuItem: domain.MenuItem{
				ID:          it.MenuItem.ID,
				Name:        it.MenuItem.Name,
				NameEn:      it.MenuItem.NameEn,
				Description: it.MenuItem.Description,
				Price:       it.MenuItem.Price,
				Category:    domain.Category(it.MenuItem.Category),
				ImageURL:    it.MenuItem.ImageURL,
				Available:   it.MenuItem.Available,
			},
			Quantity: it.Quantity,
			Note:     it.Note,
		}
	}
	return domain.Order{
		ID:           recordIDString(r.ID),
		TableNumber:  r.TableNumber,
		Items:        items,
		TotalAmount:  r.TotalAmount,
		Status:       domain.OrderStatus(r.Status),
		CreatedAt:    r.CreatedAt.Time,
		CustomerName: r.CustomerName,
	}
}

func orderContent(o domain.Order) map[string]any {
	items := make([]orderItemRecord, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemRecord{
			MenuItem: menuSnapshotRecord{
				ID:          it.MenuItem.ID,
				Name:        it.MenuItem.Name,
				NameEn:      it.MenuItem.NameEn,
				Description: it.MenuItem.Description,
				Price:       it.MenuItem.Price,
				Category:    string(it.MenuItem.Category),
				ImageURL:    it.MenuItem.ImageURL,
				Available:   it.MenuItem.Available,
			},
			Quantity: it.Quantity,
			Note:     it.Note,
		}
	}
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return map[string]any{
		"tableNumber":  o.TableNumber,
		"items":        items,
		"totalAmount":  o.TotalAmount,
		"status":       string(o.Status),
		"createdAt":    models.CustomDateTime{Time: createdAt},
		"customerName": o.CustomerName,
	}
}

// ---- menu collection ----

func (s *SurrealStore) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	res, err := surrealdb.Query[[]menuRecord](ctx, s.db,
		"SELECT * FROM menu_items ORDER BY category", nil)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	records := (*res)[0].Result
	items := make([]domain.MenuItem, len(records))
	for i, r := range records {
		items[i] = r.toDomain()
	}
	return items, nil
}

func (s *SurrealStore) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	rec, err := surrealdb.Select[menuRecord](ctx, s.db, models.NewRecordID(menuTable, id))
	if err != nil {
		if notFoundErr(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, nil
	}
	item := rec.toDomain()
	return &item, nil
}

func (s *SurrealStore) CreateMenuItem(ctx context.Context, item domain.MenuItem) (string, error) {
	rec, err := surrealdb.Create[menuRecord](ctx, s.db, menuTable, menuItemContent(item))
	if err != nil {
		return "", fmt.Errorf("create menu item: %w", err)
	}
	return recordIDString(rec.ID), nil
}

func (s *SurrealStore) UpdateMenuItem(ctx context.Context, id string, patch port.MenuItemPatch) (bool, error) {
	existing, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.NameEn != nil {
		fields["nameEn"] = *patch.NameEn
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Category != nil {
		fields["category"] = string(*patch.Category)
	}
	if patch.ImageURL != nil {
		fields["imageUrl"] = *patch.ImageURL
	}
	if patch.Available != nil {
		fields["available"] = *patch.Available
	}
	if len(fields) == 0 {
		return true, nil
	}

	if _, err := surrealdb.Merge[menuRecord](ctx, s.db, models.NewRecordID(menuTable, id), fields); err != nil {
		return false, fmt.Errorf("update menu item: %w", err)
	}
	return true, nil
}

func (s *SurrealStore) DeleteMenuItem(ctx context.Context, id string) (bool, error) {
	existing, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if _, err := surrealdb.Delete[menuRecord](ctx, s.db, models.NewRecordID(menuTable, id)); err != nil {
		return false, fmt.Errorf("delete menu item: %w", err)
	}
	return true, nil
}

func (s *SurrealStore) SubscribeMenu(ctx context.Context, fn port.MenuSnapshotFunc) (port.Unsubscribe, error) {
	items, err := s.ListMenuItems(ctx)
	if err != nil {
		return nil, err
	}

	relist := func() error {
		fresh, err := s.ListMenuItems(context.Background())
		if err != nil {
			return err
		}
		fn(fresh)
		return nil
	}
	unsubscribe, err := s.live(ctx, menuTable, relist)
	if err != nil {
		return nil, err
	}

	fn(items)
	return unsubscribe, nil
}

// ---- order collection ----

func (s *SurrealStore) ListOrders(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	// Equality filters are pushed down; everything else stays client
	// side. Ordering is newest first.
	query := "SELECT * FROM orders"
	vars := map[string]any{}
	var where []string
	if filter.Status != "" {
		where = append(where, "status = $status")
		vars["status"] = string(filter.Status)
	}
	if filter.TableNumber != 0 {
		where = append(where, "tableNumber = $table")
		vars["table"] = filter.TableNumber
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY createdAt DESC"

	res, err := surrealdb.Query[[]orderRecord](ctx, s.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	records := (*res)[0].Result
	orders := make([]domain.Order, len(records))
	for i, r := range records {
		orders[i] = r.toDomain()
	}
	return orders, nil
}

func (s *SurrealStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	rec, err := surrealdb.Select[orderRecord](ctx, s.db, models.NewRecordID(orderTable, id))
	if err != nil {
		if notFoundErr(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, nil
	}
	order := rec.toDomain()
	return &order, nil
}

func (s *SurrealStore) CreateOrder(ctx context.Context, order domain.Order) (string, error) {
	rec, err := surrealdb.Create[orderRecord](ctx, s.db, orderTable, orderContent(order))
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	return recordIDString(rec.ID), nil
}

func (s *SurrealStore) UpdateOrder(ctx context.Context, id string, patch port.OrderPatch) (bool, error) {
	existing, err := s.GetOrder(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	fields := map[string]any{}
	if patch.Status != nil {
		fields["status"] = string(*patch.Status)
	}
	if patch.TableNumber != nil {
		fields["tableNumber"] = *patch.TableNumber
	}
	if patch.CustomerName != nil {
		fields["customerName"] = *patch.CustomerName
	}
	if len(fields) == 0 {
		return true, nil
	}

	if _, err := surrealdb.Merge[orderRecord](ctx, s.db, models.NewRecordID(orderTable, id), fields); err != nil {
		return false, fmt.Errorf("update order: %w", err)
	}
	return true, nil
}

func (s *SurrealStore) DeleteOrder(ctx context.Context, id string) (bool, error) {
	existing, err := s.GetOrder(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if _, err := surrealdb.Delete[orderRecord](ctx, s.db, models.NewRecordID(orderTable, id)); err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return true, nil
}

func (s *SurrealStore) SubscribeOrders(ctx context.Context, filter port.OrderFilter, fn port.OrderSnapshotFunc) (port.Unsubscribe, error) {
	orders, err := s.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	relist := func() error {
		fresh, err := s.ListOrders(context.Background(), filter)
		if err != nil {
			return err
		}
		fn(fresh)
		return nil
	}
	unsubscribe, err := s.live(ctx, orderTable, relist)
	if err != nil {
		return nil, err
	}

	fn(orders)
	return unsubscribe, nil
}

// live starts a live query on table and calls relist after every change
// notification, so observers always receive a whole fresh snapshot
// rather than incremental diffs. The returned handle kills the live
// query; calling it twice is a no-op.
func (s *SurrealStore) live(ctx context.Context, table string, relist func() error) (port.Unsubscribe, error) {
	liveID, err := surrealdb.Live(ctx, s.db, models.Table(table), false)
	if err != nil {
		return nil, fmt.Errorf("live %s: %w", table, err)
	}

	ch, err := s.db.LiveNotifications(liveID.String())
	if err != nil {
		_ = surrealdb.Kill(ctx, s.db, liveID.String())
		return nil, fmt.Errorf("live notifications %s: %w", table, err)
	}

	go func() {
		// Channel closes when the live query is killed.
		for range ch {
			// Errors here mean the backend went away mid-stream; the
			// next notification (or re-subscribe) recovers.
			_ = relist()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = surrealdb.Kill(context.Background(), s.db, liveID.String())
		})
	}, nil
}
