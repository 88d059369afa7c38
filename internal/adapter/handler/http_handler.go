package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nthminh/Pho-Viet/internal/core/domain"
	"github.com/nthminh/Pho-Viet/internal/core/service"
	"github.com/nthminh/Pho-Viet/internal/port"
	"github.com/nthminh/Pho-Viet/internal/seed"
)

// HTTPHandler exposes the store operations to the UI surfaces: the
// table-scoped customer menu, the POS, the kitchen display and the
// admin screen.
type HTTPHandler struct {
	menu   *service.MenuService
	orders *service.OrderService
	log    zerolog.Logger
}

func NewHTTPHandler(menu *service.MenuService, orders *service.OrderService, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{menu: menu, orders: orders, log: log}
}

func (h *HTTPHandler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/menu", h.ListMenu)
		v1.GET("/menu/categories", h.ListCategories)
		v1.GET("/menu/:id", h.GetMenuItem)
		v1.POST("/menu", h.CreateMenuItem)
		v1.PATCH("/menu/:id", h.UpdateMenuItem)
		v1.PUT("/menu/:id/availability", h.SetAvailability)
		v1.DELETE("/menu/:id", h.DeleteMenuItem)
		v1.POST("/menu/seed", h.SeedMenu)

		v1.GET("/orders", h.ListOrders)
		v1.POST("/orders", h.SubmitOrder)
		v1.GET("/orders/:id", h.GetOrder)
		v1.POST("/orders/:id/advance", h.AdvanceOrder)
		v1.DELETE("/orders/:id", h.DeleteOrder)

		v1.GET("/storage-mode", h.StorageMode)
	}
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StorageMode reports which backend is serving, so the UI can show the
// "data is not persisted" notice in memory mode.
func (h *HTTPHandler) StorageMode(c *gin.Context) {
	mode := "memory"
	displayName := "Memory (In-Process Storage)"
	if h.menu.CloudBacked() {
		mode = "cloud"
		displayName = "SurrealDB (Cloud Storage)"
	}
	c.JSON(http.StatusOK, gin.H{
		"mode":        mode,
		"displayName": displayName,
	})
}

// ---- menu ----

func (h *HTTPHandler) ListMenu(c *gin.Context) {
	category := domain.Category(c.Query("category"))
	if c.Query("available") == "true" || category != "" {
		c.JSON(http.StatusOK, h.menu.ListByCategory(c.Request.Context(), category))
		return
	}
	c.JSON(http.StatusOK, h.menu.List(c.Request.Context()))
}

func (h *HTTPHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Categories())
}

func (h *HTTPHandler) GetMenuItem(c *gin.Context) {
	item := h.menu.Get(c.Request.Context(), c.Param("id"))
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

type createMenuItemRequest struct {
	Name        string `json:"name" binding:"required"`
	NameEn      string `json:"nameEn"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category" binding:"required"`
	ImageURL    string `json:"imageUrl"`
	Available   bool   `json:"available"`
}

func (h *HTTPHandler) CreateMenuItem(c *gin.Context) {
	var req createMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := h.menu.Create(c.Request.Context(), domain.MenuItem{
		Name:        req.Name,
		NameEn:      req.NameEn,
		Description: req.Description,
		Price:       req.Price,
		Category:    domain.Category(req.Category),
		ImageURL:    req.ImageURL,
		Available:   req.Available,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type updateMenuItemRequest struct {
	Name        *string `json:"name"`
	NameEn      *string `json:"nameEn"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"imageUrl"`
	Available   *bool   `json:"available"`
}

func (h *HTTPHandler) UpdateMenuItem(c *gin.Context) {
	var req updateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := port.MenuItemPatch{
		Name:        req.Name,
		NameEn:      req.NameEn,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Available:   req.Available,
	}
	if req.Category != nil {
		category := domain.Category(*req.Category)
		patch.Category = &category
	}

	ok, err := h.menu.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

func (h *HTTPHandler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ok, err := h.menu.SetAvailability(c.Request.Context(), c.Param("id"), *req.Available)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *HTTPHandler) DeleteMenuItem(c *gin.Context) {
	if !h.menu.Delete(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *HTTPHandler) SeedMenu(c *gin.Context) {
	items := seed.MenuItems()
	created := 0
	for _, item := range items {
		if _, err := h.menu.Create(c.Request.Context(), item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "created": created})
			return
		}
		created++
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

// ---- orders ----

func (h *HTTPHandler) ListOrders(c *gin.Context) {
	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.orders.List(c.Request.Context(), filter))
}

func orderFilterFromQuery(c *gin.Context) (port.OrderFilter, bool) {
	var filter port.OrderFilter
	if status := c.Query("status"); status != "" {
		s := domain.OrderStatus(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return filter, false
		}
		filter.Status = s
	}
	if table := c.Query("table"); table != "" {
		n, err := strconv.Atoi(table)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table number"})
			return filter, false
		}
		filter.TableNumber = n
	}
	return filter, true
}

type orderLineRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	Note       string `json:"note"`
}

type submitOrderRequest struct {
	TableNumber  int                `json:"tableNumber" binding:"required"`
	Items        []orderLineRequest `json:"items" binding:"required"`
	CustomerName string             `json:"customerName"`
}

func (h *HTTPHandler) SubmitOrder(c *gin.Context) {
	var req submitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// Line items snapshot the menu item as it is right now; the prices
	// captured here are what the total is computed from.
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		menuItem := h.menu.Get(c.Request.Context(), line.MenuItemID)
		if menuItem == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown menu item: " + line.MenuItemID})
			return
		}
		items = append(items, domain.OrderItem{
			MenuItem: *menuItem,
			Quantity: line.Quantity,
			Note:     line.Note,
		})
	}

	id, err := h.orders.Submit(c.Request.Context(), service.NewOrder{
		TableNumber:  req.TableNumber,
		Items:        items,
		CustomerName: req.CustomerName,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *HTTPHandler) GetOrder(c *gin.Context) {
	order := h.orders.Get(c.Request.Context(), c.Param("id"))
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

type advanceOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *HTTPHandler) AdvanceOrder(c *gin.Context) {
	var req advanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.orders.Advance(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"updated": true})
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (h *HTTPHandler) DeleteOrder(c *gin.Context) {
	if !h.orders.Delete(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
