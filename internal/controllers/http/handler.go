package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/repository"
	"shop-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize   = 20
	orderListCacheTTL = 10 * time.Second
)

type Handler struct {
	catalog  *services.CatalogService
	carts    *services.CartService
	orders   *services.OrderService
	vouchers *services.VoucherService
	rdb      *redis.Client
}

func NewHandler(catalog *services.CatalogService, carts *services.CartService,
	orders *services.OrderService, vouchers *services.VoucherService, rdb *redis.Client) *Handler {
	return &Handler{catalog: catalog, carts: carts, orders: orders, vouchers: vouchers, rdb: rdb}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	products := api.Group("/products")
	products.GET("/:id", h.GetProduct)
	products.GET("/:id/availability", h.CheckAvailability)

	cart := api.Group("/cart")
	cart.GET("/:userId", h.GetCart)
	cart.GET("/:userId/count", h.CartCount)
	cart.POST("/add", h.AddToCart)
	cart.POST("/sync", h.SyncCart)
	cart.PUT("/item/:cartId", h.UpdateCartItem)
	cart.DELETE("/item/:cartId", h.RemoveCartItem)

	orders := api.Group("/orders")
	orders.POST("/create", h.CreateOrder)
	orders.POST("/:id/repurchase", h.RepurchaseOrder)
	orders.GET("/user/:userId", h.GetUserOrders)
	orders.GET("/:id", h.GetOrder)
	orders.GET("/code/:code/shipping-status", h.ShippingStatus)
	orders.GET("/report", h.OrderReport)

	admin := api.Group("/admin/orders")
	admin.PUT("/:id/status", h.UpdateOrderStatus)
	admin.PUT("/:id/payment-status", h.UpdatePaymentStatus)
	admin.PUT("/:id/fast-delivery", h.UpdateFastDelivery)
	admin.GET("", h.SearchOrders)

	vouchers := api.Group("/vouchers")
	vouchers.GET("/code/:code", h.CheckVoucher)
	vouchers.GET("/available", h.AvailableVouchers)
}

func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product retrieved", gin.H{
		"product":    product,
		"finalPrice": product.FinalPrice(),
	})
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}
	qty := queryInt(c, "qty", 1)

	if err := h.catalog.CheckAvailability(c.Request.Context(), productID, qty); err != nil {
		if domain.KindOf(err) == domain.KindOutOfStock {
			respond(c, http.StatusOK, "product unavailable", gin.H{"available": false})
			return
		}
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "product available", gin.H{"available": true})
}

func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	items, err := h.carts.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "cart retrieved", gin.H{
		"items":    items,
		"subtotal": domain.CartSubtotal(items),
	})
}

func (h *Handler) CartCount(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	n, err := h.carts.Count(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "cart count retrieved", gin.H{"count": n})
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req AddCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.E(domain.KindValidation, err.Error()))
		return
	}

	item, err := h.carts.AddItem(c.Request.Context(), req.UserID, req.ProductID, req.ColorID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "item added to cart", gin.H{"item": item})
}

func (h *Handler) SyncCart(c *gin.Context) {
	var req SyncCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.E(domain.KindValidation, err.Error()))
		return
	}

	items, err := h.carts.Sync(c.Request.Context(), req.UserID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "cart synced", gin.H{"items": items})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	cartID, ok := paramID(c, "cartId")
	if !ok {
		return
	}
	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.E(domain.KindValidation, err.Error()))
		return
	}

	item, err := h.carts.UpdateQuantity(c.Request.Context(), cartID, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	if *req.Quantity <= 0 {
		respond(c, http.StatusOK, "item removed from cart", gin.H{"item": item})
		return
	}
	respond(c, http.StatusOK, "cart updated", gin.H{"item": item})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	cartID, ok := paramID(c, "cartId")
	if !ok {
		return
	}
	if err := h.carts.RemoveItem(c.Request.Context(), cartID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "item removed from cart", nil)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.E(domain.KindValidation, err.Error()))
		return
	}
	method, ok := domain.ParseDeliveryMethod(req.DeliveryMethod)
	if !ok {
		respondError(c, domain.E(domain.KindValidation, "unknown delivery method"))
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		UserID:         req.UserID,
		AddressID:      req.AddressID,
		VoucherCode:    req.VoucherCode,
		PaymentMethod:  req.PaymentMethod,
		DeliveryMethod: method,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.rdb.Del(context.Background(), orderListCacheKey(req.UserID))
	respond(c, http.StatusCreated, "order created", gin.H{"order": order})
}

func (h *Handler) RepurchaseOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RepurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.E(domain.KindValidation, err.Error()))
		return
	}

	order, err := h.orders.RepurchaseOrder(c.Request.Context(), req.UserID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "items added back to cart", gin.H{"order": order})
}

// GetUserOrders serves the first default-sized page from a short-lived redis
// cache; explicit paging always goes to the database.
func (h *Handler) GetUserOrders(c *gin.Context) {
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	page := queryInt(c, "page", 0)
	size := querySize(c, defaultPageSize)

	cacheable := page == 0 && size == defaultPageSize
	ctx := c.Request.Context()

	if cacheable {
		if b, err := h.rdb.Get(ctx, orderListCacheKey(userID)).Result(); err == nil {
			var cached repository.OrderPage
			if json.Unmarshal([]byte(b), &cached) == nil {
				respond(c, http.StatusOK, "orders retrieved", gin.H{"orders": cached})
				return
			}
		}
	}

	result, err := h.orders.GetUserOrders(ctx, userID, repository.Page{Number: page, Size: size})
	if err != nil {
		respondError(c, err)
		return
	}

	if cacheable {
		if data, err := json.Marshal(result); err == nil {
			h.rdb.Set(ctx, orderListCacheKey(userID), data, orderListCacheTTL)
		}
	}
	respond(c, http.StatusOK, "orders retrieved", gin.H{"orders": result})
}

func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "order retrieved", gin.H{"order": order})
}

func (h *Handler) ShippingStatus(c *gin.Context) {
	view, err := h.orders.ShippingStatus(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "shipping status retrieved", gin.H{"shipping": view})
}

func (h *Handler) OrderReport(c *gin.Context) {
	from := queryDate(c, "from", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	to := queryDate(c, "to", time.Now())

	if c.Query("format") == "csv" {
		csv, err := h.orders.BuildReportCSV(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=order-report.csv")
		c.Data(http.StatusOK, "text/csv", []byte(csv))
		return
	}

	report, err := h.orders.BuildReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "report built", gin.H{"report": report})
}

func (h *Handler) SearchOrders(c *gin.Context) {
	filter := repository.OrderSearchFilter{Keyword: c.Query("keyword")}
	if s, ok := domain.ParseOrderStatus(c.Query("status")); ok {
		filter.OrderStatus = &s
	}
	if s, ok := domain.ParsePaymentStatus(c.Query("paymentStatus")); ok {
		filter.PaymentStatus = &s
	}
	if m, ok := domain.ParseDeliveryMethod(c.Query("deliveryMethod")); ok {
		filter.DeliveryMethod = &m
	}
	if t, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filter.From = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		end := t.Add(24*time.Hour - time.Second)
		filter.To = &end
	}

	page := repository.Page{
		Number: queryInt(c, "page", 0),
		Size:   querySize(c, defaultPageSize),
	}
	result, err := h.orders.SearchOrders(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "orders retrieved", gin.H{"orders": result})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	status, ok := domain.ParseOrderStatus(c.Query("status"))
	if !ok {
		respondError(c, domain.E(domain.KindValidation, "unknown order status"))
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), orderID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	h.rdb.Del(context.Background(), orderListCacheKey(order.UserID))
	respond(c, http.StatusOK, "order status updated", gin.H{"order": order})
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	status, ok := domain.ParsePaymentStatus(c.Query("status"))
	if !ok {
		respondError(c, domain.E(domain.KindValidation, "unknown payment status"))
		return
	}

	order, err := h.orders.UpdatePaymentStatus(c.Request.Context(), orderID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	h.rdb.Del(context.Background(), orderListCacheKey(order.UserID))
	respond(c, http.StatusOK, "payment status updated", gin.H{"order": order})
}

func (h *Handler) UpdateFastDelivery(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.UpdateFastDelivery(c.Request.Context(), orderID,
		c.Query("status"), c.Query("trackingNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "fast delivery status updated", gin.H{"order": order})
}

func (h *Handler) CheckVoucher(c *gin.Context) {
	amount := decimal.Zero
	if raw := c.Query("amount"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			amount = d
		}
	}

	voucher, valid, err := h.vouchers.CheckCode(c.Request.Context(), c.Param("code"), amount, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "voucher retrieved", gin.H{"voucher": voucher, "valid": valid})
}

func (h *Handler) AvailableVouchers(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now()

	var (
		vouchers []domain.Voucher
		err      error
	)
	if raw := c.Query("amount"); raw != "" {
		amount, perr := decimal.NewFromString(raw)
		if perr != nil {
			respondError(c, domain.E(domain.KindValidation, "invalid amount"))
			return
		}
		vouchers, err = h.vouchers.ListValidForAmount(ctx, now, amount)
	} else {
		vouchers, err = h.vouchers.ListAvailable(ctx, now)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "vouchers retrieved", gin.H{"vouchers": vouchers})
}

func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, domain.E(domain.KindValidation, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// querySize rejects non-positive sizes; ?size=0 would otherwise page with
// LIMIT 0 and return nothing.
func querySize(c *gin.Context, fallback int) int {
	v, err := strconv.Atoi(c.Query("size"))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func queryDate(c *gin.Context, name string, fallback time.Time) time.Time {
	t, err := time.Parse("2006-01-02", c.Query(name))
	if err != nil {
		return fallback
	}
	return t
}

func orderListCacheKey(userID uint64) string {
	return "orders:user:" + strconv.FormatUint(userID, 10)
}
