package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/mocks"
	"shop-service/internal/repository"
	"shop-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type handlerTestEnv struct {
	users     *mocks.MockUserRepository
	addresses *mocks.MockAddressRepository
	products  *mocks.MockProductRepository
	colors    *mocks.MockColorRepository
	carts     *mocks.MockCartRepository
	vouchers  *mocks.MockVoucherRepository
	orders    *mocks.MockOrderRepository
	publisher *mocks.MockPublisher
	router    *gin.Engine
}

// newHandlerTestEnv wires real services over mock repositories. The redis
// client points at a closed port; cache reads and writes fail fast and the
// handlers fall through to the database path.
func newHandlerTestEnv() *handlerTestEnv {
	gin.SetMode(gin.TestMode)

	env := &handlerTestEnv{
		users:     new(mocks.MockUserRepository),
		addresses: new(mocks.MockAddressRepository),
		products:  new(mocks.MockProductRepository),
		colors:    new(mocks.MockColorRepository),
		carts:     new(mocks.MockCartRepository),
		vouchers:  new(mocks.MockVoucherRepository),
		orders:    new(mocks.MockOrderRepository),
		publisher: new(mocks.MockPublisher),
	}
	repos := &repository.Repositories{
		Users:     env.users,
		Addresses: env.addresses,
		Products:  env.products,
		Colors:    env.colors,
		Carts:     env.carts,
		Vouchers:  env.vouchers,
		Orders:    env.orders,
	}

	catalogService := services.NewCatalogService(env.products)
	cartService := services.NewCartService(env.carts, catalogService, env.colors, env.users)
	voucherService := services.NewVoucherService(env.vouchers)
	orderService := services.NewOrderService(&mocks.StubTxManager{Repos: repos}, repos,
		cartService, env.publisher, decimal.NewFromInt(50_000))

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})

	env.router = gin.New()
	NewHandler(catalogService, cartService, orderService, voucherService, rdb).RegisterRoutes(env.router)
	return env
}

func (env *handlerTestEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/csv" {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestHandler_GetProduct(t *testing.T) {
	env := newHandlerTestEnv()
	product := &domain.Product{ID: 100, Name: "EV Scooter", Price: decimal.NewFromInt(20_000_000),
		DiscountPrice: decimal.NewFromInt(18_500_000), Quantity: 5, Status: domain.ProductActive}
	env.products.On("FindByID", mock.Anything, uint64(100)).Return(product, nil)
	env.products.On("FindByID", mock.Anything, uint64(999)).Return(nil, nil)

	w, body := env.do(t, http.MethodGet, "/api/products/100", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "18500000", body["finalPrice"])

	w, _ = env.do(t, http.MethodGet, "/api/products/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CheckAvailability(t *testing.T) {
	env := newHandlerTestEnv()
	product := &domain.Product{ID: 100, Name: "EV Scooter", Price: decimal.NewFromInt(20_000_000),
		Quantity: 2, Status: domain.ProductActive}
	env.products.On("FindByID", mock.Anything, uint64(100)).Return(product, nil)

	w, body := env.do(t, http.MethodGet, "/api/products/100/availability?qty=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["available"])

	w, body = env.do(t, http.MethodGet, "/api/products/100/availability?qty=3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["available"])
}

func TestHandler_AddToCart(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		env := newHandlerTestEnv()
		product := &domain.Product{ID: 100, Name: "EV Scooter", Price: decimal.NewFromInt(20_000_000),
			Quantity: 5, Status: domain.ProductActive}
		env.products.On("FindByID", mock.Anything, uint64(100)).Return(product, nil)
		env.carts.On("FindLine", mock.Anything, uint64(1), uint64(100), (*uint64)(nil)).Return(nil, nil)
		env.users.On("FindByID", mock.Anything, uint64(1)).Return(&domain.User{ID: 1}, nil)
		env.carts.On("Save", mock.Anything, mock.AnythingOfType("*domain.CartItem")).Return(nil)

		w, body := env.do(t, http.MethodPost, "/api/cart/add",
			gin.H{"userId": 1, "productId": 100, "quantity": 2})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, true, body["success"])
		assert.NotNil(t, body["item"])
	})

	t.Run("missing quantity fails binding", func(t *testing.T) {
		env := newHandlerTestEnv()

		w, body := env.do(t, http.MethodPost, "/api/cart/add", gin.H{"userId": 1, "productId": 100})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("out of stock maps to conflict", func(t *testing.T) {
		env := newHandlerTestEnv()
		soldOut := &domain.Product{ID: 100, Name: "EV Scooter", Quantity: 0, Status: domain.ProductOutOfStock}
		env.products.On("FindByID", mock.Anything, uint64(100)).Return(soldOut, nil)

		w, body := env.do(t, http.MethodPost, "/api/cart/add",
			gin.H{"userId": 1, "productId": 100, "quantity": 1})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, false, body["success"])
	})
}

func TestHandler_GetCart(t *testing.T) {
	env := newHandlerTestEnv()
	items := []domain.CartItem{{
		ID: 1, UserID: 1, ProductID: 100, Quantity: 2,
		Product: domain.Product{ID: 100, Price: decimal.NewFromInt(1000), Status: domain.ProductActive, Quantity: 5},
	}}
	env.carts.On("FindByUser", mock.Anything, uint64(1)).Return(items, nil)

	w, body := env.do(t, http.MethodGet, "/api/cart/1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2000", body["subtotal"])

	w, _ = env.do(t, http.MethodGet, "/api/cart/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateOrder(t *testing.T) {
	product := &domain.Product{ID: 100, Name: "EV Scooter", Price: decimal.NewFromInt(20_000_000),
		Quantity: 5, Status: domain.ProductActive}
	lines := []domain.CartItem{{ID: 1, UserID: 1, ProductID: 100, Quantity: 1, Product: *product}}

	t.Run("created", func(t *testing.T) {
		env := newHandlerTestEnv()
		env.users.On("FindByID", mock.Anything, uint64(1)).Return(&domain.User{ID: 1}, nil)
		env.addresses.On("FindByID", mock.Anything, uint64(10)).Return(&domain.Address{ID: 10, UserID: 1}, nil)
		env.carts.On("FindByUser", mock.Anything, uint64(1)).Return(lines, nil)
		env.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
		env.products.On("DecrementStock", mock.Anything, uint64(100), 1).Return(true, nil)
		env.carts.On("DeleteByUser", mock.Anything, uint64(1)).Return(nil)
		env.publisher.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()

		w, body := env.do(t, http.MethodPost, "/api/orders/create", gin.H{
			"userId": 1, "addressId": 10, "paymentMethod": "COD", "deliveryMethod": "STANDARD",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, true, body["success"])
		order := body["order"].(map[string]any)
		assert.Equal(t, "PENDING", order["orderStatus"])
		time.Sleep(100 * time.Millisecond)
	})

	t.Run("empty cart maps to bad request", func(t *testing.T) {
		env := newHandlerTestEnv()
		env.users.On("FindByID", mock.Anything, uint64(1)).Return(&domain.User{ID: 1}, nil)
		env.addresses.On("FindByID", mock.Anything, uint64(10)).Return(&domain.Address{ID: 10, UserID: 1}, nil)
		env.carts.On("FindByUser", mock.Anything, uint64(1)).Return([]domain.CartItem{}, nil)

		w, _ := env.do(t, http.MethodPost, "/api/orders/create", gin.H{
			"userId": 1, "addressId": 10, "paymentMethod": "COD", "deliveryMethod": "STANDARD",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown delivery method", func(t *testing.T) {
		env := newHandlerTestEnv()

		w, _ := env.do(t, http.MethodPost, "/api/orders/create", gin.H{
			"userId": 1, "addressId": 10, "paymentMethod": "COD", "deliveryMethod": "TELEPORT",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_GetOrder(t *testing.T) {
	env := newHandlerTestEnv()
	env.orders.On("FindByID", mock.Anything, uint64(7)).Return(nil, nil)

	w, body := env.do(t, http.MethodGet, "/api/orders/7", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestHandler_UpdateOrderStatus(t *testing.T) {
	t.Run("illegal transition maps to conflict", func(t *testing.T) {
		env := newHandlerTestEnv()
		order := &domain.Order{ID: 7, UserID: 1, OrderStatus: domain.OrderPending, PaymentStatus: domain.PaymentPending}
		env.orders.On("FindByID", mock.Anything, uint64(7)).Return(order, nil)

		w, _ := env.do(t, http.MethodPut, "/api/admin/orders/7/status?status=DELIVERED", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		env := newHandlerTestEnv()

		w, _ := env.do(t, http.MethodPut, "/api/admin/orders/7/status?status=VANISHED", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("legal transition", func(t *testing.T) {
		env := newHandlerTestEnv()
		order := &domain.Order{ID: 7, UserID: 1, OrderStatus: domain.OrderPending, PaymentStatus: domain.PaymentPending}
		env.orders.On("FindByID", mock.Anything, uint64(7)).Return(order, nil)
		env.orders.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
		env.publisher.On("Publish", mock.Anything, "order.status_changed", mock.Anything).Return(nil).Maybe()

		w, body := env.do(t, http.MethodPut, "/api/admin/orders/7/status?status=CONFIRMED", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		updated := body["order"].(map[string]any)
		assert.Equal(t, "CONFIRMED", updated["orderStatus"])
		time.Sleep(100 * time.Millisecond)
	})
}

func TestHandler_SearchOrdersSizeFallsBackToDefault(t *testing.T) {
	env := newHandlerTestEnv()
	env.orders.On("Search", mock.Anything, mock.Anything, repository.Page{Number: 0, Size: 20}).
		Return(&repository.OrderPage{}, nil)

	w, _ := env.do(t, http.MethodGet, "/api/admin/orders?size=0", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env.orders.AssertExpectations(t)
}

func TestHandler_ShippingStatus(t *testing.T) {
	env := newHandlerTestEnv()
	order := &domain.Order{
		ID: 7, OrderCode: "OD123", DeliveryMethod: domain.DeliveryFast,
		OrderStatus: domain.OrderShipping, TrackingNumber: "TN555",
	}
	env.orders.On("FindByCode", mock.Anything, "OD123").Return(order, nil)

	w, body := env.do(t, http.MethodGet, "/api/orders/code/OD123/shipping-status", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	shipping := body["shipping"].(map[string]any)
	assert.Equal(t, "TN555", shipping["trackingNumber"])
}

func TestHandler_CheckVoucher(t *testing.T) {
	env := newHandlerTestEnv()
	now := time.Now()
	voucher := &domain.Voucher{
		ID: 1, Code: "SALE10", DiscountType: domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10), Quantity: 100,
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
		Status: domain.VoucherActive,
	}
	env.vouchers.On("FindByCode", mock.Anything, "SALE10").Return(voucher, nil)

	w, body := env.do(t, http.MethodGet, "/api/vouchers/code/SALE10?amount=1000000", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["valid"])

	env.vouchers.On("FindByCode", mock.Anything, "NOPE").Return(nil, nil)
	w, _ = env.do(t, http.MethodGet, "/api/vouchers/code/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_OrderReportCSV(t *testing.T) {
	env := newHandlerTestEnv()
	env.orders.On("FindCreatedBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Order{
			{OrderStatus: domain.OrderDelivered, DeliveryMethod: domain.DeliveryStandard, Total: decimal.NewFromInt(1000)},
		}, nil)

	w, _ := env.do(t, http.MethodGet, "/api/orders/report?from=2025-01-01&to=2025-01-31&format=csv", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "total_revenue")
}
