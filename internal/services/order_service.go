package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"shop-service/internal/domain"
	rabbit "shop-service/internal/infra/rabbitmq"
	"shop-service/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound   = domain.E(domain.KindNotFound, "order not found")
	ErrAddressNotFound = domain.E(domain.KindNotFound, "address not found")
	ErrEmptyCart       = domain.E(domain.KindEmptyCart, "cart is empty")
)

type CreateOrderInput struct {
	UserID         uint64
	AddressID      uint64
	VoucherCode    string
	PaymentMethod  string
	DeliveryMethod domain.DeliveryMethod
	Notes          string
}

// ShippingStatusView is the public tracking view of an order.
type ShippingStatusView struct {
	OrderCode          string                `json:"orderCode"`
	DeliveryMethod     domain.DeliveryMethod `json:"deliveryMethod"`
	OrderStatus        domain.OrderStatus    `json:"orderStatus"`
	FastDeliveryStatus string                `json:"fastDeliveryStatus,omitempty"`
	TrackingNumber     string                `json:"trackingNumber,omitempty"`
	LastUpdated        time.Time             `json:"lastUpdated"`
}

type OrderReport struct {
	From                   time.Time       `json:"from"`
	To                     time.Time       `json:"to"`
	TotalOrders            int             `json:"totalOrders"`
	TotalRevenue           decimal.Decimal `json:"totalRevenue"`
	FastDeliveryOrders     int             `json:"fastDeliveryOrders"`
	StandardDeliveryOrders int             `json:"standardDeliveryOrders"`
}

// OrderService runs the order placement workflow and the status lifecycle.
// Order creation executes inside a single transaction: header, item
// snapshots, stock decrements, voucher redemption and the cart clear all
// commit or roll back together.
type OrderService struct {
	tx              repository.TxManager
	repos           *repository.Repositories
	carts           *CartService
	publisher       rabbit.PublisherInterface
	fastDeliveryFee decimal.Decimal
}

func NewOrderService(tx repository.TxManager, repos *repository.Repositories,
	carts *CartService, pub rabbit.PublisherInterface, fastDeliveryFee decimal.Decimal) *OrderService {
	return &OrderService{
		tx:              tx,
		repos:           repos,
		carts:           carts,
		publisher:       pub,
		fastDeliveryFee: fastDeliveryFee,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	now := time.Now()
	var order *domain.Order

	err := s.tx.Do(ctx, func(r *repository.Repositories) error {
		user, err := r.Users.FindByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		address, err := r.Addresses.FindByID(ctx, in.AddressID)
		if err != nil {
			return err
		}
		if address == nil {
			return ErrAddressNotFound
		}
		if address.UserID != in.UserID {
			return domain.E(domain.KindPermissionDenied, "address does not belong to this user")
		}

		lines, err := r.Carts.FindByUser(ctx, in.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		subtotal := domain.CartSubtotal(lines)

		// Evaluate first, redeem second: the conditional redemption may
		// lose a race for the last slot, in which case the code degrades
		// to zero discount like any other invalid voucher.
		discount := decimal.Zero
		var voucherID *uint64
		if in.VoucherCode != "" {
			voucher, err := r.Vouchers.FindByCode(ctx, in.VoucherCode)
			if err != nil {
				return err
			}
			if voucher != nil {
				discount = voucher.CalculateDiscount(subtotal, now)
				if discount.IsPositive() {
					redeemed, err := r.Vouchers.Redeem(ctx, voucher.ID)
					if err != nil {
						return err
					}
					if redeemed {
						voucherID = &voucher.ID
					} else {
						discount = decimal.Zero
					}
				}
			}
		}

		shippingFee := decimal.Zero
		if in.DeliveryMethod == domain.DeliveryFast {
			shippingFee = s.fastDeliveryFee
		}
		total := subtotal.Sub(discount).Add(shippingFee)

		items := make([]domain.OrderItem, 0, len(lines))
		for i := range lines {
			line := &lines[i]
			colorName := ""
			if line.Color != nil {
				colorName = line.Color.Name
			}
			price := line.Product.FinalPrice()
			items = append(items, domain.OrderItem{
				ProductID:    line.ProductID,
				ColorID:      line.ColorID,
				ProductName:  line.Product.Name,
				ProductImage: line.Product.Image,
				ColorName:    colorName,
				Price:        price,
				Quantity:     line.Quantity,
				Subtotal:     price.Mul(decimal.NewFromInt(int64(line.Quantity))),
			})
		}

		order = &domain.Order{
			OrderCode:      domain.NewOrderCode(now),
			UserID:         in.UserID,
			AddressID:      in.AddressID,
			VoucherID:      voucherID,
			Subtotal:       subtotal,
			Discount:       discount,
			ShippingFee:    shippingFee,
			Total:          total,
			PaymentMethod:  in.PaymentMethod,
			PaymentStatus:  domain.PaymentPending,
			OrderStatus:    domain.OrderPending,
			DeliveryMethod: in.DeliveryMethod,
			Notes:          in.Notes,
			Items:          items,
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}

		for i := range lines {
			line := &lines[i]
			ok, err := r.Products.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return domain.E(domain.KindOutOfStock,
					fmt.Sprintf("insufficient stock for %q", line.Product.Name))
			}
		}

		return r.Carts.DeleteByUser(ctx, in.UserID)
	})
	if err != nil {
		return nil, err
	}

	go s.publishOrderCreated(context.Background(), order)
	return order, nil
}

// RepurchaseOrder puts the items of a prior order back into the cart,
// silently skipping products that are no longer available, and returns the
// original order unchanged.
func (s *OrderService) RepurchaseOrder(ctx context.Context, userID, orderID uint64) (*domain.Order, error) {
	order, err := s.getOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		product, err := s.repos.Products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.InStock() {
			continue
		}
		if _, err := s.carts.AddItem(ctx, userID, item.ProductID, item.ColorID, item.Quantity); err != nil {
			log.Printf("repurchase: skipping product %d: %v", item.ProductID, err)
		}
	}

	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := s.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) GetOrderByCode(ctx context.Context, code string) (*domain.Order, error) {
	o, err := s.repos.Orders.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID uint64, page repository.Page) (*repository.OrderPage, error) {
	return s.repos.Orders.FindByUser(ctx, userID, page)
}

func (s *OrderService) SearchOrders(ctx context.Context, filter repository.OrderSearchFilter, page repository.Page) (*repository.OrderPage, error) {
	return s.repos.Orders.Search(ctx, filter, page)
}

func (s *OrderService) CountOrdersByStatus(ctx context.Context, status *domain.OrderStatus) (int64, error) {
	return s.repos.Orders.CountByStatus(ctx, status)
}

// UpdateOrderStatus applies one step of the order lifecycle; transitions
// outside the table are rejected.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus == status {
		return order, nil
	}
	if !order.OrderStatus.CanTransitionTo(status) {
		return nil, domain.E(domain.KindConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.OrderStatus, status))
	}

	order.OrderStatus = status
	if err := s.repos.Orders.Save(ctx, order); err != nil {
		return nil, err
	}

	go s.publishStatusChanged(context.Background(), order)
	return order, nil
}

// UpdatePaymentStatus applies a payment transition. Marking an order PAID
// confirms it when it is still pending; an order already past CONFIRMED
// keeps its progress.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uint64, status domain.PaymentStatus) (*domain.Order, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == status {
		return order, nil
	}
	if !order.PaymentStatus.CanTransitionTo(status) {
		return nil, domain.E(domain.KindConflict,
			fmt.Sprintf("cannot move payment from %s to %s", order.PaymentStatus, status))
	}

	order.PaymentStatus = status
	if status == domain.PaymentPaid && order.OrderStatus == domain.OrderPending {
		order.OrderStatus = domain.OrderConfirmed
	}
	if err := s.repos.Orders.Save(ctx, order); err != nil {
		return nil, err
	}

	go s.publishStatusChanged(context.Background(), order)
	return order, nil
}

// UpdateFastDelivery sets the courier sub-status and tracking number; only
// valid for FAST orders.
func (s *OrderService) UpdateFastDelivery(ctx context.Context, orderID uint64, status, trackingNumber string) (*domain.Order, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DeliveryMethod != domain.DeliveryFast {
		return nil, domain.E(domain.KindValidation, "order is not a fast delivery")
	}

	order.FastDeliveryStatus = status
	if trackingNumber != "" {
		order.TrackingNumber = trackingNumber
	}
	if err := s.repos.Orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ShippingStatus(ctx context.Context, code string) (*ShippingStatusView, error) {
	order, err := s.GetOrderByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return &ShippingStatusView{
		OrderCode:          order.OrderCode,
		DeliveryMethod:     order.DeliveryMethod,
		OrderStatus:        order.OrderStatus,
		FastDeliveryStatus: order.FastDeliveryStatus,
		TrackingNumber:     order.TrackingNumber,
		LastUpdated:        order.UpdatedAt,
	}, nil
}

// BuildReport aggregates orders created inside [from, to]. Revenue counts
// delivered orders only.
func (s *OrderService) BuildReport(ctx context.Context, from, to time.Time) (*OrderReport, error) {
	orders, err := s.repos.Orders.FindCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &OrderReport{From: from, To: to, TotalOrders: len(orders), TotalRevenue: decimal.Zero}
	for i := range orders {
		o := &orders[i]
		if o.OrderStatus == domain.OrderDelivered {
			report.TotalRevenue = report.TotalRevenue.Add(o.Total)
		}
		if o.DeliveryMethod == domain.DeliveryFast {
			report.FastDeliveryOrders++
		} else {
			report.StandardDeliveryOrders++
		}
	}
	return report, nil
}

func (s *OrderService) BuildReportCSV(ctx context.Context, from, to time.Time) (string, error) {
	report, err := s.BuildReport(ctx, from, to)
	if err != nil {
		return "", err
	}

	var csv strings.Builder
	csv.WriteString("from,to,total_orders,total_revenue,fast_delivery,standard_delivery\n")
	fmt.Fprintf(&csv, "%s,%s,%d,%s,%d,%d\n",
		report.From.Format("2006-01-02"),
		report.To.Format("2006-01-02"),
		report.TotalOrders,
		report.TotalRevenue.String(),
		report.FastDeliveryOrders,
		report.StandardDeliveryOrders,
	)
	return csv.String(), nil
}

func (s *OrderService) getOwnedOrder(ctx context.Context, userID, orderID uint64) (*domain.Order, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.E(domain.KindPermissionDenied, "order does not belong to this user")
	}
	return order, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	evt := domain.NewOrderCreatedEvent(order)
	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.Printf("failed to publish order.created for %s: %v", order.OrderCode, err)
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *domain.Order) {
	evt := domain.NewOrderStatusChangedEvent(order, time.Now())
	if err := s.publisher.Publish(ctx, "order.status_changed", evt); err != nil {
		log.Printf("failed to publish order.status_changed for %s: %v", order.OrderCode, err)
	}
}
