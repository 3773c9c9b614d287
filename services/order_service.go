package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	aws_pkg "order-service/aws"
	"order-service/kafka"
	"order-service/models"
	"order-service/pricing"
	"order-service/repository"
	"order-service/sender"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// OrderListResponse is a page of orders plus pagination metadata.
type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// OrderService defines the interface for the order lifecycle.
type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, userEmail string, req *models.CreateOrderRequest) (*models.Order, *ServiceError)
	MarkAsPaid(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool, req *models.PayOrderRequest) (*models.Order, *ServiceError)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateStatusRequest) (*models.Order, *ServiceError)
	CancelOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *ServiceError)
	GetOrderByID(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *ServiceError)
	GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResponse, *ServiceError)
	GetAllOrders(ctx context.Context, page, limit int) (*OrderListResponse, *ServiceError)
	GetOrderStats(ctx context.Context) (*models.OrderStats, *ServiceError)
}

// orderServiceImpl implements OrderService.
type orderServiceImpl struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	calc        *pricing.Calculator
	producer    kafka.ProducerAPI
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	emailSender sender.EmailSender
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService. Producer, SNS client and
// email sender may be nil; dispatch is skipped for the ones not configured.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	calc *pricing.Calculator,
	producer kafka.ProducerAPI,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	emailSender sender.EmailSender,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		calc:        calc,
		producer:    producer,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		emailSender: emailSender,
		logger:      logger,
	}
}

// CreateOrder validates the requested items against the live catalog,
// snapshots unit prices, computes totals, persists the order in pending
// state and decrements stock per item. The insert and the decrements form
// one logical unit: if any decrement fails, the already-applied decrements
// are reverted and the order is deleted.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID uuid.UUID, userEmail string, req *models.CreateOrderRequest) (*models.Order, *ServiceError) {
	if len(req.Items) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "At least one item is required"}
	}

	// Resolve every product up front: existence, active flag, stock
	// precheck and the price snapshot.
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, reqItem := range req.Items {
		product, err := s.productRepo.FindActiveByID(ctx, reqItem.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &ServiceError{StatusCode: 404, Message: fmt.Sprintf("Product %s not found", reqItem.ProductID)}
			}
			s.logger.Error("Failed to look up product", zap.String("product_id", reqItem.ProductID.String()), zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "Failed to create order"}
		}
		if product.CountInStock < reqItem.Quantity {
			return nil, &ServiceError{
				StatusCode: 409,
				Message:    fmt.Sprintf("Insufficient stock for product %s: available=%d requested=%d", product.Name, product.CountInStock, reqItem.Quantity),
			}
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  reqItem.Quantity,
		})
	}

	totals, err := s.calc.Compute(items)
	if err != nil {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			return nil, &ServiceError{StatusCode: 400, Message: verr.Message}
		}
		s.logger.Error("Failed to price order", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create order"}
	}

	order := &models.Order{
		OrderNumber:     newOrderNumber(),
		UserID:          userID,
		OrderItems:      items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        totals.Subtotal,
		TaxPrice:        totals.TaxPrice,
		ShippingPrice:   totals.ShippingPrice,
		TotalPrice:      totals.TotalPrice,
		Status:          models.StatusPending,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to persist order", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create order"}
	}

	// Decrement stock per item. The conditional update is the authoritative
	// check; the precheck above only exists for a friendly early error.
	decremented := make([]models.OrderItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.rollbackCreate(ctx, order, decremented)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, &ServiceError{
					StatusCode: 409,
					Message:    fmt.Sprintf("Insufficient stock for product %s", item.Name),
				}
			}
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &ServiceError{StatusCode: 404, Message: fmt.Sprintf("Product %s not found", item.ProductID)}
			}
			s.logger.Error("Failed to decrement stock", zap.String("product_id", item.ProductID.String()), zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "Failed to create order"}
		}
		decremented = append(decremented, item)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.Int("items", len(order.OrderItems)),
		zap.String("total", order.TotalPrice.StringFixed(2)),
	)

	s.dispatchNotifications(order, userEmail, "order.created")

	return order, nil
}

// rollbackCreate undoes a partially-applied creation: every stock decrement
// already applied is re-incremented and the pending order row is removed.
func (s *orderServiceImpl) rollbackCreate(ctx context.Context, order *models.Order, decremented []models.OrderItem) {
	for _, item := range decremented {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to revert stock decrement",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
	if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
		s.logger.Error("Failed to delete order after stock failure",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

// MarkAsPaid records a successful payment and moves a pending order to
// processing. Calling it again on an already-paid order is a no-op.
func (s *orderServiceImpl) MarkAsPaid(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool, req *models.PayOrderRequest) (*models.Order, *ServiceError) {
	order, svcErr := s.loadOwnedOrder(ctx, orderID, userID, isAdmin)
	if svcErr != nil {
		return nil, svcErr
	}

	if order.Status == models.StatusCancelled || order.Status == models.StatusDelivered {
		return nil, &ServiceError{StatusCode: 400, Message: fmt.Sprintf("Cannot pay a %s order", order.Status)}
	}

	if order.IsPaid {
		return order, nil
	}

	// Cash-on-delivery orders carry no gateway result; everything else must.
	if order.PaymentMethod != models.PaymentCashOnDelivery {
		if req == nil || req.PaymentResult.PaymentID == "" {
			return nil, &ServiceError{StatusCode: 400, Message: "Payment result is required"}
		}
		order.PaymentResult = req.PaymentResult
	}

	now := time.Now().UTC()
	order.IsPaid = true
	order.PaidAt = &now
	if order.Status == models.StatusPending {
		order.Status = models.StatusProcessing
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error("Failed to mark order as paid", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update order"}
	}

	s.logger.Info("Order paid",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_method", string(order.PaymentMethod)),
	)
	s.publishEvent(order, "order.paid")

	return order, nil
}

// UpdateStatus advances an order along the forward lifecycle. Cancellation
// has its own operation and is rejected here.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateStatusRequest) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order"}
	}

	if req.Status == models.StatusCancelled {
		return nil, &ServiceError{StatusCode: 400, Message: "Use the cancel endpoint to cancel an order"}
	}
	if !order.Status.CanTransitionTo(req.Status) {
		return nil, &ServiceError{
			StatusCode: 400,
			Message:    fmt.Sprintf("Invalid status transition %s -> %s", order.Status, req.Status),
		}
	}

	now := time.Now().UTC()
	switch req.Status {
	case models.StatusShipped:
		if req.TrackingNumber == "" {
			return nil, &ServiceError{StatusCode: 400, Message: "Tracking number is required for shipped orders"}
		}
		order.TrackingNumber = req.TrackingNumber
		order.ShippedAt = &now
	case models.StatusDelivered:
		order.IsDelivered = true
		order.DeliveredAt = &now
	}
	order.Status = req.Status

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error("Failed to update order status", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update order"}
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)

	return order, nil
}

// CancelOrder moves a non-delivered order to the cancelled terminal state
// and restores the stock it had decremented. Products deleted since the
// order was placed are skipped; their units are simply gone.
func (s *orderServiceImpl) CancelOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *ServiceError) {
	order, svcErr := s.loadOwnedOrder(ctx, orderID, userID, isAdmin)
	if svcErr != nil {
		return nil, svcErr
	}

	if order.IsDelivered || order.Status == models.StatusDelivered {
		return nil, &ServiceError{StatusCode: 400, Message: "Cannot cancel a delivered order"}
	}
	if order.Status == models.StatusCancelled {
		return order, nil
	}

	now := time.Now().UTC()
	order.Status = models.StatusCancelled
	order.CancelledAt = &now

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error("Failed to cancel order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to cancel order"}
	}

	for _, item := range order.OrderItems {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("Skipping stock restore for missing product",
					zap.String("order_id", order.ID.String()),
					zap.String("product_id", item.ProductID.String()),
				)
				continue
			}
			s.logger.Error("Failed to restore stock on cancellation",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Order cancelled", zap.String("order_id", order.ID.String()))
	s.publishEvent(order, "order.cancelled")

	return order, nil
}

// GetOrderByID retrieves a specific order, enforcing ownership.
func (s *orderServiceImpl) GetOrderByID(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *ServiceError) {
	return s.loadOwnedOrder(ctx, orderID, userID, isAdmin)
}

// GetUserOrders retrieves paginated orders for a specific user.
func (s *orderServiceImpl) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}
	return newOrderListResponse(orders, total, page, limit), nil
}

// GetAllOrders retrieves paginated orders for all users (admin only).
func (s *orderServiceImpl) GetAllOrders(ctx context.Context, page, limit int) (*OrderListResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}
	return newOrderListResponse(orders, total, page, limit), nil
}

// GetOrderStats returns the dashboard aggregate (admin only).
func (s *orderServiceImpl) GetOrderStats(ctx context.Context) (*models.OrderStats, *ServiceError) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		s.logger.Error("Failed to aggregate order stats", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order stats"}
	}
	return stats, nil
}

// loadOwnedOrder fetches an order and verifies the caller owns it or is an
// admin.
func (s *orderServiceImpl) loadOwnedOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order"}
	}
	if order.UserID != userID && !isAdmin {
		return nil, &ServiceError{StatusCode: 403, Message: "Not authorized to access this order"}
	}
	return order, nil
}

// dispatchNotifications fires the confirmation email and lifecycle event in
// the background. Failures are logged and never surfaced to the caller.
func (s *orderServiceImpl) dispatchNotifications(order *models.Order, userEmail, eventType string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if s.emailSender != nil && userEmail != "" {
			subject := sender.OrderConfirmationSubject(order)
			body := sender.OrderConfirmationBody(order)
			if _, err := s.emailSender.SendEmail(ctx, userEmail, subject, body); err != nil {
				s.logger.Warn("Order confirmation email failed",
					zap.String("order_id", order.ID.String()), zap.Error(err))
			}
		}

		s.publishEventCtx(ctx, order, eventType)
	}()
}

// publishEvent emits a lifecycle event on a short detached context.
func (s *orderServiceImpl) publishEvent(order *models.Order, eventType string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.publishEventCtx(ctx, order, eventType)
}

func (s *orderServiceImpl) publishEventCtx(ctx context.Context, order *models.Order, eventType string) {
	evt := models.OrderEvent{
		EventType:   eventType,
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID.String(),
		Status:      string(order.Status),
		TotalPrice:  order.TotalPrice.StringFixed(2),
		Timestamp:   time.Now().UTC(),
	}

	if s.producer != nil {
		if err := s.producer.PublishOrderEvent(ctx, evt); err != nil {
			s.logger.Warn("Kafka publish failed", zap.String("event", eventType), zap.Error(err))
		}
	}

	if s.snsClient != nil && s.snsTopicArn != "" {
		data, err := json.Marshal(evt)
		if err != nil {
			s.logger.Warn("Failed to marshal order event", zap.Error(err))
			return
		}
		if err := s.snsClient.Publish(ctx, s.snsTopicArn, data); err != nil {
			s.logger.Warn("SNS publish failed", zap.String("event", eventType), zap.Error(err))
		}
	}
}

// newOrderNumber builds a human-readable unique order reference.
func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s",
		time.Now().UTC().Format("20060102"),
		uuid.NewString()[:8],
	)
}

func newOrderListResponse(orders []models.Order, total int64, page, limit int) *OrderListResponse {
	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
