package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// statusRank orders the forward progression of the lifecycle. Cancelled has
// no rank because it is only reachable through CancelOrder.
var statusRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// IsTerminal reports whether no further transitions are permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal forward
// transition. Terminal states cannot be left, and nothing moves backward.
// Transitions into cancelled are handled by CancelOrder, never here.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// PaymentMethod enumerates the supported payment options.
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit-card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash-on-delivery"
)

// ShippingAddress is the destination captured on the order. Stored embedded
// so the order document stays self-contained.
type ShippingAddress struct {
	FullName    string `gorm:"not null" json:"full_name" binding:"required"`
	Address     string `gorm:"not null" json:"address" binding:"required"`
	City        string `gorm:"not null" json:"city" binding:"required"`
	PostalCode  string `json:"postal_code"`
	Country     string `gorm:"not null" json:"country" binding:"required"`
	PhoneNumber string `gorm:"not null" json:"phone_number" binding:"required"`
}

// PaymentResult stores the gateway response once an order is paid.
type PaymentResult struct {
	PaymentID     string `json:"id,omitempty"`
	PaymentStatus string `json:"status,omitempty"`
	UpdateTime    string `json:"update_time,omitempty"`
	EmailAddress  string `json:"email_address,omitempty"`
}

// Order is a single purchase with its embedded line-item snapshots.
type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string    `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentResult   PaymentResult   `gorm:"embedded;embeddedPrefix:payment_" json:"payment_result,omitempty"`

	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax_price"`
	ShippingPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_price"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`

	Status         OrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	IsPaid         bool        `gorm:"not null;default:false" json:"is_paid"`
	IsDelivered    bool        `gorm:"not null;default:false" json:"is_delivered"`
	TrackingNumber string      `json:"tracking_number,omitempty"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// OrderItem is one line of an order. Price is the unit price snapshotted at
// order time and never tracks later product price changes.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

// CreateOrderRequest is the payload for placing a new order.
type CreateOrderRequest struct {
	Items           []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddress   `json:"shipping_address" binding:"required"`
	PaymentMethod   PaymentMethod     `json:"payment_method" binding:"required,oneof=credit-card paypal cash-on-delivery"`
}

// CreateOrderItem is a single requested product + quantity.
type CreateOrderItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// PayOrderRequest is the payload for marking an order as paid.
type PayOrderRequest struct {
	PaymentResult PaymentResult `json:"payment_result"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status         OrderStatus `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
	TrackingNumber string      `json:"tracking_number"`
}

// OrderEvent is published (best-effort) whenever the lifecycle mutates an order.
type OrderEvent struct {
	EventType   string    `json:"event_type"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	TotalPrice  string    `json:"total_price"`
	Timestamp   time.Time `json:"timestamp"`
}

// OrderStats is the admin dashboard aggregate.
type OrderStats struct {
	TotalOrders  int64                 `json:"total_orders"`
	TotalSales   decimal.Decimal       `json:"total_sales"`
	StatusCounts map[OrderStatus]int64 `json:"status_counts"`
}

// TotalItems returns the summed quantity across all line items.
func (o *Order) TotalItems() int {
	total := 0
	for _, item := range o.OrderItems {
		total += item.Quantity
	}
	return total
}
