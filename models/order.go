package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusPending is the only fulfilment status the service assigns itself.
// Staff may move an order to any other status string.
const StatusPending = "PENDING"

// PaymentStatus tracks the payment sub-state of an order
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING_PAYMENT"
	PaymentInitiated PaymentStatus = "PAYMENT_INITIATED"
	PaymentFailed    PaymentStatus = "PAYMENT_FAILED"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
)

type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "PICKUP"
	DeliveryDelivery DeliveryType = "DELIVERY"
)

type Order struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	RestaurantID         uint            `json:"restaurantId" gorm:"not null;index"`
	BranchID             uint            `json:"branchId" gorm:"not null;index"`
	Branch               *Branch         `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	UserID               uint            `json:"userId" gorm:"not null;index"`
	CustomerName         string          `json:"customerName"`
	Status               string          `json:"status" gorm:"not null;default:'PENDING'"`
	PaymentStatus        PaymentStatus   `json:"paymentStatus" gorm:"not null;default:'PENDING_PAYMENT'"`
	PaymentIntentID      *string         `json:"paymentIntentId" gorm:"uniqueIndex"`
	DeliveryType         DeliveryType    `json:"deliveryType" gorm:"not null;default:'PICKUP'"`
	Subtotal             decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2)"`
	DeliveryCharge       decimal.Decimal `json:"deliveryCharge" gorm:"type:decimal(10,2)"`
	DeliveryDiscount     decimal.Decimal `json:"deliveryDiscount" gorm:"type:decimal(10,2)"`
	OrderDiscount        decimal.Decimal `json:"orderDiscount" gorm:"type:decimal(10,2)"`
	PlatformFee          decimal.Decimal `json:"platformFee" gorm:"type:decimal(10,2)"`
	PaymentProcessingFee decimal.Decimal `json:"paymentProcessingFee" gorm:"type:decimal(10,2)"`
	Total                decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	OrderItems           []OrderItem     `json:"orderItems,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt            time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"orderId" gorm:"not null;index"`
	MenuItemID uint      `json:"menuItemId" gorm:"not null"`
	MenuItem   *MenuItem `json:"menuItem,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Addons     []Addon   `json:"addons" gorm:"many2many:order_item_addons"`
}

// OrderStatusHistory tracks every fulfilment status change
type OrderStatusHistory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"orderId" gorm:"not null;index"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus" gorm:"not null"`
	ChangedBy  uint      `json:"changedBy"` // user ID who triggered the change
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"createdAt"`
}
