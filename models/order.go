package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryStatus string
type ReturnStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"

	ReturnNotRequested ReturnStatus = "not_requested"
	ReturnPending      ReturnStatus = "pending"
	ReturnApproved     ReturnStatus = "approved"
	ReturnRejected     ReturnStatus = "rejected"
)

func (s ReturnStatus) Valid() bool {
	switch s {
	case ReturnNotRequested, ReturnPending, ReturnApproved, ReturnRejected:
		return true
	}
	return false
}

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderRef        string          `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID          string          `gorm:"not null;index" json:"user_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	TotalDiscount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_discount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	DeliveryAddress Address         `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery_address"`
	Payment         PaymentDetails  `gorm:"embedded;embeddedPrefix:payment_" json:"payment_details"`
	DeliveryStatus  DeliveryStatus  `gorm:"type:varchar(20);not null;index" json:"delivery_status"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type PaymentDetails struct {
	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
	Mode           string `json:"mode"`
	Status         string `json:"status"`
}

// OrderItem is a snapshot of what was bought. Only ReturnStatus changes after checkout.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;uniqueIndex:idx_order_line" json:"order_id"`
	ProductID    uint            `gorm:"not null;uniqueIndex:idx_order_line" json:"product_id"`
	Color        string          `gorm:"not null;uniqueIndex:idx_order_line" json:"color"`
	Size         string          `gorm:"not null;uniqueIndex:idx_order_line" json:"size"`
	ProductName  string          `gorm:"not null" json:"product_name"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Discount     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount"` // percent
	Image        string          `json:"image"`
	ReturnStatus ReturnStatus    `gorm:"type:varchar(20);not null" json:"return_status"`
}

func (i OrderItem) Key() VariantKey {
	return VariantKey{ProductID: i.ProductID, Color: i.Color, Size: i.Size}
}

// PaidUnitPrice is the unit price after the snapshotted discount.
func (i OrderItem) PaidUnitPrice() decimal.Decimal {
	off := i.UnitPrice.Mul(i.Discount).Div(decimal.NewFromInt(100)).Round(2)
	return i.UnitPrice.Sub(off)
}

// Line returns the item matching key, or nil.
func (o *Order) Line(key VariantKey) *OrderItem {
	for i := range o.Items {
		if o.Items[i].Key() == key {
			return &o.Items[i]
		}
	}
	return nil
}
