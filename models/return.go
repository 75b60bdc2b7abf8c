package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReturnRequest struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        string          `gorm:"not null;index" json:"user_id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	Color         string          `gorm:"not null" json:"color"`
	Size          string          `gorm:"not null" json:"size"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	RefundAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"refund_amount"`
	Reason        string          `gorm:"type:text;not null" json:"reason"`
	Photos        []string        `gorm:"serializer:json;type:text" json:"photos"`
	PickupAddress Address         `gorm:"embedded;embeddedPrefix:pickup_" json:"pickup_address"`
	Replace       bool            `gorm:"not null" json:"replace"`
	Status        ReturnStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (r ReturnRequest) Key() VariantKey {
	return VariantKey{ProductID: r.ProductID, Color: r.Color, Size: r.Size}
}
