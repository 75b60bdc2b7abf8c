package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex" json:"user_id"`                                  // Enforces ONE cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"` // Cascade delete items if cart is deleted
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is unique per (cart, product, color, size).
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_line" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_line" json:"product_id"`
	Color     string    `gorm:"not null;uniqueIndex:idx_cart_line" json:"color"`
	Size      string    `gorm:"not null;uniqueIndex:idx_cart_line" json:"size"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Image     string    `json:"image"`
	AddedAt   time.Time `json:"added_at"`
}

func (i CartItem) Key() VariantKey {
	return VariantKey{ProductID: i.ProductID, Color: i.Color, Size: i.Size}
}
