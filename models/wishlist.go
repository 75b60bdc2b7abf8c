package models

import "time"

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_wishlist_line" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_line" json:"product_id"`
	Color     string    `gorm:"not null;uniqueIndex:idx_wishlist_line" json:"color"`
	Size      string    `gorm:"not null;uniqueIndex:idx_wishlist_line" json:"size"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}
