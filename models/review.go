package models

import "time"

// Review is one user's rating of a product. A user reviews a product once and edits it afterwards.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index;uniqueIndex:idx_review_author" json:"product_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_review_author" json:"user_id"`
	Headline  string    `gorm:"not null" json:"headline"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
