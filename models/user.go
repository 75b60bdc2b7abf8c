package models

import "time"

// User mirrors the identity provider's account for display joins.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Name      string    `json:"name"`
	Role      string    `gorm:"type:varchar(20);not null;default:customer" json:"role"`
	Address   Address   `gorm:"embedded" json:"address"` // Embeds address fields directly
	CreatedAt time.Time `json:"created_at"`
}

// Address is used for user, delivery and pickup addresses.
type Address struct {
	HouseNo string `json:"house_no" form:"house_no" binding:"required"`
	City    string `json:"city" form:"city" binding:"required"`
	State   string `json:"state" form:"state" binding:"required"`
	Pincode string `json:"pincode" form:"pincode" binding:"required"`
}

// Complete reports whether all four address fields are set.
func (a Address) Complete() bool {
	return a.HouseNo != "" && a.City != "" && a.State != "" && a.Pincode != ""
}
