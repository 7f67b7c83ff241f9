package model

import "time"

//在庫調整の履歴

type InventoryAdjustment struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ListingID   string    `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	AdminUserID string    `gorm:"type:varchar(36);not null;index" json:"admin_user_id"`
	Delta       int64     `gorm:"not null" json:"delta"`
	Reason      string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
