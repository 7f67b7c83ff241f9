package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// トップアップ商品（カタログの1件）
type Listing struct {
	ID       string `gorm:"type:varchar(36);primaryKey" json:"id"`
	GameName string `gorm:"type:varchar(255);not null" json:"game_name"`
	//MLBB / PUBG / Free Fire など
	GameType string `gorm:"type:varchar(100);not null;index" json:"game_type"`
	Server   string `gorm:"type:varchar(100);not null" json:"server"`
	//Diamond / UC / Robux など
	Category string `gorm:"type:varchar(100);not null;index" json:"category"`
	//ゲーム内通貨の量
	Amount      int64           `gorm:"not null" json:"amount"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Stock       int64           `gorm:"not null" json:"stock"`
	Description string          `gorm:"type:text" json:"description"`
	ImageURL    string          `gorm:"type:text" json:"image_url"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// カートや注文に残す表示名
func (l Listing) DisplayName() string {
	return fmt.Sprintf("%s - %d %s", l.GameName, l.Amount, l.Category)
}
