package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細
// 追加時点の価格を必ず保存。
type CartItem struct {
	ID                string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CartID            string          `gorm:"type:varchar(36);not null;index" json:"cart_id"`
	ListingID         string          `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	ListingName       string          `gorm:"type:varchar(255);not null" json:"listing_name"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(14,2);not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	Position          int             `gorm:"not null" json:"-"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
}

func (it CartItem) Subtotal() decimal.Decimal {
	return it.UnitPriceSnapshot.Mul(decimal.NewFromInt(it.Quantity))
}
