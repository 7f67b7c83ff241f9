package model

import "github.com/shopspring/decimal"

// 注文時点のコピー。カタログを後で編集しても変わらない。
type OrderItem struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID     string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ListingID   string          `gorm:"type:varchar(36);not null;index" json:"listing_id"`
	ListingName string          `gorm:"type:varchar(255);not null" json:"listing_name"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Position    int             `gorm:"not null" json:"-"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}
