package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 1ユーザーにつきカートは1つ。注文になった時点で削除される。
type Cart struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CustomerID string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"customer_id"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

// 同じ商品の明細を探す
func (c *Cart) FindItem(listingID string) (int, bool) {
	for i := range c.Items {
		if c.Items[i].ListingID == listingID {
			return i, true
		}
	}
	return -1, false
}

// 商品IDが一致する明細を全部外す
func (c *Cart) RemoveItem(listingID string) int {
	kept := c.Items[:0]
	removed := 0
	for _, it := range c.Items {
		if it.ListingID == listingID {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	c.Items = kept
	return removed
}

// スナップショット価格 × 数量の合計
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
