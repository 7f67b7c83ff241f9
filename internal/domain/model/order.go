package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 対応している支払い方法は1つだけ
const PaymentMethodQRIS = "QRIS"

type Order struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CustomerID    string          `gorm:"type:varchar(36);not null;index" json:"customer_id"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	GameAccount   string          `gorm:"type:varchar(255);not null" json:"game_account"`
	Server        string          `gorm:"type:varchar(100);not null" json:"server"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}
