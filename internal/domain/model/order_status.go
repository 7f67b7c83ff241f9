package model

import (
	"errors"
	"strings"
)

var ErrUnknownStatus = errors.New("unknown status")

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// 大文字小文字の違いは許す。それ以外は拒否。
func ParseOrderStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusCompleted,
		OrderStatusCancelled,
	} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrUnknownStatus
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range []PaymentStatus{PaymentStatusPending, PaymentStatusPaid} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrUnknownStatus
}
