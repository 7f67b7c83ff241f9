package model

import (
	"errors"
	"time"
)

// 在庫更新、注文ステータス更新など。
type AuditAction string

const (
	//在庫を更新した操作。
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionUpdateUserRole    AuditAction = "UPDATE_USER_ROLE"
	AuditActionDeleteUser        AuditAction = "DELETE_USER"
)

var ErrUnknownAuditValue = errors.New("unknown audit value")

func ParseAuditAction(s string) (AuditAction, error) {
	for _, a := range []AuditAction{
		AuditActionUpdateStock,
		AuditActionUpdateOrderStatus,
		AuditActionUpdateUserRole,
		AuditActionDeleteUser,
	} {
		if s == string(a) {
			return a, nil
		}
	}
	return "", ErrUnknownAuditValue
}

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceListing AuditResourceType = "listing"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

func ParseAuditResourceType(s string) (AuditResourceType, error) {
	for _, r := range []AuditResourceType{AuditResourceListing, AuditResourceOrder, AuditResourceUser} {
		if s == string(r) {
			return r, nil
		}
	}
	return "", ErrUnknownAuditValue
}

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	//操作した管理者のID。
	ActorUserID string `gorm:"type:varchar(36);not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   string            `gorm:"type:varchar(36);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
