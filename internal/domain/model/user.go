package model

import "time"

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleAdmin    Role = "Admin"
)

type User struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	FullName     string `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PhoneNumber  string `gorm:"type:varchar(30)" json:"phone_number"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'Customer'" json:"role"`
	// JWT の tv と突き合わせる。ロール変更で +1
	TokenVersion int       `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
