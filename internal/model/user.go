package model

import (
	"time"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	Phone        *string   `gorm:"size:20;uniqueIndex" json:"phone,omitempty"`
	ReferralCode *string   `gorm:"size:20;uniqueIndex" json:"referral_code,omitempty"` // 用户间推荐码（与推广员推荐码独立）
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
