package model

import (
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

type Subscription struct {
	ID            int64              `gorm:"primaryKey" json:"id"`
	UserID        int64              `gorm:"not null;index" json:"user_id"`
	PlanID        string             `gorm:"size:50;not null" json:"plan_id"`
	Amount        float64            `gorm:"type:decimal(10,2)" json:"amount,omitempty"`
	Status        SubscriptionStatus `gorm:"size:20;default:trial;index" json:"status"`
	TrialInviteID *int64             `gorm:"index" json:"trial_invite_id,omitempty"`
	StartedAt     time.Time          `gorm:"not null" json:"started_at"`
	ExpiresAt     time.Time          `gorm:"not null;index" json:"expires_at"`
	TransactionID string             `gorm:"size:100" json:"transaction_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
