package model

import (
	"time"
)

type ReferralStatus string

const (
	ReferralStatusClicked    ReferralStatus = "CLICKED"
	ReferralStatusRegistered ReferralStatus = "REGISTERED"
	ReferralStatusSubscribed ReferralStatus = "SUBSCRIBED"
	ReferralStatusRenewed    ReferralStatus = "RENEWED"
)

// 推荐状态只沿漏斗前进；点击是尽力记录，REGISTERED 可以没有前置 CLICKED
var referralTransitions = map[ReferralStatus][]ReferralStatus{
	ReferralStatusClicked:    {ReferralStatusRegistered},
	ReferralStatusRegistered: {ReferralStatusSubscribed},
	ReferralStatusSubscribed: {ReferralStatusRenewed},
	ReferralStatusRenewed:    {},
}

func (s ReferralStatus) CanTransitionTo(next ReferralStatus) bool {
	for _, allowed := range referralTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PromoterReferral 每个被推荐用户终身只有一行（referred_user_id 唯一约束）
type PromoterReferral struct {
	ID             int64          `gorm:"primaryKey" json:"id"`
	PromoterID     int64          `gorm:"not null;index" json:"promoter_id"`
	ReferredUserID int64          `gorm:"uniqueIndex;not null" json:"referred_user_id"`
	Status         ReferralStatus `gorm:"size:20;default:CLICKED;index" json:"status"`
	ShareLinkID    *int64         `gorm:"index" json:"share_link_id,omitempty"`
	ClickedAt      *time.Time     `json:"clicked_at,omitempty"`
	RegisteredAt   *time.Time     `json:"registered_at,omitempty"`
	SubscribedAt   *time.Time     `json:"subscribed_at,omitempty"`
	RenewedAt      *time.Time     `json:"renewed_at,omitempty"`
	RewardAmount   *float64       `gorm:"type:decimal(10,2)" json:"reward_amount,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (PromoterReferral) TableName() string {
	return "promoter_referrals"
}
