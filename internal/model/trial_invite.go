package model

import (
	"time"
)

type TrialInviteStatus string

const (
	TrialInviteStatusPending   TrialInviteStatus = "PENDING"
	TrialInviteStatusSent      TrialInviteStatus = "SENT"
	TrialInviteStatusActivated TrialInviteStatus = "ACTIVATED"
	TrialInviteStatusActive    TrialInviteStatus = "ACTIVE"
	TrialInviteStatusExpired   TrialInviteStatus = "EXPIRED"
	TrialInviteStatusConverted TrialInviteStatus = "CONVERTED"
	TrialInviteStatusCancelled TrialInviteStatus = "CANCELLED"
)

var trialInviteTransitions = map[TrialInviteStatus][]TrialInviteStatus{
	TrialInviteStatusPending:   {TrialInviteStatusSent, TrialInviteStatusActivated, TrialInviteStatusCancelled},
	TrialInviteStatusSent:      {TrialInviteStatusActivated, TrialInviteStatusCancelled},
	TrialInviteStatusActivated: {TrialInviteStatusActive, TrialInviteStatusConverted, TrialInviteStatusExpired, TrialInviteStatusCancelled},
	TrialInviteStatusActive:    {TrialInviteStatusConverted, TrialInviteStatusExpired, TrialInviteStatusCancelled},
	TrialInviteStatusExpired:   {},
	TrialInviteStatusConverted: {},
	TrialInviteStatusCancelled: {},
}

func (s TrialInviteStatus) CanTransitionTo(next TrialInviteStatus) bool {
	for _, allowed := range trialInviteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Redeemable 只有未被使用的邀请可以兑换
func (s TrialInviteStatus) Redeemable() bool {
	return s == TrialInviteStatusPending || s == TrialInviteStatusSent
}

// Terminal 终态不再接受任何变更
func (s TrialInviteStatus) Terminal() bool {
	switch s {
	case TrialInviteStatusExpired, TrialInviteStatusConverted, TrialInviteStatusCancelled:
		return true
	}
	return false
}

type InviteMethod string

const (
	InviteMethodLink   InviteMethod = "LINK"
	InviteMethodCode   InviteMethod = "CODE"
	InviteMethodDirect InviteMethod = "DIRECT"
)

func (m InviteMethod) Valid() bool {
	switch m {
	case InviteMethodLink, InviteMethodCode, InviteMethodDirect:
		return true
	}
	return false
}

type TrialInvite struct {
	ID              int64             `gorm:"primaryKey" json:"id"`
	Code            string            `gorm:"size:20;uniqueIndex;not null" json:"code"`
	PromoterID      int64             `gorm:"not null;index" json:"promoter_id"`
	TrialDays       int               `gorm:"not null" json:"trial_days"` // 创建时固定，此后只有管理员延期改过期时间
	InviteMethod    InviteMethod      `gorm:"size:10;default:CODE" json:"invite_method"`
	Channel         *ShareChannel     `gorm:"size:20" json:"channel,omitempty"`
	InviteeName     *string           `gorm:"size:100" json:"invitee_name,omitempty"`
	InviteePhone    *string           `gorm:"size:20" json:"invitee_phone,omitempty"`
	InviteeEmail    *string           `gorm:"size:100" json:"invitee_email,omitempty"`
	Status          TrialInviteStatus `gorm:"size:20;default:PENDING;index" json:"status"`
	LinkClickCount  int64             `gorm:"default:0" json:"link_click_count"`
	LastClickedAt   *time.Time        `json:"last_clicked_at,omitempty"`
	ActivatedUserID *int64            `gorm:"index" json:"activated_user_id,omitempty"`
	ActivatedAt     *time.Time        `json:"activated_at,omitempty"`
	ExpiresAt       *time.Time        `gorm:"index" json:"expires_at,omitempty"`
	PlanID          *string           `gorm:"size:50" json:"plan_id,omitempty"`
	CreatedAt       time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (TrialInvite) TableName() string {
	return "trial_invites"
}
