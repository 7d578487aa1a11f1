package model

import (
	"time"
)

type PromoterType string

const (
	PromoterTypeInternal PromoterType = "INTERNAL"
	PromoterTypeExternal PromoterType = "EXTERNAL"
)

type PromoterStatus string

const (
	PromoterStatusPending   PromoterStatus = "PENDING"
	PromoterStatusApproved  PromoterStatus = "APPROVED"
	PromoterStatusSuspended PromoterStatus = "SUSPENDED"
)

type Promoter struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Phone        string         `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Email        *string        `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	LineID       *string        `gorm:"column:line_id;size:100" json:"line_id,omitempty"`
	Organization string         `gorm:"size:200" json:"organization,omitempty"`
	PasswordHash *string        `gorm:"size:255" json:"-"`
	Type         PromoterType   `gorm:"size:20;default:EXTERNAL" json:"type"`
	Status       PromoterStatus `gorm:"size:20;default:PENDING;index" json:"status"`
	IsActive     bool           `json:"is_active"` // 创建路径显式置 true；列默认值会吞掉 false
	ReferralCode string         `gorm:"size:20;uniqueIndex;not null" json:"referral_code"` // 领取后不再变更
	UserID       *int64         `gorm:"uniqueIndex" json:"user_id,omitempty"`              // 关联的平台账号，自荐拦截用
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	RewardConfig *RewardConfig `gorm:"foreignKey:PromoterID" json:"reward_config,omitempty"`
	TrialConfig  *TrialConfig  `gorm:"foreignKey:PromoterID" json:"trial_config,omitempty"`
}

func (Promoter) TableName() string {
	return "promoters"
}

// CanOperate 审核通过且启用中的推广员才能发码、收推荐、登录后台
func (p *Promoter) CanOperate() bool {
	return p.Status == PromoterStatusApproved && p.IsActive
}

type RewardType string

const (
	RewardTypeNone                  RewardType = "NONE"
	RewardTypeFixedAmount           RewardType = "FIXED_AMOUNT"
	RewardTypePercentage            RewardType = "PERCENTAGE"
	RewardTypeSubscriptionExtension RewardType = "SUBSCRIPTION_EXTENSION"
)

type RewardConfig struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	PromoterID         int64      `gorm:"uniqueIndex;not null" json:"promoter_id"`
	RewardType         RewardType `gorm:"size:30;default:NONE" json:"reward_type"`
	RewardValue        float64    `gorm:"type:decimal(10,2);default:0" json:"reward_value"` // 金额 / 百分比 / 延长天数，按类型解释
	MaxRewardsPerMonth *int       `json:"max_rewards_per_month,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (RewardConfig) TableName() string {
	return "promoter_reward_configs"
}

type TrialConfig struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	PromoterID        int64     `gorm:"uniqueIndex;not null" json:"promoter_id"`
	CanIssueTrial     bool      `gorm:"default:false" json:"can_issue_trial"`
	MinTrialDays      int       `gorm:"default:3" json:"min_trial_days"`
	MaxTrialDays      int       `gorm:"default:30" json:"max_trial_days"`
	DefaultTrialDays  int       `gorm:"default:7" json:"default_trial_days"`
	MonthlyIssueLimit *int      `json:"monthly_issue_limit,omitempty"` // 自然月重置
	TotalIssueLimit   *int      `json:"total_issue_limit,omitempty"`   // 终身上限
	TrialPlanID       *string   `gorm:"size:50" json:"trial_plan_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (TrialConfig) TableName() string {
	return "promoter_trial_configs"
}
