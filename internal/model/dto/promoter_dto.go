package dto

// RegisterPromoterRequest 推广员自助注册
type RegisterPromoterRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Phone        string  `json:"phone" binding:"required,max=20"`
	Password     string  `json:"password" binding:"required,min=8,max=72"`
	Email        *string `json:"email,omitempty" binding:"omitempty,email"`
	LineID       *string `json:"line_id,omitempty" binding:"omitempty,max=100"`
	Organization string  `json:"organization,omitempty" binding:"max=200"`
}

// AdminCreatePromoterRequest 管理员直接创建，可指定状态与配置
type AdminCreatePromoterRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Phone        string  `json:"phone" binding:"required,max=20"`
	Password     string  `json:"password" binding:"required,min=8,max=72"`
	Email        *string `json:"email,omitempty" binding:"omitempty,email"`
	LineID       *string `json:"line_id,omitempty"`
	Organization string  `json:"organization,omitempty"`
	Type         string  `json:"type,omitempty"`
	Status       string  `json:"status,omitempty"`
	UserID       *int64  `json:"user_id,omitempty"`

	RewardConfig *RewardConfigRequest `json:"reward_config,omitempty"`
	TrialConfig  *TrialConfigRequest  `json:"trial_config,omitempty"`
}

type RewardConfigRequest struct {
	RewardType         string  `json:"reward_type" binding:"required"`
	RewardValue        float64 `json:"reward_value"`
	MaxRewardsPerMonth *int    `json:"max_rewards_per_month,omitempty"`
}

type TrialConfigRequest struct {
	CanIssueTrial     bool    `json:"can_issue_trial"`
	MinTrialDays      int     `json:"min_trial_days"`
	MaxTrialDays      int     `json:"max_trial_days"`
	DefaultTrialDays  int     `json:"default_trial_days"`
	MonthlyIssueLimit *int    `json:"monthly_issue_limit,omitempty"`
	TotalIssueLimit   *int    `json:"total_issue_limit,omitempty"`
	TrialPlanID       *string `json:"trial_plan_id,omitempty"`
}

// UpdatePromoterProfileRequest 自助资料修改，只开放白名单字段
// referral_code / type / status 永远不在此列
type UpdatePromoterProfileRequest struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Phone        *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Email        *string `json:"email,omitempty" binding:"omitempty,email"`
	LineID       *string `json:"line_id,omitempty" binding:"omitempty,max=100"`
	Organization *string `json:"organization,omitempty" binding:"omitempty,max=200"`
}

// PromoterLoginRequest 推广员后台登录
type PromoterLoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type PromoterLoginResponse struct {
	Token    string        `json:"token"`
	Promoter *PromoterInfo `json:"promoter"`
}

type PromoterInfo struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email,omitempty"`
	LineID       string  `json:"line_id,omitempty"`
	Organization string  `json:"organization,omitempty"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	IsActive     bool    `json:"is_active"`
	ReferralCode string  `json:"referral_code"`
	ShareURL     string  `json:"share_url,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// CreateShareLinkRequest 显式创建分享链接
type CreateShareLinkRequest struct {
	Channel   string  `json:"channel" binding:"required"`
	TargetURL *string `json:"target_url,omitempty" binding:"omitempty,max=500"`
	ExpiresAt *string `json:"expires_at,omitempty"` // RFC3339
}
