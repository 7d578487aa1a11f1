package dto

// CreateTrialInviteRequest 推广员（或管理员代发）签发试用邀请
type CreateTrialInviteRequest struct {
	TrialDays    int     `json:"trial_days"` // 0 表示使用推广员配置的默认天数
	InviteMethod string  `json:"invite_method,omitempty"`
	Channel      *string `json:"channel,omitempty"`
	InviteeName  *string `json:"invitee_name,omitempty" binding:"omitempty,max=100"`
	InviteePhone *string `json:"invitee_phone,omitempty" binding:"omitempty,max=20"`
	InviteeEmail *string `json:"invitee_email,omitempty" binding:"omitempty,email"`
	PlanID       *string `json:"plan_id,omitempty"`
}

// ClaimTrialRequest 已登录用户兑换试用码
type ClaimTrialRequest struct {
	Code string `json:"code" binding:"required,max=20"`
}

// TrialInviteInfo 兑换前的邀请预览（公开接口）
type TrialInviteInfo struct {
	Code        string `json:"code,omitempty"`
	TrialDays   int    `json:"trial_days,omitempty"`
	PlanName    string `json:"plan_name,omitempty"`
	IsAvailable bool   `json:"is_available"`
}

// ExtendTrialInviteRequest 管理员延长已激活邀请
type ExtendTrialInviteRequest struct {
	Days int `json:"days" binding:"required,min=1,max=365"`
}

// ApplyReferralRequest 已登录用户填写推广员推荐码
type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required,max=20"`
}
