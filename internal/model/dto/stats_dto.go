package dto

// PromoterStats 单推广员漏斗，各阶段独立统计，不做兄弟项相减
type PromoterStats struct {
	TotalClicks     int64   `json:"total_clicks"`
	TotalReferrals  int64   `json:"total_referrals"`
	RegisteredCount int64   `json:"registered_count"`
	SubscribedCount int64   `json:"subscribed_count"`
	RenewedCount    int64   `json:"renewed_count"`
	TrialIssued     int64   `json:"trial_issued"`
	TrialActivated  int64   `json:"trial_activated"`
	TrialConverted  int64   `json:"trial_converted"`
	ConversionRate  float64 `json:"conversion_rate"` // 零推荐时为 0，不是 NaN
}

// GlobalFunnel 全局漏斗（管理端仪表盘）
type GlobalFunnel struct {
	ClickedCount    int64 `json:"clicked_count"`
	RegisteredCount int64 `json:"registered_count"`
	TrialCount      int64 `json:"trial_count"`
	SubscribedCount int64 `json:"subscribed_count"`
	RenewedCount    int64 `json:"renewed_count"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	PromoterID     int64  `json:"promoter_id"`
	PromoterName   string `json:"promoter_name"`
	SuccessCount   int64  `json:"success_count"`
	TrialConverted int64  `json:"trial_converted"`
	Score          int64  `json:"score"`
}
