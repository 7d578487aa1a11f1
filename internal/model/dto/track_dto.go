package dto

// TrackRefClickRequest 入站点击归因
type TrackRefClickRequest struct {
	Code string  `json:"code" binding:"required,max=30"`
	URL  *string `json:"url,omitempty" binding:"omitempty,max=500"`
}

// TrackResult 归因结果；未命中任何码不是错误
type TrackResult struct {
	Tracked bool   `json:"tracked"`
	Type    string `json:"type,omitempty"` // promoter / user
	Name    string `json:"name,omitempty"`
}

// ValidateCodeResult 推荐码校验（无副作用）
type ValidateCodeResult struct {
	Valid        bool   `json:"valid"`
	PromoterName string `json:"promoter_name,omitempty"`
}

// ShareLinkResolveResult 分享链接解析结果，客户端凭此跳转
type ShareLinkResolveResult struct {
	Channel   string `json:"channel"`
	TargetURL string `json:"target_url"`
}
