package model

import (
	"time"
)

type ShareChannel string

const (
	ChannelLine       ShareChannel = "LINE"
	ChannelFacebook   ShareChannel = "FACEBOOK"
	ChannelSMS        ShareChannel = "SMS"
	ChannelQRCode     ShareChannel = "QR_CODE"
	ChannelEmail      ShareChannel = "EMAIL"
	ChannelDirectLink ShareChannel = "DIRECT_LINK"
	ChannelRefLink    ShareChannel = "REF_LINK" // 裸推荐码首次被点击时隐式创建
	ChannelOther      ShareChannel = "OTHER"
)

func (c ShareChannel) Valid() bool {
	switch c {
	case ChannelLine, ChannelFacebook, ChannelSMS, ChannelQRCode,
		ChannelEmail, ChannelDirectLink, ChannelRefLink, ChannelOther:
		return true
	}
	return false
}

type ShareLink struct {
	ID         int64        `gorm:"primaryKey" json:"id"`
	PromoterID int64        `gorm:"not null;index:idx_share_links_promoter_channel" json:"promoter_id"`
	Code       string       `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Channel    ShareChannel `gorm:"size:20;not null;index:idx_share_links_promoter_channel" json:"channel"`
	TargetURL  *string      `gorm:"size:500" json:"target_url,omitempty"`
	IsActive   bool         `json:"is_active"` // 创建路径显式置 true；列默认值会吞掉 false
	ExpiresAt  *time.Time   `json:"expires_at,omitempty"`
	ClickCount int64        `gorm:"default:0" json:"click_count"` // 只增不减，存储层原子自增
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (ShareLink) TableName() string {
	return "share_links"
}

// Expired 是否已过期（未设置过期时间视为长期有效）
func (l *ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

const (
	clickIPMaxLen   = 45
	clickTextMaxLen = 500
)

// ShareLinkClick 点击流水，只追加不修改
type ShareLinkClick struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	ShareLinkID int64     `gorm:"not null;index" json:"share_link_id"`
	IP          string    `gorm:"size:45" json:"ip"`
	UserAgent   string    `gorm:"size:500" json:"user_agent"`
	Referer     string    `gorm:"size:500" json:"referer"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (ShareLinkClick) TableName() string {
	return "share_link_clicks"
}

// NewShareLinkClick 构造点击记录，超长字段在写入前截断
func NewShareLinkClick(shareLinkID int64, ip, userAgent, referer string) *ShareLinkClick {
	return &ShareLinkClick{
		ShareLinkID: shareLinkID,
		IP:          truncate(ip, clickIPMaxLen),
		UserAgent:   truncate(userAgent, clickTextMaxLen),
		Referer:     truncate(referer, clickTextMaxLen),
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
