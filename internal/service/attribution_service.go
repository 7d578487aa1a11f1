package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/model"
	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/metrics"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/refcode"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
)

var (
	ErrShareLinkNotFound = errors.New("分享链接不存在或已停用")
	ErrShareLinkExpired  = errors.New("分享链接已过期")
)

// ClickMeta 点击上下文，入库前截断
type ClickMeta struct {
	IP         string
	UserAgent  string
	Referer    string
	LandingURL *string // 客户端期望的落地页，REF_LINK 首次建链时采纳
}

type AttributionService struct {
	cfg           *config.Config
	promoterRepo  *repository.PromoterRepository
	userRepo      *repository.UserRepository
	shareLinkRepo *repository.ShareLinkRepository
}

func NewAttributionService(
	promoterRepo *repository.PromoterRepository,
	userRepo *repository.UserRepository,
	shareLinkRepo *repository.ShareLinkRepository,
	cfg *config.Config,
) *AttributionService {
	return &AttributionService{
		cfg:           cfg,
		promoterRepo:  promoterRepo,
		userRepo:      userRepo,
		shareLinkRepo: shareLinkRepo,
	}
}

// TrackRefClick 入站点击归因，严格按回退链解析：
// 推广员推荐码 → 用户推荐码 → 未命中。
// 只有推广员分支产生点击副作用；未命中不是错误
func (s *AttributionService) TrackRefClick(code string, meta ClickMeta) (*dto.TrackResult, error) {
	code = refcode.Normalize(code)
	if code == "" {
		return &dto.TrackResult{Tracked: false}, nil
	}

	promoter, err := s.promoterRepo.GetByReferralCode(code)
	if err == nil {
		if !promoter.IsActive {
			metrics.RefClicksTracked.WithLabelValues("untracked").Inc()
			return &dto.TrackResult{Tracked: false}, nil
		}

		link, err := s.ensureRefLink(promoter, meta.LandingURL)
		if err != nil {
			return nil, err
		}

		// 点击记录尽力而为：公开无认证入口，记录失败不拦归因结果
		click := model.NewShareLinkClick(link.ID, meta.IP, meta.UserAgent, meta.Referer)
		if err := s.shareLinkRepo.RecordClick(click); err != nil {
			log.Printf("record ref click failed: link=%d err=%v", link.ID, err)
		}

		metrics.RefClicksTracked.WithLabelValues("promoter").Inc()
		return &dto.TrackResult{Tracked: true, Type: "promoter", Name: promoter.Name}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 用户间推荐码只做归因，不记点击
	user, err := s.userRepo.GetByReferralCode(code)
	if err == nil {
		metrics.RefClicksTracked.WithLabelValues("user").Inc()
		return &dto.TrackResult{Tracked: true, Type: "user", Name: user.Name}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	metrics.RefClicksTracked.WithLabelValues("untracked").Inc()
	return &dto.TrackResult{Tracked: false}, nil
}

// ensureRefLink 裸推荐码的规范分享链接，首次点击时创建，落地页取首个点击带的 url。
// 并发创建靠 code 唯一约束收敛：撞上约束说明别人已建好，重查即可
func (s *AttributionService) ensureRefLink(promoter *model.Promoter, landingURL *string) (*model.ShareLink, error) {
	link, err := s.shareLinkRepo.GetRefLink(promoter.ID)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &model.ShareLink{
		PromoterID: promoter.ID,
		Code:       "REF-" + promoter.ReferralCode,
		Channel:    model.ChannelRefLink,
		TargetURL:  landingURL,
		IsActive:   true,
	}
	if err := s.shareLinkRepo.Create(created); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.shareLinkRepo.GetRefLink(promoter.ID)
		}
		return nil, err
	}

	return created, nil
}

// GetShareLink 解析显式分享链接码并记录点击。
// 与 TrackRefClick 不同，这里的未命中是错误：调用方期待一次跳转
func (s *AttributionService) GetShareLink(code string, meta ClickMeta) (*dto.ShareLinkResolveResult, error) {
	link, err := s.shareLinkRepo.GetByCode(refcode.Normalize(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareLinkNotFound
		}
		return nil, err
	}

	if !link.IsActive {
		return nil, ErrShareLinkNotFound
	}
	if link.Expired(time.Now()) {
		return nil, ErrShareLinkExpired
	}

	click := model.NewShareLinkClick(link.ID, meta.IP, meta.UserAgent, meta.Referer)
	if err := s.shareLinkRepo.RecordClick(click); err != nil {
		return nil, err
	}

	metrics.ShareLinkClicks.WithLabelValues(string(link.Channel)).Inc()

	target := s.ShareURL(link.Code)
	if link.TargetURL != nil && *link.TargetURL != "" {
		target = *link.TargetURL
	}

	return &dto.ShareLinkResolveResult{
		Channel:   string(link.Channel),
		TargetURL: target,
	}, nil
}

// ValidateCode 无副作用的推荐码校验，回退链与归因一致
func (s *AttributionService) ValidateCode(code string) (*dto.ValidateCodeResult, error) {
	code = refcode.Normalize(code)
	if code == "" {
		return &dto.ValidateCodeResult{Valid: false}, nil
	}

	promoter, err := s.promoterRepo.GetByReferralCode(code)
	if err == nil {
		if !promoter.CanOperate() {
			return &dto.ValidateCodeResult{Valid: false}, nil
		}
		return &dto.ValidateCodeResult{Valid: true, PromoterName: promoter.Name}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := s.userRepo.GetByReferralCode(code)
	if err == nil {
		return &dto.ValidateCodeResult{Valid: true, PromoterName: user.Name}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &dto.ValidateCodeResult{Valid: false}, nil
}

// ShareURL 推荐码对应的落地页地址
func (s *AttributionService) ShareURL(code string) string {
	base := s.cfg.Promoter.ShareBaseURL
	if base == "" {
		return code
	}
	return fmt.Sprintf("%s?ref=%s", base, code)
}
