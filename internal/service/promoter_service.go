package service

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/model"
	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/jwt"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/refcode"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
)

var (
	ErrPromoterNotFound   = errors.New("推广员不存在")
	ErrPhoneExists        = errors.New("手机号已被注册")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("手机号或密码错误")
	ErrInvalidStatus      = errors.New("无效的推广员状态")
	ErrInvalidType        = errors.New("无效的推广员类型")
	ErrInvalidRewardType  = errors.New("无效的奖励类型")
	ErrChannelReserved    = errors.New("REF_LINK 渠道由系统保留")
	ErrInvalidExpiry      = errors.New("过期时间格式错误")
)

type PromoterService struct {
	cfg           *config.Config
	promoterRepo  *repository.PromoterRepository
	shareLinkRepo *repository.ShareLinkRepository
	refGen        *refcode.Generator
	shareGen      *refcode.Generator
}

func NewPromoterService(
	promoterRepo *repository.PromoterRepository,
	shareLinkRepo *repository.ShareLinkRepository,
	refGen *refcode.Generator,
	shareGen *refcode.Generator,
	cfg *config.Config,
) *PromoterService {
	return &PromoterService{
		cfg:           cfg,
		promoterRepo:  promoterRepo,
		shareLinkRepo: shareLinkRepo,
		refGen:        refGen,
		shareGen:      shareGen,
	}
}

// Register 推广员自助注册，始终进入 PENDING 等待审核
func (s *PromoterService) Register(req *dto.RegisterPromoterRequest) (*model.Promoter, error) {
	exists, err := s.promoterRepo.ExistsByPhone(req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhoneExists
	}

	if req.Email != nil && *req.Email != "" {
		exists, err = s.promoterRepo.ExistsByEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hash := string(hashed)

	promoter := &model.Promoter{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		LineID:       req.LineID,
		Organization: req.Organization,
		PasswordHash: &hash,
		Type:         model.PromoterTypeExternal,
		Status:       model.PromoterStatusPending,
		IsActive:     true,
	}

	if err := s.createWithCode(promoter); err != nil {
		return nil, err
	}

	return promoter, nil
}

// AdminCreate 管理员直接创建推广员，可指定状态、类型和奖励/试用配置
func (s *PromoterService) AdminCreate(req *dto.AdminCreatePromoterRequest) (*model.Promoter, error) {
	exists, err := s.promoterRepo.ExistsByPhone(req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhoneExists
	}

	promoterType := model.PromoterTypeExternal
	if req.Type != "" {
		promoterType = model.PromoterType(req.Type)
		if promoterType != model.PromoterTypeInternal && promoterType != model.PromoterTypeExternal {
			return nil, ErrInvalidType
		}
	}

	status := model.PromoterStatusApproved
	if req.Status != "" {
		status = model.PromoterStatus(req.Status)
		switch status {
		case model.PromoterStatusPending, model.PromoterStatusApproved, model.PromoterStatusSuspended:
		default:
			return nil, ErrInvalidStatus
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hash := string(hashed)

	promoter := &model.Promoter{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		LineID:       req.LineID,
		Organization: req.Organization,
		PasswordHash: &hash,
		Type:         promoterType,
		Status:       status,
		IsActive:     true,
		UserID:       req.UserID,
	}

	if req.RewardConfig != nil {
		rewardType := model.RewardType(req.RewardConfig.RewardType)
		switch rewardType {
		case model.RewardTypeNone, model.RewardTypeFixedAmount,
			model.RewardTypePercentage, model.RewardTypeSubscriptionExtension:
		default:
			return nil, ErrInvalidRewardType
		}
		promoter.RewardConfig = &model.RewardConfig{
			RewardType:         rewardType,
			RewardValue:        req.RewardConfig.RewardValue,
			MaxRewardsPerMonth: req.RewardConfig.MaxRewardsPerMonth,
		}
	}

	if req.TrialConfig != nil {
		promoter.TrialConfig = &model.TrialConfig{
			CanIssueTrial:     req.TrialConfig.CanIssueTrial,
			MinTrialDays:      req.TrialConfig.MinTrialDays,
			MaxTrialDays:      req.TrialConfig.MaxTrialDays,
			DefaultTrialDays:  req.TrialConfig.DefaultTrialDays,
			MonthlyIssueLimit: req.TrialConfig.MonthlyIssueLimit,
			TotalIssueLimit:   req.TrialConfig.TotalIssueLimit,
			TrialPlanID:       req.TrialConfig.TrialPlanID,
		}
	}

	if err := s.createWithCode(promoter); err != nil {
		return nil, err
	}

	return promoter, nil
}

// createWithCode 领取唯一推荐码后落库：唯一约束冲突就换码重试
func (s *PromoterService) createWithCode(promoter *model.Promoter) error {
	for attempt := 0; attempt < refcode.MaxAttempts; attempt++ {
		promoter.ReferralCode = s.refGen.Generate()
		err := s.promoterRepo.Create(promoter)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return refcode.ErrExhausted
}

// Login 推广员后台登录。未审核或停用的推广员拒绝登录
func (s *PromoterService) Login(req *dto.PromoterLoginRequest) (*dto.PromoterLoginResponse, error) {
	promoter, err := s.promoterRepo.GetByPhone(req.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if promoter.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*promoter.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if !promoter.CanOperate() {
		return nil, ErrPromoterNotAllowed
	}

	var userID int64
	if promoter.UserID != nil {
		userID = *promoter.UserID
	}

	token, err := jwt.GenerateRoleToken(userID, jwt.RolePromoter, promoter.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.PromoterLoginResponse{
		Token:    token,
		Promoter: s.buildInfo(promoter),
	}, nil
}

// GetProfile 推广员资料
func (s *PromoterService) GetProfile(promoterID int64) (*dto.PromoterInfo, error) {
	promoter, err := s.promoterRepo.GetByID(promoterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoterNotFound
		}
		return nil, err
	}
	return s.buildInfo(promoter), nil
}

// UpdateProfile 自助资料修改。白名单之外的字段（推荐码、类型、状态）永远不可改
func (s *PromoterService) UpdateProfile(promoterID int64, req *dto.UpdatePromoterProfileRequest) (*dto.PromoterInfo, error) {
	promoter, err := s.promoterRepo.GetByID(promoterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoterNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil && *req.Phone != promoter.Phone {
		exists, err := s.promoterRepo.ExistsByPhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPhoneExists
		}
		fields["phone"] = *req.Phone
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.LineID != nil {
		fields["line_id"] = *req.LineID
	}
	if req.Organization != nil {
		fields["organization"] = *req.Organization
	}

	if len(fields) > 0 {
		if err := s.promoterRepo.UpdateFields(promoterID, fields); err != nil {
			return nil, err
		}
	}

	updated, err := s.promoterRepo.GetByID(promoterID)
	if err != nil {
		return nil, err
	}
	return s.buildInfo(updated), nil
}

// Approve 管理员审核通过
func (s *PromoterService) Approve(promoterID int64) error {
	return s.setStatus(promoterID, model.PromoterStatusApproved)
}

// Suspend 管理员停权
func (s *PromoterService) Suspend(promoterID int64) error {
	return s.setStatus(promoterID, model.PromoterStatusSuspended)
}

func (s *PromoterService) setStatus(promoterID int64, status model.PromoterStatus) error {
	if _, err := s.promoterRepo.GetByID(promoterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromoterNotFound
		}
		return err
	}
	return s.promoterRepo.UpdateFields(promoterID, map[string]interface{}{
		"status": status,
	})
}

// SetActive 管理员启停推广员。停用不改审核状态，但同样挡住发码、收推荐和后台登录
func (s *PromoterService) SetActive(promoterID int64, active bool) error {
	if _, err := s.promoterRepo.GetByID(promoterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromoterNotFound
		}
		return err
	}
	return s.promoterRepo.UpdateFields(promoterID, map[string]interface{}{
		"is_active": active,
	})
}

// SetShareLinkActive 推广员启停自己的分享链接；REF_LINK 渠道由归因流程管理，不开放
func (s *PromoterService) SetShareLinkActive(promoterID, shareLinkID int64, active bool) error {
	link, err := s.shareLinkRepo.GetByID(shareLinkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShareLinkNotFound
		}
		return err
	}
	if link.PromoterID != promoterID {
		return ErrShareLinkNotFound
	}
	if link.Channel == model.ChannelRefLink {
		return ErrChannelReserved
	}
	return s.shareLinkRepo.UpdateFields(shareLinkID, map[string]interface{}{
		"is_active": active,
	})
}

// List 管理端推广员列表
func (s *PromoterService) List(page, pageSize int, status string) ([]*model.Promoter, int64, error) {
	return s.promoterRepo.List(page, pageSize, status)
}

// CreateShareLink 显式创建分享链接；REF_LINK 渠道由归因流程隐式管理
func (s *PromoterService) CreateShareLink(promoterID int64, req *dto.CreateShareLinkRequest) (*model.ShareLink, error) {
	promoter, err := s.promoterRepo.GetByID(promoterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoterNotFound
		}
		return nil, err
	}
	if !promoter.CanOperate() {
		return nil, ErrPromoterNotAllowed
	}

	channel := model.ShareChannel(req.Channel)
	if !channel.Valid() {
		return nil, ErrInvalidChannel
	}
	if channel == model.ChannelRefLink {
		return nil, ErrChannelReserved
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return nil, ErrInvalidExpiry
		}
		expiresAt = &parsed
	}

	for attempt := 0; attempt < refcode.MaxAttempts; attempt++ {
		link := &model.ShareLink{
			PromoterID: promoterID,
			Code:       s.shareGen.Generate(),
			Channel:    channel,
			TargetURL:  req.TargetURL,
			IsActive:   true,
			ExpiresAt:  expiresAt,
		}
		err := s.shareLinkRepo.Create(link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, refcode.ErrExhausted
}

// ListShareLinks 推广员的分享链接
func (s *PromoterService) ListShareLinks(promoterID int64) ([]*model.ShareLink, error) {
	return s.shareLinkRepo.ListByPromoter(promoterID)
}

// ListShareLinkClicks 点击流水（审计）
func (s *PromoterService) ListShareLinkClicks(promoterID, shareLinkID int64, page, pageSize int) ([]*model.ShareLinkClick, int64, error) {
	link, err := s.shareLinkRepo.GetByID(shareLinkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrShareLinkNotFound
		}
		return nil, 0, err
	}
	if link.PromoterID != promoterID {
		return nil, 0, ErrShareLinkNotFound
	}
	return s.shareLinkRepo.ListClicks(shareLinkID, page, pageSize)
}

func (s *PromoterService) buildInfo(promoter *model.Promoter) *dto.PromoterInfo {
	info := &dto.PromoterInfo{
		ID:           promoter.ID,
		Name:         promoter.Name,
		Phone:        promoter.Phone,
		Organization: promoter.Organization,
		Type:         string(promoter.Type),
		Status:       string(promoter.Status),
		IsActive:     promoter.IsActive,
		ReferralCode: promoter.ReferralCode,
		CreatedAt:    promoter.CreatedAt.Format(time.RFC3339),
	}
	if promoter.Email != nil {
		info.Email = *promoter.Email
	}
	if promoter.LineID != nil {
		info.LineID = *promoter.LineID
	}
	if s.cfg.Promoter.ShareBaseURL != "" {
		info.ShareURL = s.cfg.Promoter.ShareBaseURL + "?ref=" + promoter.ReferralCode
	}
	return info
}
