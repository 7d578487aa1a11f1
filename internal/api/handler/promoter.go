package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stanley00316/election-system-demo-sub002/internal/api/middleware"
	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/response"
	"github.com/stanley00316/election-system-demo-sub002/internal/service"
)

type PromoterHandler struct {
	promoterService *service.PromoterService
	trialService    *service.TrialService
	referralService *service.ReferralService
	statsService    *service.StatsService
}

func NewPromoterHandler(
	promoterService *service.PromoterService,
	trialService *service.TrialService,
	referralService *service.ReferralService,
	statsService *service.StatsService,
) *PromoterHandler {
	return &PromoterHandler{
		promoterService: promoterService,
		trialService:    trialService,
		referralService: referralService,
		statsService:    statsService,
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// GetProfile 推广员资料
// GET /api/v1/promoter/profile
func (h *PromoterHandler) GetProfile(c *gin.Context) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.promoterService.GetProfile(promoterID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, info)
}

// UpdateProfile 推广员自助修改资料
// PUT /api/v1/promoter/profile
func (h *PromoterHandler) UpdateProfile(c *gin.Context) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdatePromoterProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.promoterService.UpdateProfile(promoterID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneExists):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "资料已更新", info)
}

// GetStats 推广面板数据
// GET /api/v1/promoter/stats
func (h *PromoterHandler) GetStats(c *gin.Context) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	stats, err := h.statsService.PromoterStats(promoterID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, stats)
}

// ListReferrals 推荐记录列表
// GET /api/v1/promoter/referrals
func (h *PromoterHandler) ListReferrals(c *gin.Context) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, pageSize := pageParams(c)
	referrals, total, err := h.referralService.ListByPromoter(promoterID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, referrals)
}

// ListShareLinks 分享链接列表
// GET /api/v1/promoter/share-links
func (h *PromoterHandler) ListShareLinks(c *gin.Context) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	links, err := h.promoterService.ListShareLinks(promoterID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, links)
}

// CreateShareLink 创建分享链接
// POST /api/v1/promoter/share-links
func (h *PromoterHandler) CreateShareLink(c *gin.Context) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateShareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	link, err := h.promoterService.CreateShareLink(promoterID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidChannel),
			errors.Is(err, service.ErrChannelReserved),
			errors.Is(err, service.ErrInvalidExpiry):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrPromoterNotAllowed):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "分享链接已创建", link)
}

// ListShareLinkClicks 单条分享链接的点击流水
// GET /api/v1/promoter/share-links/:id/clicks
func (h *PromoterHandler) ListShareLinkClicks(c *gin.Context) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	linkID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的链接 ID")
		return
	}

	page, pageSize := pageParams(c)
	clicks, total, err := h.promoterService.ListShareLinkClicks(promoterID, linkID, page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShareLinkNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessPage(c, total, page, pageSize, clicks)
}

// DisableShareLink 停用分享链接
// POST /api/v1/promoter/share-links/:id/disable
func (h *PromoterHandler) DisableShareLink(c *gin.Context) {
	h.setShareLinkActive(c, false, "链接已停用")
}

// EnableShareLink 重新启用分享链接
// POST /api/v1/promoter/share-links/:id/enable
func (h *PromoterHandler) EnableShareLink(c *gin.Context) {
	h.setShareLinkActive(c, true, "链接已启用")
}

func (h *PromoterHandler) setShareLinkActive(c *gin.Context, active bool, message string) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	linkID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的链接 ID")
		return
	}

	if err := h.promoterService.SetShareLinkActive(promoterID, linkID, active); err != nil {
		switch {
		case errors.Is(err, service.ErrShareLinkNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrChannelReserved):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, message, nil)
}

// ListTrialInvites 已签发的试用邀请
// GET /api/v1/promoter/trial-invites
func (h *PromoterHandler) ListTrialInvites(c *gin.Context) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, pageSize := pageParams(c)
	invites, total, err := h.trialService.ListByPromoter(promoterID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, invites)
}

// CreateTrialInvite 签发试用邀请
// POST /api/v1/promoter/trial-invites
func (h *PromoterHandler) CreateTrialInvite(c *gin.Context) {
	promoterID, ok := middleware.GetPromoterID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateTrialInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	invite, err := h.trialService.CreateInvite(promoterID, &req)
	if err != nil {
		var deny *service.DenyError
		switch {
		case errors.As(err, &deny):
			response.QuotaError(c, string(deny.Reason), deny.Message)
		case errors.Is(err, service.ErrPromoterNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrPromoterNotAllowed):
			response.PermissionError(c, err.Error())
		case errors.Is(err, service.ErrInvalidInviteMethod), errors.Is(err, service.ErrInvalidChannel):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "试用邀请已签发", invite)
}
