package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/response"
	"github.com/stanley00316/election-system-demo-sub002/internal/service"
)

type AdminHandler struct {
	promoterService *service.PromoterService
	trialService    *service.TrialService
	referralService *service.ReferralService
	statsService    *service.StatsService
}

func NewAdminHandler(
	promoterService *service.PromoterService,
	trialService *service.TrialService,
	referralService *service.ReferralService,
	statsService *service.StatsService,
) *AdminHandler {
	return &AdminHandler{
		promoterService: promoterService,
		trialService:    trialService,
		referralService: referralService,
		statsService:    statsService,
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的 ID")
		return 0, false
	}
	return id, true
}

// ListPromoters 推广员列表
// GET /api/v1/admin/promoters
func (h *AdminHandler) ListPromoters(c *gin.Context) {
	page, pageSize := pageParams(c)
	promoters, total, err := h.promoterService.List(page, pageSize, c.Query("status"))
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, promoters)
}

// CreatePromoter 管理员直接创建推广员
// POST /api/v1/admin/promoters
func (h *AdminHandler) CreatePromoter(c *gin.Context) {
	var req dto.AdminCreatePromoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	promoter, err := h.promoterService.AdminCreate(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneExists):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrInvalidStatus),
			errors.Is(err, service.ErrInvalidType),
			errors.Is(err, service.ErrInvalidRewardType):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "推广员已创建", promoter)
}

// ApprovePromoter 审核通过
// POST /api/v1/admin/promoters/:id/approve
func (h *AdminHandler) ApprovePromoter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.promoterService.Approve(id); err != nil {
		if errors.Is(err, service.ErrPromoterNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "已审核通过", nil)
}

// SuspendPromoter 停权
// POST /api/v1/admin/promoters/:id/suspend
func (h *AdminHandler) SuspendPromoter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.promoterService.Suspend(id); err != nil {
		if errors.Is(err, service.ErrPromoterNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "已停权", nil)
}

// ActivatePromoter 重新启用
// POST /api/v1/admin/promoters/:id/activate
func (h *AdminHandler) ActivatePromoter(c *gin.Context) {
	h.setPromoterActive(c, true, "已启用")
}

// DeactivatePromoter 停用（不改审核状态）
// POST /api/v1/admin/promoters/:id/deactivate
func (h *AdminHandler) DeactivatePromoter(c *gin.Context) {
	h.setPromoterActive(c, false, "已停用")
}

func (h *AdminHandler) setPromoterActive(c *gin.Context, active bool, message string) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.promoterService.SetActive(id, active); err != nil {
		if errors.Is(err, service.ErrPromoterNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, message, nil)
}

// ListTrialInvites 全量试用邀请，可按状态过滤
// GET /api/v1/admin/trial-invites
func (h *AdminHandler) ListTrialInvites(c *gin.Context) {
	page, pageSize := pageParams(c)
	invites, total, err := h.trialService.List(page, pageSize, c.Query("status"))
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, invites)
}

// ExtendTrialInvite 延长已激活的试用
// POST /api/v1/admin/trial-invites/:id/extend
func (h *AdminHandler) ExtendTrialInvite(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req dto.ExtendTrialInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	invite, err := h.trialService.Extend(id, req.Days)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInviteNotExtendable):
			response.DomainError(c, "NOT_EXTENDABLE", err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "试用已延长", invite)
}

// CancelTrialInvite 作废邀请，终态邀请不可作废
// POST /api/v1/admin/trial-invites/:id/cancel
func (h *AdminHandler) CancelTrialInvite(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.trialService.Cancel(id); err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInviteTerminal):
			response.DomainError(c, "TERMINAL_STATE", err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "邀请已作废", nil)
}

// GetFunnel 全局转化漏斗
// GET /api/v1/admin/stats/funnel
func (h *AdminHandler) GetFunnel(c *gin.Context) {
	funnel, err := h.statsService.GlobalFunnel()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, funnel)
}

// GetLeaderboard 推广排行
// GET /api/v1/admin/stats/leaderboard
func (h *AdminHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.statsService.Leaderboard(limit)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, entries)
}

// HandleBillingEvent 支付侧生命周期事件，驱动推荐与试用状态机
// POST /api/v1/internal/billing/events
func (h *AdminHandler) HandleBillingEvent(c *gin.Context) {
	var req dto.BillingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	// 推荐关系和试用邀请都可能不存在，缺失不是错误
	skippable := func(err error) bool {
		return errors.Is(err, service.ErrReferralNotFound) ||
			errors.Is(err, service.ErrInvalidTransition) ||
			errors.Is(err, service.ErrInviteNotFound) ||
			errors.Is(err, service.ErrInviteTerminal)
	}

	var err error
	switch req.Event {
	case "trial_activated":
		if aerr := h.trialService.MarkActive(req.UserID); aerr != nil && !skippable(aerr) {
			err = aerr
		}
	case "subscribed":
		if _, rerr := h.referralService.MarkSubscribed(req.UserID, req.Amount); rerr != nil && !skippable(rerr) {
			err = rerr
		}
		if err == nil {
			if terr := h.trialService.MarkConverted(req.UserID); terr != nil && !skippable(terr) {
				err = terr
			}
		}
	case "renewed":
		if _, rerr := h.referralService.MarkRenewed(req.UserID); rerr != nil && !skippable(rerr) {
			err = rerr
		}
	default:
		response.ParamError(c, "未知的事件类型")
		return
	}

	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "事件已处理", nil)
}
