package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/response"
	"github.com/stanley00316/election-system-demo-sub002/internal/service"
)

type PublicHandler struct {
	promoterService    *service.PromoterService
	attributionService *service.AttributionService
	trialService       *service.TrialService
	billingService     *service.BillingService
}

func NewPublicHandler(
	promoterService *service.PromoterService,
	attributionService *service.AttributionService,
	trialService *service.TrialService,
	billingService *service.BillingService,
) *PublicHandler {
	return &PublicHandler{
		promoterService:    promoterService,
		attributionService: attributionService,
		trialService:       trialService,
		billingService:     billingService,
	}
}

func clickMeta(c *gin.Context) service.ClickMeta {
	return service.ClickMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referer:   c.GetHeader("Referer"),
	}
}

// RegisterPromoter 推广员自助注册
// POST /api/v1/promoters/register
func (h *PublicHandler) RegisterPromoter(c *gin.Context) {
	var req dto.RegisterPromoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	promoter, err := h.promoterService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhoneExists), errors.Is(err, service.ErrEmailExists):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "注册成功，等待审核", gin.H{
		"id":     promoter.ID,
		"status": promoter.Status,
	})
}

// PromoterLogin 推广员后台登录
// POST /api/v1/promoter/login
func (h *PublicHandler) PromoterLogin(c *gin.Context) {
	var req dto.PromoterLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.promoterService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		case errors.Is(err, service.ErrPromoterNotAllowed):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "登录成功", resp)
}

// ValidateCode 校验推荐码归属，不产生任何副作用
// GET /api/v1/codes/:code/validate
func (h *PublicHandler) ValidateCode(c *gin.Context) {
	result, err := h.attributionService.ValidateCode(c.Param("code"))
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, result)
}

// TrackRefClick 推荐码点击上报
// POST /api/v1/track/ref
func (h *PublicHandler) TrackRefClick(c *gin.Context) {
	var req dto.TrackRefClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	meta := clickMeta(c)
	meta.LandingURL = req.URL
	result, err := h.attributionService.TrackRefClick(req.Code, meta)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, result)
}

// ResolveShareLink 分享短链解析并记一次点击
// GET /api/v1/s/:code
func (h *PublicHandler) ResolveShareLink(c *gin.Context) {
	result, err := h.attributionService.GetShareLink(c.Param("code"), clickMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShareLinkNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrShareLinkExpired):
			response.DomainError(c, "LINK_EXPIRED", err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.Success(c, result)
}

// ShareLinkQR 生成分享链接二维码
// GET /api/v1/s/:code/qr
func (h *PublicHandler) ShareLinkQR(c *gin.Context) {
	code := c.Param("code")

	png, err := qrcode.Encode(h.attributionService.ShareURL(code), qrcode.Medium, 256)
	if err != nil {
		response.ServerError(c, "二维码生成失败")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// GetTrialInfo 试用邀请落地页信息，每次访问计一次链接点击
// GET /api/v1/trials/:code/info
func (h *PublicHandler) GetTrialInfo(c *gin.Context) {
	info, err := h.trialService.GetTrialInfo(c.Param("code"), h.billingService.PlanName)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, info)
}
