package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/stanley00316/election-system-demo-sub002/internal/api/middleware"
	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/response"
	"github.com/stanley00316/election-system-demo-sub002/internal/service"
)

type UserHandler struct {
	trialService    *service.TrialService
	referralService *service.ReferralService
}

func NewUserHandler(trialService *service.TrialService, referralService *service.ReferralService) *UserHandler {
	return &UserHandler{
		trialService:    trialService,
		referralService: referralService,
	}
}

// ClaimTrial 兑换试用码，开通试用订阅
// POST /api/v1/trials/claim
func (h *UserHandler) ClaimTrial(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ClaimTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	sub, err := h.trialService.ClaimTrial(userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrInviteNotRedeemable):
			response.DomainError(c, "NOT_REDEEMABLE", err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "试用已开通", sub)
}

// ApplyReferral 填写推广员推荐码，建立推荐关系
// POST /api/v1/referrals/apply
func (h *UserHandler) ApplyReferral(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	referral, err := h.referralService.Apply(userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReferralCodeInvalid):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrSelfReferral):
			response.DomainError(c, "SELF_REFERRAL", err.Error())
		case errors.Is(err, service.ErrAlreadyReferred):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "推荐关系已建立", referral)
}
