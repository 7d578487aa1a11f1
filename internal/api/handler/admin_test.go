package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanley00316/election-system-demo-sub002/internal/model"
	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/response"
	"github.com/stanley00316/election-system-demo-sub002/internal/testutil"
)

func setupAdminRouter(t *testing.T) (*gin.Engine, *testContext) {
	t.Helper()

	ctx := setupHandlerContext(t)
	h := NewAdminHandler(ctx.PromoterService, ctx.TrialService, ctx.ReferralService, ctx.StatsService)

	router := gin.New()
	admin := router.Group("/admin")
	admin.Use(mockAuth(1))
	{
		admin.GET("/promoters", h.ListPromoters)
		admin.POST("/promoters", h.CreatePromoter)
		admin.POST("/promoters/:id/approve", h.ApprovePromoter)
		admin.POST("/promoters/:id/suspend", h.SuspendPromoter)
		admin.POST("/promoters/:id/activate", h.ActivatePromoter)
		admin.POST("/promoters/:id/deactivate", h.DeactivatePromoter)
		admin.GET("/trial-invites", h.ListTrialInvites)
		admin.POST("/trial-invites/:id/extend", h.ExtendTrialInvite)
		admin.POST("/trial-invites/:id/cancel", h.CancelTrialInvite)
		admin.GET("/stats/funnel", h.GetFunnel)
		admin.GET("/stats/leaderboard", h.GetLeaderboard)
	}
	router.POST("/internal/billing/events", mockAuth(1), h.HandleBillingEvent)
	return router, ctx
}

func TestAdminHandler_CreatePromoter(t *testing.T) {
	router, ctx := setupAdminRouter(t)

	body := jsonBody(t, dto.AdminCreatePromoterRequest{
		Name:     "内部推广",
		Phone:    "0911222333",
		Password: "password123",
		Type:     "INTERNAL",
		TrialConfig: &dto.TrialConfigRequest{
			CanIssueTrial:    true,
			MinTrialDays:     3,
			MaxTrialDays:     30,
			DefaultTrialDays: 7,
		},
	})
	req := httptest.NewRequest("POST", "/admin/promoters", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var info dto.PromoterInfo
	require.NoError(t, json.Unmarshal(resp.Data, &info))
	assert.Equal(t, "APPROVED", info.Status)
	assert.Equal(t, "INTERNAL", info.Type)

	var saved model.Promoter
	require.NoError(t, ctx.DB.Preload("TrialConfig").First(&saved, info.ID).Error)
	require.NotNil(t, saved.TrialConfig)
	assert.True(t, saved.TrialConfig.CanIssueTrial)
}

func TestAdminHandler_ApproveAndSuspend(t *testing.T) {
	router, ctx := setupAdminRouter(t)
	promoter := testutil.TestPromoter(t, ctx.DB, testutil.WithStatus(model.PromoterStatusPending))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST",
		"/admin/promoters/"+itoa(promoter.ID)+"/approve", nil))
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	var got model.Promoter
	require.NoError(t, ctx.DB.First(&got, promoter.ID).Error)
	assert.Equal(t, model.PromoterStatusApproved, got.Status)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST",
		"/admin/promoters/"+itoa(promoter.ID)+"/suspend", nil))
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	require.NoError(t, ctx.DB.First(&got, promoter.ID).Error)
	assert.Equal(t, model.PromoterStatusSuspended, got.Status)
}

func TestAdminHandler_DeactivateAndActivate(t *testing.T) {
	router, ctx := setupAdminRouter(t)
	promoter := testutil.TestPromoter(t, ctx.DB)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST",
		"/admin/promoters/"+itoa(promoter.ID)+"/deactivate", nil))
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	var got model.Promoter
	require.NoError(t, ctx.DB.First(&got, promoter.ID).Error)
	assert.False(t, got.IsActive)
	assert.Equal(t, model.PromoterStatusApproved, got.Status) // 审核状态不动

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST",
		"/admin/promoters/"+itoa(promoter.ID)+"/activate", nil))
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	require.NoError(t, ctx.DB.First(&got, promoter.ID).Error)
	assert.True(t, got.IsActive)
}

func TestAdminHandler_ApprovePromoter_NotFound(t *testing.T) {
	router, _ := setupAdminRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/admin/promoters/99999/approve", nil))
	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)
}

func TestAdminHandler_ExtendTrialInvite(t *testing.T) {
	router, ctx := setupAdminRouter(t)
	promoter := testutil.TestPromoter(t, ctx.DB)
	user := testutil.TestUser(t, ctx.DB)
	expiry := time.Now().Add(48 * time.Hour)
	invite := testutil.TestTrialInvite(t, ctx.DB, promoter.ID,
		testutil.WithActivatedUser(user.ID, time.Now()),
		testutil.WithInviteExpiresAt(expiry))

	body := jsonBody(t, dto.ExtendTrialInviteRequest{Days: 7})
	req := httptest.NewRequest("POST", "/admin/trial-invites/"+itoa(invite.ID)+"/extend", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var got model.TrialInvite
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, expiry.Add(7*24*time.Hour), *got.ExpiresAt, time.Second)
}

func TestAdminHandler_ExtendTrialInvite_Pending(t *testing.T) {
	router, ctx := setupAdminRouter(t)
	promoter := testutil.TestPromoter(t, ctx.DB)
	invite := testutil.TestTrialInvite(t, ctx.DB, promoter.ID)

	body := jsonBody(t, dto.ExtendTrialInviteRequest{Days: 7})
	req := httptest.NewRequest("POST", "/admin/trial-invites/"+itoa(invite.ID)+"/extend", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeDomainRule, resp.Code)
	assert.Equal(t, "NOT_EXTENDABLE", resp.Reason)
}

func TestAdminHandler_CancelTrialInvite(t *testing.T) {
	router, ctx := setupAdminRouter(t)
	promoter := testutil.TestPromoter(t, ctx.DB)
	invite := testutil.TestTrialInvite(t, ctx.DB, promoter.ID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST",
		"/admin/trial-invites/"+itoa(invite.ID)+"/cancel", nil))
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	// 终态后再作废
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST",
		"/admin/trial-invites/"+itoa(invite.ID)+"/cancel", nil))
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeDomainRule, resp.Code)
	assert.Equal(t, "TERMINAL_STATE", resp.Reason)
}

func TestAdminHandler_GetFunnel(t *testing.T) {
	router, ctx := setupAdminRouter(t)
	promoter := testutil.TestPromoter(t, ctx.DB)
	u1 := testutil.TestUser(t, ctx.DB)
	u2 := testutil.TestUser(t, ctx.DB)
	testutil.TestReferral(t, ctx.DB, promoter.ID, u1.ID,
		testutil.WithReferralStatus(model.ReferralStatusSubscribed))
	testutil.TestReferral(t, ctx.DB, promoter.ID, u2.ID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin/stats/funnel", nil))

	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var funnel dto.GlobalFunnel
	require.NoError(t, json.Unmarshal(resp.Data, &funnel))
	assert.Equal(t, int64(2), funnel.RegisteredCount)
	assert.Equal(t, int64(1), funnel.SubscribedCount)
}

func TestAdminHandler_GetLeaderboard(t *testing.T) {
	router, ctx := setupAdminRouter(t)
	top := testutil.TestPromoter(t, ctx.DB)
	other := testutil.TestPromoter(t, ctx.DB)
	u1 := testutil.TestUser(t, ctx.DB)
	u2 := testutil.TestUser(t, ctx.DB)
	testutil.TestReferral(t, ctx.DB, top.ID, u1.ID,
		testutil.WithReferralStatus(model.ReferralStatusSubscribed))
	testutil.TestReferral(t, ctx.DB, top.ID, u2.ID,
		testutil.WithReferralStatus(model.ReferralStatusRenewed))
	u3 := testutil.TestUser(t, ctx.DB)
	testutil.TestReferral(t, ctx.DB, other.ID, u3.ID,
		testutil.WithReferralStatus(model.ReferralStatusSubscribed))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin/stats/leaderboard?limit=1", nil))

	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	var entries []dto.LeaderboardEntry
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, top.ID, entries[0].PromoterID)
	assert.Equal(t, int64(2), entries[0].Score)
}

func TestAdminHandler_BillingEvent_Subscribed(t *testing.T) {
	router, ctx := setupAdminRouter(t)
	promoter := testutil.TestPromoter(t, ctx.DB, testutil.WithRewardConfig(&model.RewardConfig{
		RewardType:  model.RewardTypeFixedAmount,
		RewardValue: 100,
	}))
	user := testutil.TestUser(t, ctx.DB)
	referral := testutil.TestReferral(t, ctx.DB, promoter.ID, user.ID)
	invite := testutil.TestTrialInvite(t, ctx.DB, promoter.ID,
		testutil.WithActivatedUser(user.ID, time.Now()))

	body := jsonBody(t, dto.BillingEventRequest{UserID: user.ID, Event: "subscribed", Amount: 600})
	req := httptest.NewRequest("POST", "/internal/billing/events", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	var gotReferral model.PromoterReferral
	require.NoError(t, ctx.DB.First(&gotReferral, referral.ID).Error)
	assert.Equal(t, model.ReferralStatusSubscribed, gotReferral.Status)
	require.NotNil(t, gotReferral.RewardAmount)
	assert.InDelta(t, 100.0, *gotReferral.RewardAmount, 0.0001)

	var gotInvite model.TrialInvite
	require.NoError(t, ctx.DB.First(&gotInvite, invite.ID).Error)
	assert.Equal(t, model.TrialInviteStatusConverted, gotInvite.Status)
}

func TestAdminHandler_BillingEvent_NoReferral(t *testing.T) {
	router, ctx := setupAdminRouter(t)
	user := testutil.TestUser(t, ctx.DB)

	// 没有推荐关系也没有试用邀请的订阅事件照常受理
	body := jsonBody(t, dto.BillingEventRequest{UserID: user.ID, Event: "subscribed", Amount: 600})
	req := httptest.NewRequest("POST", "/internal/billing/events", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)
}

func TestAdminHandler_BillingEvent_UnknownEvent(t *testing.T) {
	router, _ := setupAdminRouter(t)

	body := jsonBody(t, dto.BillingEventRequest{UserID: 1, Event: "refund_issued"})
	req := httptest.NewRequest("POST", "/internal/billing/events", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
}
