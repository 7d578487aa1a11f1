package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/response"
	"github.com/stanley00316/election-system-demo-sub002/internal/testutil"
)

func setupPublicHandler(t *testing.T) (*PublicHandler, *testContext) {
	t.Helper()

	ctx := setupHandlerContext(t)
	h := NewPublicHandler(ctx.PromoterService, ctx.AttributionService, ctx.TrialService, ctx.BillingService)
	return h, ctx
}

func TestPublicHandler_RegisterPromoter(t *testing.T) {
	h, _ := setupPublicHandler(t)

	router := gin.New()
	router.POST("/promoters/register", h.RegisterPromoter)

	body := jsonBody(t, dto.RegisterPromoterRequest{
		Name:     "王小明",
		Phone:    "0912345678",
		Password: "password123",
	})
	req := httptest.NewRequest("POST", "/promoters/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "PENDING", data["status"])
}

func TestPublicHandler_RegisterPromoter_DuplicatePhone(t *testing.T) {
	h, ctx := setupPublicHandler(t)
	existing := testutil.TestPromoter(t, ctx.DB)

	router := gin.New()
	router.POST("/promoters/register", h.RegisterPromoter)

	body := jsonBody(t, dto.RegisterPromoterRequest{
		Name:     "someone",
		Phone:    existing.Phone,
		Password: "password123",
	})
	req := httptest.NewRequest("POST", "/promoters/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeDuplicateAction, resp.Code)
}

func TestPublicHandler_ValidateCode(t *testing.T) {
	h, ctx := setupPublicHandler(t)
	promoter := testutil.TestPromoter(t, ctx.DB)

	router := gin.New()
	router.GET("/codes/:code/validate", h.ValidateCode)

	req := httptest.NewRequest("GET", "/codes/"+promoter.ReferralCode+"/validate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var data dto.ValidateCodeResult
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.Valid)
	assert.Equal(t, promoter.Name, data.PromoterName)
}

func TestPublicHandler_TrackRefClick(t *testing.T) {
	h, ctx := setupPublicHandler(t)
	promoter := testutil.TestPromoter(t, ctx.DB)

	router := gin.New()
	router.POST("/track/ref", h.TrackRefClick)

	body := jsonBody(t, dto.TrackRefClickRequest{Code: promoter.ReferralCode})
	req := httptest.NewRequest("POST", "/track/ref", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var data dto.TrackResult
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.Tracked)
	assert.Equal(t, "promoter", data.Type)
}

func TestPublicHandler_ResolveShareLink_NotFound(t *testing.T) {
	h, _ := setupPublicHandler(t)

	router := gin.New()
	router.GET("/s/:code", h.ResolveShareLink)

	req := httptest.NewRequest("GET", "/s/NOSUCH9999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestPublicHandler_ShareLinkQR(t *testing.T) {
	h, ctx := setupPublicHandler(t)
	promoter := testutil.TestPromoter(t, ctx.DB)
	link := testutil.TestShareLink(t, ctx.DB, promoter.ID)

	router := gin.New()
	router.GET("/s/:code/qr", h.ShareLinkQR)

	req := httptest.NewRequest("GET", "/s/"+link.Code+"/qr", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestPublicHandler_GetTrialInfo(t *testing.T) {
	h, ctx := setupPublicHandler(t)
	promoter := testutil.TestPromoter(t, ctx.DB)
	invite := testutil.TestTrialInvite(t, ctx.DB, promoter.ID)

	router := gin.New()
	router.GET("/trials/:code/info", h.GetTrialInfo)

	req := httptest.NewRequest("GET", "/trials/"+invite.Code+"/info", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var data dto.TrialInviteInfo
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.True(t, data.IsAvailable)
	assert.Equal(t, "基础方案", data.PlanName)
}

func TestPublicHandler_GetTrialInfo_UnknownCodeStillOK(t *testing.T) {
	h, _ := setupPublicHandler(t)

	router := gin.New()
	router.GET("/trials/:code/info", h.GetTrialInfo)

	req := httptest.NewRequest("GET", "/trials/TNOSUCH1/info", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var data dto.TrialInviteInfo
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.False(t, data.IsAvailable)
}

func TestPublicHandler_PromoterLogin_BadCredentials(t *testing.T) {
	h, ctx := setupPublicHandler(t)
	_ = testutil.TestPromoter(t, ctx.DB)

	router := gin.New()
	router.POST("/promoter/login", h.PromoterLogin)

	body := jsonBody(t, dto.PromoterLoginRequest{Phone: "0900000000", Password: "nope12345"})
	req := httptest.NewRequest("POST", "/promoter/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestPublicHandler_TrackRefClick_Untracked(t *testing.T) {
	h, _ := setupPublicHandler(t)

	router := gin.New()
	router.POST("/track/ref", h.TrackRefClick)

	body := jsonBody(t, dto.TrackRefClickRequest{Code: "NOSUCH99"})
	req := httptest.NewRequest("POST", "/track/ref", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var data dto.TrackResult
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.False(t, data.Tracked)
}
