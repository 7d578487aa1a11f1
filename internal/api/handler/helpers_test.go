package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/api/middleware"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/refcode"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
	"github.com/stanley00316/election-system-demo-sub002/internal/service"
	"github.com/stanley00316/election-system-demo-sub002/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testContext 本地测试上下文
type testContext struct {
	DB *gorm.DB

	PromoterService    *service.PromoterService
	AttributionService *service.AttributionService
	TrialService       *service.TrialService
	ReferralService    *service.ReferralService
	StatsService       *service.StatsService
	BillingService     *service.BillingService
}

func setupHandlerContext(t *testing.T) *testContext {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	// 统计并发取数在单连接内存库上跑
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 24},
		Promoter: config.PromoterConfig{
			ShareBaseURL: "https://example.com/join",
		},
		Billing: config.BillingConfig{
			DefaultTrialPlanID: "basic",
			PlanNames:          map[string]string{"basic": "基础方案"},
		},
	}

	refGen, err := refcode.New("", 8, "")
	require.NoError(t, err)
	shareGen, err := refcode.New("", 10, "")
	require.NoError(t, err)
	trialGen, err := refcode.New("", 7, "T")
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	promoterRepo := repository.NewPromoterRepository(db)
	shareLinkRepo := repository.NewShareLinkRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	inviteRepo := repository.NewTrialInviteRepository(db)

	quota := service.NewQuotaService(nil)
	billing := service.NewBillingService(cfg)

	return &testContext{
		DB:                 db,
		PromoterService:    service.NewPromoterService(promoterRepo, shareLinkRepo, refGen, shareGen, cfg),
		AttributionService: service.NewAttributionService(promoterRepo, userRepo, shareLinkRepo, cfg),
		TrialService:       service.NewTrialService(db, promoterRepo, inviteRepo, quota, billing, trialGen, cfg),
		ReferralService:    service.NewReferralService(promoterRepo, referralRepo, quota),
		StatsService:       service.NewStatsService(promoterRepo, shareLinkRepo, referralRepo, inviteRepo),
		BillingService:     billing,
	}
}

// mockAuth 模拟用户认证中间件
func mockAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

// mockPromoterAuth 模拟推广员认证中间件
func mockPromoterAuth(promoterID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.PromoterIDKey, promoterID)
		c.Next()
	}
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// apiResponse 反序列化用的响应镜像，避免 interface{} 断言铺满测试
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()

	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
