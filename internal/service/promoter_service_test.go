package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/model"
	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/refcode"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
	"github.com/stanley00316/election-system-demo-sub002/internal/testutil"
)

func setupPromoterService(t *testing.T) (*PromoterService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 24},
		Promoter: config.PromoterConfig{
			ShareBaseURL: "https://example.com/join",
		},
	}

	refGen, err := refcode.New("", 8, "")
	require.NoError(t, err)
	shareGen, err := refcode.New("", 10, "")
	require.NoError(t, err)

	service := NewPromoterService(
		repository.NewPromoterRepository(db),
		repository.NewShareLinkRepository(db),
		refGen,
		shareGen,
		cfg,
	)
	return service, db
}

func TestPromoterService_Register(t *testing.T) {
	service, db := setupPromoterService(t)

	promoter, err := service.Register(&dto.RegisterPromoterRequest{
		Name:     "王小明",
		Phone:    "0912345678",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, model.PromoterStatusPending, promoter.Status)
	assert.Equal(t, model.PromoterTypeExternal, promoter.Type)
	assert.True(t, promoter.IsActive)
	assert.Len(t, promoter.ReferralCode, 8)
	require.NotNil(t, promoter.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*promoter.PasswordHash), []byte("password123")))

	saved, err := repository.NewPromoterRepository(db).GetByID(promoter.ID)
	require.NoError(t, err)
	assert.Equal(t, promoter.ReferralCode, saved.ReferralCode)
}

func TestPromoterService_Register_DuplicatePhone(t *testing.T) {
	service, db := setupPromoterService(t)
	existing := testutil.TestPromoter(t, db)

	_, err := service.Register(&dto.RegisterPromoterRequest{
		Name:     "someone",
		Phone:    existing.Phone,
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrPhoneExists)
}

func TestPromoterService_AdminCreate(t *testing.T) {
	service, db := setupPromoterService(t)

	promoter, err := service.AdminCreate(&dto.AdminCreatePromoterRequest{
		Name:     "内部推广",
		Phone:    "0987654321",
		Password: "password123",
		Type:     "INTERNAL",
		RewardConfig: &dto.RewardConfigRequest{
			RewardType:  "FIXED_AMOUNT",
			RewardValue: 100,
		},
		TrialConfig: &dto.TrialConfigRequest{
			CanIssueTrial:    true,
			MinTrialDays:     3,
			MaxTrialDays:     30,
			DefaultTrialDays: 7,
		},
	})
	require.NoError(t, err)

	// 管理员建立的推广员默认直接通过审核
	assert.Equal(t, model.PromoterStatusApproved, promoter.Status)
	assert.Equal(t, model.PromoterTypeInternal, promoter.Type)

	saved, err := repository.NewPromoterRepository(db).GetByID(promoter.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.RewardConfig)
	assert.Equal(t, model.RewardTypeFixedAmount, saved.RewardConfig.RewardType)
	require.NotNil(t, saved.TrialConfig)
	assert.True(t, saved.TrialConfig.CanIssueTrial)
}

func TestPromoterService_AdminCreate_InvalidEnums(t *testing.T) {
	service, _ := setupPromoterService(t)

	_, err := service.AdminCreate(&dto.AdminCreatePromoterRequest{
		Name: "x", Phone: "0911000001", Password: "password123", Type: "BOGUS",
	})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = service.AdminCreate(&dto.AdminCreatePromoterRequest{
		Name: "x", Phone: "0911000002", Password: "password123", Status: "BOGUS",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = service.AdminCreate(&dto.AdminCreatePromoterRequest{
		Name: "x", Phone: "0911000003", Password: "password123",
		RewardConfig: &dto.RewardConfigRequest{RewardType: "BOGUS"},
	})
	assert.ErrorIs(t, err, ErrInvalidRewardType)
}

func TestPromoterService_Login(t *testing.T) {
	service, db := setupPromoterService(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	promoter := testutil.TestPromoter(t, db, testutil.WithPasswordHash(string(hashed)))

	resp, err := service.Login(&dto.PromoterLoginRequest{
		Phone:    promoter.Phone,
		Password: "password123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, promoter.ID, resp.Promoter.ID)
	assert.Equal(t, "https://example.com/join?ref="+promoter.ReferralCode, resp.Promoter.ShareURL)
}

func TestPromoterService_Login_WrongPassword(t *testing.T) {
	service, db := setupPromoterService(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	promoter := testutil.TestPromoter(t, db, testutil.WithPasswordHash(string(hashed)))

	_, err = service.Login(&dto.PromoterLoginRequest{Phone: promoter.Phone, Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(&dto.PromoterLoginRequest{Phone: "0900000000", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPromoterService_Login_NotOperable(t *testing.T) {
	service, db := setupPromoterService(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	pending := testutil.TestPromoter(t, db,
		testutil.WithPasswordHash(string(hashed)),
		testutil.WithStatus(model.PromoterStatusPending))

	_, err = service.Login(&dto.PromoterLoginRequest{Phone: pending.Phone, Password: "password123"})
	assert.ErrorIs(t, err, ErrPromoterNotAllowed)
}

func TestPromoterService_UpdateProfile(t *testing.T) {
	service, db := setupPromoterService(t)
	promoter := testutil.TestPromoter(t, db)

	name := "新名字"
	org := "竞选总部"
	info, err := service.UpdateProfile(promoter.ID, &dto.UpdatePromoterProfileRequest{
		Name:         &name,
		Organization: &org,
	})
	require.NoError(t, err)

	assert.Equal(t, "新名字", info.Name)
	assert.Equal(t, "竞选总部", info.Organization)
	// 推荐码不在白名单内，永远不变
	assert.Equal(t, promoter.ReferralCode, info.ReferralCode)
}

func TestPromoterService_UpdateProfile_PhoneConflict(t *testing.T) {
	service, db := setupPromoterService(t)
	promoter := testutil.TestPromoter(t, db)
	other := testutil.TestPromoter(t, db)

	_, err := service.UpdateProfile(promoter.ID, &dto.UpdatePromoterProfileRequest{
		Phone: &other.Phone,
	})
	assert.ErrorIs(t, err, ErrPhoneExists)
}

func TestPromoterService_ApproveAndSuspend(t *testing.T) {
	service, db := setupPromoterService(t)
	promoter := testutil.TestPromoter(t, db, testutil.WithStatus(model.PromoterStatusPending))

	require.NoError(t, service.Approve(promoter.ID))
	saved, err := repository.NewPromoterRepository(db).GetByID(promoter.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PromoterStatusApproved, saved.Status)

	require.NoError(t, service.Suspend(promoter.ID))
	saved, err = repository.NewPromoterRepository(db).GetByID(promoter.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PromoterStatusSuspended, saved.Status)

	assert.ErrorIs(t, service.Approve(99999), ErrPromoterNotFound)
}

func TestPromoterService_SetActive(t *testing.T) {
	service, db := setupPromoterService(t)
	promoter := testutil.TestPromoter(t, db)
	promoterRepo := repository.NewPromoterRepository(db)

	require.NoError(t, service.SetActive(promoter.ID, false))
	saved, err := promoterRepo.GetByID(promoter.ID)
	require.NoError(t, err)
	assert.False(t, saved.IsActive)
	assert.False(t, saved.CanOperate()) // 审核状态没变，仍然不能运营

	require.NoError(t, service.SetActive(promoter.ID, true))
	saved, err = promoterRepo.GetByID(promoter.ID)
	require.NoError(t, err)
	assert.True(t, saved.IsActive)

	assert.ErrorIs(t, service.SetActive(99999, false), ErrPromoterNotFound)
}

func TestPromoterService_InactiveFlagPersists(t *testing.T) {
	_, db := setupPromoterService(t)
	promoter := testutil.TestPromoter(t, db, testutil.WithActive(false))

	// false 不能被列默认值吃掉
	saved, err := repository.NewPromoterRepository(db).GetByID(promoter.ID)
	require.NoError(t, err)
	assert.False(t, saved.IsActive)

	link := testutil.TestShareLink(t, db, promoter.ID, testutil.WithLinkActive(false))
	savedLink, err := repository.NewShareLinkRepository(db).GetByID(link.ID)
	require.NoError(t, err)
	assert.False(t, savedLink.IsActive)
}

func TestPromoterService_SetShareLinkActive(t *testing.T) {
	service, db := setupPromoterService(t)
	promoter := testutil.TestPromoter(t, db)
	link := testutil.TestShareLink(t, db, promoter.ID)
	linkRepo := repository.NewShareLinkRepository(db)

	require.NoError(t, service.SetShareLinkActive(promoter.ID, link.ID, false))
	saved, err := linkRepo.GetByID(link.ID)
	require.NoError(t, err)
	assert.False(t, saved.IsActive)

	require.NoError(t, service.SetShareLinkActive(promoter.ID, link.ID, true))
	saved, err = linkRepo.GetByID(link.ID)
	require.NoError(t, err)
	assert.True(t, saved.IsActive)

	// 别人的链接不可见
	other := testutil.TestPromoter(t, db)
	assert.ErrorIs(t, service.SetShareLinkActive(other.ID, link.ID, false), ErrShareLinkNotFound)

	// REF_LINK 渠道由归因流程管理
	refLink := testutil.TestShareLink(t, db, promoter.ID,
		testutil.WithChannel(model.ChannelRefLink))
	assert.ErrorIs(t, service.SetShareLinkActive(promoter.ID, refLink.ID, false), ErrChannelReserved)
}

func TestPromoterService_CreateShareLink(t *testing.T) {
	service, db := setupPromoterService(t)
	promoter := testutil.TestPromoter(t, db)

	expiresAt := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	link, err := service.CreateShareLink(promoter.ID, &dto.CreateShareLinkRequest{
		Channel:   "LINE",
		ExpiresAt: &expiresAt,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ChannelLine, link.Channel)
	assert.Len(t, link.Code, 10)
	assert.True(t, link.IsActive)
	assert.NotNil(t, link.ExpiresAt)
}

func TestPromoterService_CreateShareLink_Validation(t *testing.T) {
	service, db := setupPromoterService(t)
	promoter := testutil.TestPromoter(t, db)

	_, err := service.CreateShareLink(promoter.ID, &dto.CreateShareLinkRequest{Channel: "BOGUS"})
	assert.ErrorIs(t, err, ErrInvalidChannel)

	// REF_LINK 由归因流程隐式管理，不开放显式创建
	_, err = service.CreateShareLink(promoter.ID, &dto.CreateShareLinkRequest{Channel: "REF_LINK"})
	assert.ErrorIs(t, err, ErrChannelReserved)

	bad := "not-a-timestamp"
	_, err = service.CreateShareLink(promoter.ID, &dto.CreateShareLinkRequest{
		Channel: "LINE", ExpiresAt: &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidExpiry)

	suspended := testutil.TestPromoter(t, db, testutil.WithStatus(model.PromoterStatusSuspended))
	_, err = service.CreateShareLink(suspended.ID, &dto.CreateShareLinkRequest{Channel: "LINE"})
	assert.ErrorIs(t, err, ErrPromoterNotAllowed)
}

func TestPromoterService_ListShareLinkClicks_WrongOwner(t *testing.T) {
	service, db := setupPromoterService(t)
	owner := testutil.TestPromoter(t, db)
	other := testutil.TestPromoter(t, db)
	link := testutil.TestShareLink(t, db, owner.ID)

	_, _, err := service.ListShareLinkClicks(other.ID, link.ID, 1, 20)
	assert.ErrorIs(t, err, ErrShareLinkNotFound)
}
