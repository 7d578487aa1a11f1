package service

import (
	"time"

	"github.com/stanley00316/election-system-demo-sub002/internal/model"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
)

// DenyReason 配额拒绝原因码，前端据此渲染精确文案
type DenyReason string

const (
	DenyNotAuthorized       DenyReason = "NOT_AUTHORIZED"
	DenyDaysOutOfRange      DenyReason = "DAYS_OUT_OF_RANGE"
	DenyTotalLimitReached   DenyReason = "TOTAL_LIMIT_REACHED"
	DenyMonthlyLimitReached DenyReason = "MONTHLY_LIMIT_REACHED"
)

// DenyError 配额检查未通过
type DenyError struct {
	Reason  DenyReason
	Message string
}

func (e *DenyError) Error() string {
	return e.Message
}

var (
	ErrTrialNotAuthorized = &DenyError{Reason: DenyNotAuthorized, Message: "该推广员无权签发试用邀请"}
	ErrDaysOutOfRange     = &DenyError{Reason: DenyDaysOutOfRange, Message: "试用天数超出允许范围"}
	ErrTotalLimitReached  = &DenyError{Reason: DenyTotalLimitReached, Message: "已达到终身签发上限"}
	ErrMonthlyLimitReached = &DenyError{Reason: DenyMonthlyLimitReached, Message: "本月签发额度已用完"}
)

// QuotaService 试用邀请签发的配额闸门
type QuotaService struct {
	loc *time.Location
}

func NewQuotaService(loc *time.Location) *QuotaService {
	if loc == nil {
		loc = time.UTC
	}
	return &QuotaService{loc: loc}
}

// MonthStart 配额月度窗口的起点：配置时区下的自然月首日零点
func (s *QuotaService) MonthStart(now time.Time) time.Time {
	local := now.In(s.loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.loc)
}

// AuthorizeIssuance 按顺序检查签发资格，任何一步失败立即返回对应拒绝原因。
// invites 必须绑定在与后续插入相同的事务上，计数与插入才在一个事务内完成；
// 单进程内的并发由 TrialService 的推广员级互斥锁关死。
func (s *QuotaService) AuthorizeIssuance(invites *repository.TrialInviteRepository, cfg *model.TrialConfig, promoterID int64, days int, now time.Time) error {
	if cfg == nil || !cfg.CanIssueTrial {
		return ErrTrialNotAuthorized
	}

	if days < cfg.MinTrialDays || days > cfg.MaxTrialDays {
		return ErrDaysOutOfRange
	}

	if cfg.TotalIssueLimit != nil {
		total, err := invites.CountByPromoterSince(promoterID, time.Time{})
		if err != nil {
			return err
		}
		if total >= int64(*cfg.TotalIssueLimit) {
			return ErrTotalLimitReached
		}
	}

	if cfg.MonthlyIssueLimit != nil {
		monthly, err := invites.CountByPromoterSince(promoterID, s.MonthStart(now))
		if err != nil {
			return err
		}
		if monthly >= int64(*cfg.MonthlyIssueLimit) {
			return ErrMonthlyLimitReached
		}
	}

	return nil
}
