package service

import (
	"Mediahub/internal/api/dto"
	"Mediahub/internal/model"
	"Mediahub/internal/repository"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPlanKey 无有效订阅时的套餐标识
const DefaultPlanKey = "FREE"

var contentWeights = map[model.ContentType]decimal.Decimal{
	model.ContentTypePost:       decimal.RequireFromString("0.5"),
	model.ContentTypeArticle:    decimal.RequireFromString("0.5"),
	model.ContentTypeVideo:      decimal.NewFromInt(1),
	model.ContentTypeLivestream: decimal.NewFromInt(10),
}

// ContentWeight 内容占用的配额单位，未知类型按 0 计
func ContentWeight(t model.ContentType) decimal.Decimal {
	if w, ok := contentWeights[t]; ok {
		return w
	}
	return decimal.Zero
}

// CheckAdmission used + weight(newType) > quota 时拒绝
func CheckAdmission(used decimal.Decimal, newType model.ContentType, quota decimal.Decimal) error {
	after := used.Add(ContentWeight(newType))
	if after.GreaterThan(quota) {
		return fmt.Errorf("%w: 已用 %s，新增 %s 需要 %s，上限 %s",
			ErrQuotaExceeded, used.String(), newType, ContentWeight(newType).String(), quota.String())
	}
	return nil
}

type QuotaService interface {
	CheckQuota(ctx context.Context, userID uint64, newType model.ContentType) error
	Usage(ctx context.Context, userID uint64) (decimal.Decimal, error)
	Quota(ctx context.Context, userID uint64) (decimal.Decimal, string, error)
	Report(ctx context.Context, userID uint64) (*dto.QuotaReportDTO, error)
	Plans() []*dto.PlanDTO
}

type quotaServiceImpl struct {
	contentRepo  repository.ContentRepo
	subRepo      repository.SubscriptionRepo
	defaultQuota decimal.Decimal
	nowFn        func() time.Time
}

func NewQuotaService(
	contentRepo repository.ContentRepo,
	subRepo repository.SubscriptionRepo,
	defaultUnits float64,
	nowFn func() time.Time,
) QuotaService {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &quotaServiceImpl{
		contentRepo:  contentRepo,
		subRepo:      subRepo,
		defaultQuota: decimal.NewFromFloat(defaultUnits),
		nowFn:        nowFn,
	}
}

func (s *quotaServiceImpl) CheckQuota(ctx context.Context, userID uint64, newType model.ContentType) error {
	used, err := s.Usage(ctx, userID)
	if err != nil {
		return err
	}
	quota, _, err := s.Quota(ctx, userID)
	if err != nil {
		return err
	}
	return CheckAdmission(used, newType, quota)
}

func (s *quotaServiceImpl) Usage(ctx context.Context, userID uint64) (decimal.Decimal, error) {
	counts, err := s.contentRepo.CountByType(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	used := decimal.Zero
	for _, c := range counts {
		used = used.Add(ContentWeight(c.ContentType).Mul(decimal.NewFromInt(c.Total)))
	}
	return used, nil
}

// Quota 有效订阅取套餐额度，否则取默认额度
func (s *quotaServiceImpl) Quota(ctx context.Context, userID uint64) (decimal.Decimal, string, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, "", err
	}
	if sub.Active(s.nowFn()) {
		if plan, ok := model.FindQuotaPlan(sub.PlanKey); ok {
			return plan.QuotaUnits, plan.Key, nil
		}
	}
	return s.defaultQuota, DefaultPlanKey, nil
}

func (s *quotaServiceImpl) Report(ctx context.Context, userID uint64) (*dto.QuotaReportDTO, error) {
	used, err := s.Usage(ctx, userID)
	if err != nil {
		return nil, err
	}
	quota, planKey, err := s.Quota(ctx, userID)
	if err != nil {
		return nil, err
	}
	remaining := quota.Sub(used)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return &dto.QuotaReportDTO{
		PlanKey:   planKey,
		Used:      used,
		Quota:     quota,
		Remaining: remaining,
	}, nil
}

func (s *quotaServiceImpl) Plans() []*dto.PlanDTO {
	plans := model.QuotaPlans()
	res := make([]*dto.PlanDTO, 0, len(plans))
	for _, p := range plans {
		res = append(res, &dto.PlanDTO{
			Key:          p.Key,
			Title:        p.Title,
			MonthlyPrice: p.MonthlyPrice,
			QuotaUnits:   p.QuotaUnits,
		})
	}
	return res
}
