package service

import (
	"Mediahub/internal/api/dto"
	"Mediahub/internal/model"
	"Mediahub/internal/pkg/consts"
	"Mediahub/internal/pkg/util"
	"Mediahub/internal/repository"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// SafePctDecimal prior 为 0 时 curr>0 记 100，否则 0；其余按 (curr-prior)/|prior|*100 保留两位
func SafePctDecimal(curr, prior decimal.Decimal) float64 {
	if prior.IsZero() {
		if curr.IsPositive() {
			return 100
		}
		return 0
	}
	return curr.Sub(prior).Div(prior.Abs()).Mul(hundred).Round(2).InexactFloat64()
}

func SafePct(curr, prior int64) float64 {
	return SafePctDecimal(decimal.NewFromInt(curr), decimal.NewFromInt(prior))
}

type AnalyticsService interface {
	Overview(ctx context.Context, userID uint64, days int) (*dto.OverviewDTO, error)
	Stats(ctx context.Context, userID uint64) (*dto.StatsDTO, error)
	AuditAccumulation(ctx context.Context, limit int) ([]repository.AccumulationDrift, error)
}

// AnalyticsOptions 看板参数
type AnalyticsOptions struct {
	Location     *time.Location
	DefaultDays  int
	QueryTimeout time.Duration
	CacheTTL     time.Duration
	Now          func() time.Time
}

type analyticsServiceImpl struct {
	contentRepo repository.ContentRepo
	eventRepo   repository.SessionEventRepo
	opts        AnalyticsOptions
}

func NewAnalyticsService(contentRepo repository.ContentRepo, eventRepo repository.SessionEventRepo, opts AnalyticsOptions) AnalyticsService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = 30
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 3 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &analyticsServiceImpl{
		contentRepo: contentRepo,
		eventRepo:   eventRepo,
		opts:        opts,
	}
}

type periodFigures struct {
	sums    *repository.PeriodSums
	created *repository.CreatedCounts
}

func (s *analyticsServiceImpl) Overview(ctx context.Context, userID uint64, days int) (*dto.OverviewDTO, error) {
	// days 只是展示参数，越界时回落到默认窗口
	if days <= 0 || days > consts.MaxOverviewDays {
		days = s.opts.DefaultDays
	}

	field := "overview:" + strconv.Itoa(days)
	var cached dto.OverviewDTO
	if loadDashboardCache(ctx, userID, field, &cached) {
		return &cached, nil
	}

	today := util.CalendarDay(s.opts.Now(), s.opts.Location)
	cur, prev, prevYear := util.ComparisonPeriods(today, days)
	periods := []util.Period{cur, prev, prevYear}
	figures := make([]periodFigures, len(periods))
	var allTime *repository.PeriodSums

	qctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(qctx)

	for i, p := range periods {
		g.Go(func() error {
			sums, err := s.eventRepo.SumBetween(gctx, userID, p.Start, p.End)
			if err != nil {
				return fmt.Errorf("sum events %s: %w", p, err)
			}
			figures[i].sums = sums
			return nil
		})
		g.Go(func() error {
			from, to := p.Bounds(s.opts.Location)
			counts, err := s.contentRepo.CountCreatedBetween(gctx, userID, from, to)
			if err != nil {
				return fmt.Errorf("count contents %s: %w", p, err)
			}
			figures[i].created = counts
			return nil
		})
	}
	g.Go(func() error {
		sums, err := s.eventRepo.SumAll(gctx, userID)
		if err != nil {
			return fmt.Errorf("sum all events: %w", err)
		}
		allTime = sums
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, s.queryErr(qctx, err)
	}

	c, p, y := figures[0], figures[1], figures[2]
	overview := &dto.OverviewDTO{
		Days:             days,
		Current:          toPeriodDTO(cur),
		Previous:         toPeriodDTO(prev),
		PreviousYear:     toPeriodDTO(prevYear),
		NewFollowers:     countMetric(c.sums.NewFollowers, p.sums.NewFollowers, y.sums.NewFollowers),
		Revenue:          amountMetric(c.sums.Revenue, p.sums.Revenue, y.sums.Revenue),
		Views:            countMetric(c.sums.Views, p.sums.Views, y.sums.Views),
		ContentCreated:   countMetric(c.created.Total, p.created.Total, y.created.Total),
		ContentPublished: countMetric(c.created.Published, p.created.Published, y.created.Published),
		ProfileViews: dto.ProfileViewsDTO{
			AllTime:  allTime.Views,
			Current:  c.sums.Views,
			Previous: p.sums.Views,
			Pct:      SafePct(c.sums.Views, p.sums.Views),
		},
	}

	storeDashboardCache(ctx, userID, field, overview, s.opts.CacheTTL)
	return overview, nil
}

func (s *analyticsServiceImpl) Stats(ctx context.Context, userID uint64) (*dto.StatsDTO, error) {
	const field = "stats"
	var cached dto.StatsDTO
	if loadDashboardCache(ctx, userID, field, &cached) {
		return &cached, nil
	}

	stats := &dto.StatsDTO{}
	qctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(qctx)

	g.Go(func() error {
		total, err := s.contentRepo.CountAll(gctx, userID)
		stats.TotalPosts = total
		return err
	})
	g.Go(func() error {
		sums, err := s.eventRepo.SumAll(gctx, userID)
		if err != nil {
			return err
		}
		stats.Followers = sums.NewFollowers
		stats.ProfileViews = sums.Views
		stats.TotalRevenue = sums.Revenue
		return nil
	})
	g.Go(func() error {
		avg, err := s.eventRepo.AvgViewsByContentType(gctx, userID, model.ContentTypeLivestream)
		stats.AvgLivestreamViews = decimal.NewFromFloat(avg).Round(2).InexactFloat64()
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, s.queryErr(qctx, err)
	}

	storeDashboardCache(ctx, userID, field, stats, s.opts.CacheTTL)
	return stats, nil
}

func (s *analyticsServiceImpl) AuditAccumulation(ctx context.Context, limit int) ([]repository.AccumulationDrift, error) {
	if limit <= 0 {
		limit = 200
	}
	return s.eventRepo.FindAccumulationDrift(ctx, limit)
}

// queryErr 超时统一返回 ErrDashboardTimeout
func (s *analyticsServiceImpl) queryErr(qctx context.Context, err error) error {
	if errors.Is(qctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrDashboardTimeout, err)
	}
	return wrapStoreErr(err)
}

func countMetric(cur, prev, prevYear int64) dto.CountMetricDTO {
	return dto.CountMetricDTO{
		Current:         cur,
		Previous:        prev,
		PreviousYear:    prevYear,
		PctPrevious:     SafePct(cur, prev),
		PctPreviousYear: SafePct(cur, prevYear),
	}
}

func amountMetric(cur, prev, prevYear decimal.Decimal) dto.AmountMetricDTO {
	return dto.AmountMetricDTO{
		Current:         cur,
		Previous:        prev,
		PreviousYear:    prevYear,
		PctPrevious:     SafePctDecimal(cur, prev),
		PctPreviousYear: SafePctDecimal(cur, prevYear),
	}
}

func toPeriodDTO(p util.Period) dto.PeriodDTO {
	return dto.PeriodDTO{Start: p.Start.Format(util.DateLayout), End: p.End.Format(util.DateLayout)}
}
