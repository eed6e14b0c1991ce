package dto

import "github.com/shopspring/decimal"

// CountMetricDTO 计数类指标的三期对比
type CountMetricDTO struct {
	Current         int64   `json:"current"`
	Previous        int64   `json:"previous"`
	PreviousYear    int64   `json:"previous_year"`
	PctPrevious     float64 `json:"pct_previous"`
	PctPreviousYear float64 `json:"pct_previous_year"`
}

// AmountMetricDTO 金额类指标的三期对比
type AmountMetricDTO struct {
	Current         decimal.Decimal `json:"current"`
	Previous        decimal.Decimal `json:"previous"`
	PreviousYear    decimal.Decimal `json:"previous_year"`
	PctPrevious     float64         `json:"pct_previous"`
	PctPreviousYear float64         `json:"pct_previous_year"`
}

// PeriodDTO 闭区间日期
type PeriodDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ProfileViewsDTO 全量阅读量及窗口对比
type ProfileViewsDTO struct {
	AllTime  int64   `json:"all_time"`
	Current  int64   `json:"current"`
	Previous int64   `json:"previous"`
	Pct      float64 `json:"pct"`
}

// OverviewDTO 看板概览
type OverviewDTO struct {
	Days             int             `json:"days"`
	Current          PeriodDTO       `json:"current_period"`
	Previous         PeriodDTO       `json:"previous_period"`
	PreviousYear     PeriodDTO       `json:"previous_year_period"`
	NewFollowers     CountMetricDTO  `json:"new_followers"`
	Revenue          AmountMetricDTO `json:"revenue"`
	Views            CountMetricDTO  `json:"views"`
	ContentCreated   CountMetricDTO  `json:"content_created"`
	ContentPublished CountMetricDTO  `json:"content_published"`
	ProfileViews     ProfileViewsDTO `json:"profile_views"`
}

// StatsDTO 生命周期累计
type StatsDTO struct {
	TotalPosts         int64           `json:"total_posts"`
	Followers          int64           `json:"followers"`
	AvgLivestreamViews float64         `json:"avg_livestream_views"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	ProfileViews       int64           `json:"profile_views"`
}
