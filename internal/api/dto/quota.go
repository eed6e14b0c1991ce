package dto

import "github.com/shopspring/decimal"

type PlanDTO struct {
	Key          string          `json:"key"`
	Title        string          `json:"title"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	QuotaUnits   decimal.Decimal `json:"quota_units"`
}

// QuotaReportDTO 存储配额使用情况
type QuotaReportDTO struct {
	PlanKey   string          `json:"plan_key"`
	Used      decimal.Decimal `json:"used"`
	Quota     decimal.Decimal `json:"quota"`
	Remaining decimal.Decimal `json:"remaining"`
}
