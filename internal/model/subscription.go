package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotaPlan 套餐，静态数据
type QuotaPlan struct {
	Key          string          `json:"key"`
	Title        string          `json:"title"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	QuotaUnits   decimal.Decimal `json:"quota_units"`
}

var quotaPlans = []QuotaPlan{
	{Key: "GO", Title: "Go", MonthlyPrice: decimal.RequireFromString("9.99"), QuotaUnits: decimal.NewFromInt(256)},
	{Key: "PLUS", Title: "Plus", MonthlyPrice: decimal.RequireFromString("39.99"), QuotaUnits: decimal.NewFromInt(512)},
	{Key: "PRO", Title: "Pro", MonthlyPrice: decimal.RequireFromString("99.99"), QuotaUnits: decimal.NewFromInt(1024)},
}

// QuotaPlans 返回套餐目录的副本
func QuotaPlans() []QuotaPlan {
	plans := make([]QuotaPlan, len(quotaPlans))
	copy(plans, quotaPlans)
	return plans
}

// FindQuotaPlan 按 key 查找套餐
func FindQuotaPlan(key string) (QuotaPlan, bool) {
	for _, p := range quotaPlans {
		if p.Key == key {
			return p, true
		}
	}
	return QuotaPlan{}, false
}

// Subscription 用户订阅，由外部计费服务写入
type Subscription struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_user"`
	PlanKey   string    `gorm:"type:varchar(16);not null"`
	StartedAt time.Time `gorm:"precision:6"`
	ExpiresAt time.Time `gorm:"precision:6;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Active 在 now 时刻是否有效
func (s *Subscription) Active(now time.Time) bool {
	return s != nil && s.ExpiresAt.After(now)
}
