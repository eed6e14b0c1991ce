package service

import (
	"Mediahub/internal/pkg/consts"
	"Mediahub/internal/pkg/redis"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

func dashboardKey(userID uint64) string {
	return consts.DashboardCacheKey + strconv.FormatUint(userID, 10)
}

// loadDashboardCache 未命中或 Redis 未启用时返回 false
func loadDashboardCache(ctx context.Context, userID uint64, field string, dst any) bool {
	if !redis.Enabled() {
		return false
	}
	raw, err := redis.HGet(ctx, dashboardKey(userID), field)
	if err != nil || raw == "" {
		return false
	}
	if err = json.Unmarshal([]byte(raw), dst); err != nil {
		log.WarnContext(ctx, "decode dashboard cache failed", "user_id", userID, "field", field, "err", err)
		return false
	}
	return true
}

func storeDashboardCache(ctx context.Context, userID uint64, field string, value any, ttl time.Duration) {
	if !redis.Enabled() || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err = redis.HSetWithExpiration(ctx, dashboardKey(userID), field, raw, ttl); err != nil {
		log.WarnContext(ctx, "store dashboard cache failed", "user_id", userID, "err", err)
	}
}

// invalidateDashboard 用户数据发生写入后清除看板缓存
func invalidateDashboard(ctx context.Context, userID uint64) {
	if !redis.Enabled() {
		return
	}
	if err := redis.DeleteKey(ctx, dashboardKey(userID)); err != nil {
		log.WarnContext(ctx, "invalidate dashboard cache failed", "user_id", userID, "err", err)
	}
}
