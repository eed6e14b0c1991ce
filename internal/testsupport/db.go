// Package testsupport 测试公用的数据库 / Redis 夹具
package testsupport

import (
	"Mediahub/internal/api/config"
	"Mediahub/internal/pkg/database"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB 在临时目录中创建一个已迁移的 sqlite 库
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "mediahub.db") + "?_pragma=busy_timeout(5000)"
	db, err := database.NewGormDB(&config.DBConfig{
		Driver:      database.DriverSQLite,
		DSN:         dsn,
		AutoMigrate: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() { database.Close(db) })
	return db
}

// Day 返回 UTC 零点
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Clock 可手动推进的时钟
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
