package repository

import (
	"Mediahub/internal/model"
	"Mediahub/internal/testsupport"
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newScheduled(userID uint64, at time.Time) *model.Content {
	return &model.Content{
		UserID:      userID,
		Title:       "scheduled",
		ContentType: model.ContentTypeVideo,
		Status:      model.ContentStatusScheduled,
		ScheduledAt: &at,
		Revenue:     decimal.Zero,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}
}

func TestContentRepo_PublishDue(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepo(testsupport.NewTestDB(t))

	c := newScheduled(1, t0.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, c))

	ok, err := repo.PublishDue(ctx, c.ID, t0)
	require.NoError(t, err)
	assert.False(t, ok, "not yet due")

	ok, err = repo.PublishDue(ctx, c.ID, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.PublishDue(ctx, c.ID, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "already published")

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusPublished, got.Status)
	assert.Nil(t, got.ScheduledAt)
}

func TestContentRepo_ListDue(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepo(testsupport.NewTestDB(t))

	for _, offset := range []time.Duration{3 * time.Minute, -time.Minute, -3 * time.Minute, 0} {
		require.NoError(t, repo.Create(ctx, newScheduled(1, t0.Add(offset))))
	}
	draft := &model.Content{UserID: 1, Title: "d", ContentType: model.ContentTypePost, Status: model.ContentStatusDraft, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, repo.Create(ctx, draft))

	due, err := repo.ListDue(ctx, t0, 10)
	require.NoError(t, err)
	require.Len(t, due, 3)
	for i := 1; i < len(due); i++ {
		assert.False(t, due[i].ScheduledAt.Before(*due[i-1].ScheduledAt))
	}

	due, err = repo.ListDue(ctx, t0, 2)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestContentRepo_DeleteChecksOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepo(testsupport.NewTestDB(t))

	c := newScheduled(1, t0.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, c))

	ok, err := repo.Delete(ctx, 2, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionEventRepo_RecordAndAccumulate(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewTestDB(t)
	contents := NewContentRepo(db)
	events := NewSessionEventRepo(db)

	c := &model.Content{UserID: 1, Title: "v", ContentType: model.ContentTypeVideo, Status: model.ContentStatusPublished, Revenue: decimal.Zero, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, contents.Create(ctx, c))

	key := "sess-1"
	newEvent := func(userID uint64, sessionKey *string) *model.SessionEvent {
		return &model.SessionEvent{
			UserID:     userID,
			ContentID:  &c.ID,
			SessionKey: sessionKey,
			EventDate:  testsupport.Day(2025, 3, 10),
			Views:      10,
			Revenue:    decimal.RequireFromString("1.25"),
			CreatedAt:  t0,
		}
	}

	res, err := events.RecordAndAccumulate(ctx, newEvent(1, &key))
	require.NoError(t, err)
	assert.Equal(t, &RecordResult{Accumulated: true}, res)

	res, err = events.RecordAndAccumulate(ctx, newEvent(1, &key))
	require.NoError(t, err)
	assert.True(t, res.Duplicated)
	assert.False(t, res.Accumulated)

	stored, err := events.GetBySessionKey(ctx, 1, key)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(10), stored.Views)
	missing, err := events.GetBySessionKey(ctx, 2, key)
	require.NoError(t, err)
	assert.Nil(t, missing)

	// 他人的内容只记事件
	res, err = events.RecordAndAccumulate(ctx, newEvent(2, nil))
	require.NoError(t, err)
	assert.Equal(t, &RecordResult{}, res)

	got, err := contents.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ViewCount)
	assert.True(t, decimal.RequireFromString("1.25").Equal(got.Revenue), got.Revenue.String())

	sums, err := events.SumAll(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(10), sums.Views)

	drift, err := events.FindAccumulationDrift(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", fmt.Errorf("exec: %w", driver.ErrBadConn), true},
		{"deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"lock wait", &mysql.MySQLError{Number: 1205}, true},
		{"duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("syntax error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}

	assert.True(t, IsDuplicate(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, IsDuplicate(driver.ErrBadConn))
}
