package service

import (
	"Mediahub/internal/api/dto"
	"Mediahub/internal/model"
	"Mediahub/internal/pkg/consts"
	"Mediahub/internal/pkg/lock"
	"Mediahub/internal/pkg/util"
	"Mediahub/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type ContentService interface {
	CreateContent(ctx context.Context, userID uint64, req *dto.CreateContentDTO) (*dto.ContentDTO, error)
	UpdateContent(ctx context.Context, userID, contentID uint64, req *dto.UpdateContentDTO) (*dto.ContentDTO, error)
	DeleteContent(ctx context.Context, userID, contentID uint64) error
	GetContent(ctx context.Context, userID, contentID uint64) (*dto.ContentDTO, error)
	ListContents(ctx context.Context, userID uint64, req *dto.ContentListDTO) ([]*dto.ContentDTO, error)
	RecordSessionSummary(ctx context.Context, userID uint64, req *dto.SessionSummaryDTO) (*dto.SessionResultDTO, error)
	// PublishDue 定时任务专用：仅当内容仍处于 scheduled 且已到期时发布
	PublishDue(ctx context.Context, contentID uint64, now time.Time) (bool, error)
}

// ContentOptions 生命周期管理参数
type ContentOptions struct {
	WriteRetries int
	Location     *time.Location
	Now          func() time.Time
	// SideEffectTimeout 写成功后活动记录、事件发布、缓存失效的总耗时上限
	SideEffectTimeout time.Duration
}

type contentServiceImpl struct {
	contentRepo  repository.ContentRepo
	eventRepo    repository.SessionEventRepo
	quotaSvc     QuotaService
	activitySvc  ActivityService
	publisher    EventPublisher
	contentLocks *lock.KeyedMutex
	userLocks    *lock.KeyedMutex
	retries      int
	loc          *time.Location
	nowFn        func() time.Time
	sideTimeout  time.Duration
}

func NewContentService(
	contentRepo repository.ContentRepo,
	eventRepo repository.SessionEventRepo,
	quotaSvc QuotaService,
	activitySvc ActivityService,
	publisher EventPublisher,
	opts ContentOptions,
) ContentService {
	if opts.WriteRetries < 1 {
		opts.WriteRetries = 1
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SideEffectTimeout <= 0 {
		opts.SideEffectTimeout = consts.DefaultSideEffectTimeout
	}
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	return &contentServiceImpl{
		contentRepo:  contentRepo,
		eventRepo:    eventRepo,
		quotaSvc:     quotaSvc,
		activitySvc:  activitySvc,
		publisher:    publisher,
		contentLocks: lock.NewKeyedMutex(),
		userLocks:    lock.NewKeyedMutex(),
		retries:      opts.WriteRetries,
		loc:          opts.Location,
		nowFn:        opts.Now,
		sideTimeout:  opts.SideEffectTimeout,
	}
}

func (s *contentServiceImpl) now() time.Time {
	return s.nowFn().UTC().Truncate(time.Microsecond)
}

func (s *contentServiceImpl) CreateContent(ctx context.Context, userID uint64, req *dto.CreateContentDTO) (*dto.ContentDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: 标题不能为空", ErrValidation)
	}

	status := model.ContentStatus(req.Status)
	if status == "" {
		status = model.ContentStatusDraft
	}
	now := s.now()
	scheduledAt, err := checkSchedule(status, req.ScheduledAt, now)
	if err != nil {
		return nil, err
	}

	content := &model.Content{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		ContentType: model.ContentType(req.ContentType),
		Status:      status,
		ScheduledAt: scheduledAt,
		Revenue:     decimal.Zero,
		Platforms:   normalizePlatforms(req.Platforms),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 同一用户的配额检查与写入串行，避免并发创建同时通过检查
	unlock, err := s.userLocks.LockContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err = s.quotaSvc.CheckQuota(ctx, userID, content.ContentType); err != nil {
		return nil, wrapStoreErr(err)
	}

	err = retryImmediate(ctx, s.retries, "create content", func() error {
		content.ID = 0
		return s.contentRepo.Create(ctx, content)
	})
	if err != nil {
		return nil, err
	}
	unlock()

	s.afterWrite(ctx, content.UserID, content.ID, content.Status, model.EventContentCreated, model.ActivityCreateContent, map[string]any{
		"content_id":   content.ID,
		"title":        content.Title,
		"content_type": content.ContentType,
		"status":       content.Status,
	})
	return toContentDTO(content), nil
}

func (s *contentServiceImpl) UpdateContent(ctx context.Context, userID, contentID uint64, req *dto.UpdateContentDTO) (*dto.ContentDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	unlock, err := s.contentLocks.LockContext(ctx, contentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	content, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if content == nil || content.UserID != userID {
		return nil, ErrContentNotFound
	}
	prevStatus := content.Status

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: 标题不能为空", ErrValidation)
		}
		content.Title = title
	}
	if req.Description != nil {
		content.Description = *req.Description
	}
	if req.ContentType != nil {
		content.ContentType = model.ContentType(*req.ContentType)
	}
	if req.Status != nil {
		content.Status = model.ContentStatus(*req.Status)
	}
	if req.Platforms != nil {
		content.Platforms = normalizePlatforms(req.Platforms)
	}

	now := s.now()
	if content.Status == model.ContentStatusScheduled {
		// 进入定时状态或修改定时时间时重新校验；保持原定时不变时不校验
		if prevStatus != model.ContentStatusScheduled || req.ScheduledAt != nil {
			at := req.ScheduledAt
			if at == nil {
				at = content.ScheduledAt
			}
			if content.ScheduledAt, err = checkSchedule(model.ContentStatusScheduled, at, now); err != nil {
				return nil, err
			}
		}
	} else {
		if req.ScheduledAt != nil {
			return nil, fmt.Errorf("%w: 仅定时发布状态可以设置 scheduled_at", ErrValidation)
		}
		content.ScheduledAt = nil
	}
	content.UpdatedAt = now

	err = retryImmediate(ctx, s.retries, "update content", func() error {
		return s.contentRepo.UpdateFields(ctx, content)
	})
	if err != nil {
		return nil, err
	}
	unlock()

	event := model.EventContentUpdated
	if content.Status == model.ContentStatusPublished && prevStatus != model.ContentStatusPublished {
		event = model.EventContentPublished
	}
	s.afterWrite(ctx, userID, content.ID, content.Status, event, model.ActivityUpdateContent, map[string]any{
		"content_id":  content.ID,
		"from_status": prevStatus,
		"to_status":   content.Status,
	})
	return toContentDTO(content), nil
}

func (s *contentServiceImpl) DeleteContent(ctx context.Context, userID, contentID uint64) error {
	unlock, err := s.contentLocks.LockContext(ctx, contentID)
	if err != nil {
		return err
	}
	defer unlock()

	var deleted bool
	err = retryImmediate(ctx, s.retries, "delete content", func() error {
		var err error
		deleted, err = s.contentRepo.Delete(ctx, userID, contentID)
		return err
	})
	if err != nil {
		return err
	}
	if !deleted {
		return ErrContentNotFound
	}
	unlock()

	s.afterWrite(ctx, userID, contentID, "", model.EventContentDeleted, model.ActivityDeleteContent, map[string]any{
		"content_id": contentID,
	})
	return nil
}

func (s *contentServiceImpl) GetContent(ctx context.Context, userID, contentID uint64) (*dto.ContentDTO, error) {
	content, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if content == nil || content.UserID != userID {
		return nil, ErrContentNotFound
	}
	return toContentDTO(content), nil
}

func (s *contentServiceImpl) ListContents(ctx context.Context, userID uint64, req *dto.ContentListDTO) ([]*dto.ContentDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	limit := req.Limit
	if limit <= 0 {
		limit = consts.DefaultListLimit
	}
	if limit > consts.MaxListLimit {
		limit = consts.MaxListLimit
	}

	contents, err := s.contentRepo.List(ctx, userID, repository.ContentFilter{
		ContentType: model.ContentType(req.ContentType),
		Status:      model.ContentStatus(req.Status),
		Limit:       limit,
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	res := make([]*dto.ContentDTO, 0, len(contents))
	for _, c := range contents {
		res = append(res, toContentDTO(c))
	}
	return res, nil
}

// RecordSessionSummary 追加会话事件并累加到内容。内容无法解析时事件照常保存，返回 warning。
func (s *contentServiceImpl) RecordSessionSummary(ctx context.Context, userID uint64, req *dto.SessionSummaryDTO) (*dto.SessionResultDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if req.Revenue.IsNegative() {
		return nil, fmt.Errorf("%w: revenue 不能为负数", ErrValidation)
	}

	now := s.now()
	day := util.CalendarDay(now, s.loc)
	if req.Date != "" {
		parsed, err := util.ParseCalendarDay(req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date 格式应为 YYYY-MM-DD", ErrValidation)
		}
		day = parsed
	}

	// 未携带 session_key 时由服务端生成，保证重试幂等
	sessionKey := req.SessionKey
	generatedKey := sessionKey == nil
	if generatedKey {
		key := uuid.NewString()
		sessionKey = &key
	}

	event := &model.SessionEvent{
		UserID:       userID,
		ContentID:    req.ContentID,
		SessionKey:   sessionKey,
		EventDate:    day,
		Views:        req.Views,
		Revenue:      req.Revenue.Round(2),
		NewFollowers: req.NewFollowers,
		Clicks:       req.Clicks,
		Likes:        req.Likes,
		Comments:     req.Comments,
		Shares:       req.Shares,
		CreatedAt:    now,
	}

	unlock := func() {}
	if event.ContentID != nil {
		var err error
		if unlock, err = s.contentLocks.LockContext(ctx, *event.ContentID); err != nil {
			return nil, err
		}
		defer unlock()
	}

	var result *repository.RecordResult
	err := retryImmediate(ctx, s.retries, "record session", func() error {
		event.ID = 0
		var err error
		result, err = s.eventRepo.RecordAndAccumulate(ctx, event)
		return err
	})
	if err != nil {
		return nil, err
	}
	if generatedKey && result.Duplicated {
		// 服务端生成的 key 只会与本次请求的前一次尝试冲突：该尝试其实已提交
		if result, err = s.recoverCommitted(ctx, event); err != nil {
			return nil, err
		}
	}
	unlock()

	res := &dto.SessionResultDTO{
		EventDate:   day.Format(util.DateLayout),
		Duplicated:  result.Duplicated,
		Accumulated: result.Accumulated,
	}
	if result.Duplicated {
		log.InfoContext(ctx, "duplicate session summary ignored", "user_id", userID, "session_key", *event.SessionKey)
		return res, nil
	}
	res.EventID = event.ID

	if event.ContentID != nil && !result.Accumulated {
		res.Warning = "内容不存在或不属于当前用户，会话数据已记录但未累加到内容"
		log.WarnContext(ctx, "session summary references unresolved content",
			"user_id", userID, "content_id", *event.ContentID, "event_id", event.ID)
	}

	details := map[string]any{
		"event_id":      event.ID,
		"event_date":    res.EventDate,
		"views":         event.Views,
		"revenue":       event.Revenue.String(),
		"new_followers": event.NewFollowers,
	}
	if event.ContentID != nil {
		details["content_id"] = *event.ContentID
	}
	sideCtx, cancel := context.WithTimeout(ctx, s.sideTimeout)
	defer cancel()
	s.activitySvc.Record(sideCtx, userID, model.ActivityRecordSession, details)
	invalidateDashboard(sideCtx, userID)
	return res, nil
}

// recoverCommitted 取回前一次尝试已提交的事件，按其是否累加到内容还原结果
func (s *contentServiceImpl) recoverCommitted(ctx context.Context, event *model.SessionEvent) (*repository.RecordResult, error) {
	stored, err := s.eventRepo.GetBySessionKey(ctx, event.UserID, *event.SessionKey)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: session event missing after duplicate", ErrTransientStore)
	}
	event.ID = stored.ID
	res := &repository.RecordResult{}
	if event.ContentID != nil {
		content, err := s.contentRepo.GetByID(ctx, *event.ContentID)
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		res.Accumulated = content != nil && content.UserID == event.UserID
	}
	log.WarnContext(ctx, "session summary committed by an earlier attempt", "user_id", event.UserID, "event_id", event.ID)
	return res, nil
}

func (s *contentServiceImpl) PublishDue(ctx context.Context, contentID uint64, now time.Time) (bool, error) {
	unlock, err := s.contentLocks.LockContext(ctx, contentID)
	if err != nil {
		return false, err
	}
	defer unlock()

	published, err := s.contentRepo.PublishDue(ctx, contentID, now.UTC())
	if err != nil || !published {
		return published, err
	}

	content, err := s.contentRepo.GetByID(ctx, contentID)
	unlock()
	if err != nil || content == nil {
		log.WarnContext(ctx, "reload published content failed", "content_id", contentID, "err", err)
		return true, nil
	}
	s.afterWrite(ctx, content.UserID, content.ID, content.Status, model.EventContentPublished, model.ActivityPublish, map[string]any{
		"content_id": content.ID,
		"auto":       true,
	})
	return true, nil
}

// afterWrite 写操作成功后的附带动作，均为尽力而为。
// 调用方须先释放内容锁；总耗时受 sideTimeout 限制。
func (s *contentServiceImpl) afterWrite(
	ctx context.Context,
	userID, contentID uint64,
	status model.ContentStatus,
	event, action string,
	details map[string]any,
) {
	ctx, cancel := context.WithTimeout(ctx, s.sideTimeout)
	defer cancel()

	s.activitySvc.Record(ctx, userID, action, details)
	s.publisher.Publish(ctx, &model.LifecycleEvent{
		Event:      event,
		ContentID:  contentID,
		UserID:     userID,
		Status:     status,
		OccurredAt: s.now(),
	})
	invalidateDashboard(ctx, userID)
}

// checkSchedule 仅 scheduled 状态允许且必须带一个晚于 now 的 scheduled_at
func checkSchedule(status model.ContentStatus, at *time.Time, now time.Time) (*time.Time, error) {
	if status != model.ContentStatusScheduled {
		if at != nil {
			return nil, fmt.Errorf("%w: 仅定时发布状态可以设置 scheduled_at", ErrValidation)
		}
		return nil, nil
	}
	if at == nil {
		return nil, fmt.Errorf("%w: 定时发布必须设置 scheduled_at", ErrValidation)
	}
	t := at.UTC().Truncate(time.Microsecond)
	if !t.After(now) {
		return nil, fmt.Errorf("%w: scheduled_at 必须晚于当前时间", ErrValidation)
	}
	return &t, nil
}

func normalizePlatforms(platforms []string) []string {
	res := make([]string, 0, len(platforms))
	seen := make(map[string]struct{}, len(platforms))
	for _, p := range platforms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		res = append(res, p)
	}
	return res
}

func wrapStoreErr(err error) error {
	if err != nil && repository.IsTransient(err) {
		return fmt.Errorf("%w: %w", ErrTransientStore, err)
	}
	return err
}

func toContentDTO(content *model.Content) *dto.ContentDTO {
	item := &dto.ContentDTO{}
	_ = copier.Copy(item, content)
	item.ScheduledAt = content.ScheduledAt
	item.Platforms = append([]string{}, content.Platforms...)
	return item
}
