package service

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/metrics"
	"Touchstone/internal/pkg/moderation"
	"Touchstone/internal/pkg/util"
	"Touchstone/internal/repository"
	"context"
	log "log/slog"
	"time"
)

type ModerationService interface {
	// CheckContent 发布前同步审核，待审核且带内容 ID 时自动入队
	CheckContent(ctx context.Context, req *dto.ModerationCheckReq) (*dto.ModerationResultDTO, error)
	// EnqueueReview 调用方持久化内容后补充入队
	EnqueueReview(ctx context.Context, req *dto.EnqueueReviewReq) (string, error)
	GetUserStat(ctx context.Context, userID uint64) (*dto.UserModerationStatDTO, error)
	GetOverview(ctx context.Context) (*dto.ModerationOverviewDTO, error)
}

// Thresholds 严重度到队列优先级的映射
type Thresholds struct {
	High float64
	Mid  float64
}

type moderationServiceImpl struct {
	evaluator  *moderation.Evaluator
	store      *moderation.Store
	queueRepo  repository.ReviewQueueRepo
	statRepo   repository.ModerationStatRepo
	logRepo    repository.ModerationLogRepo
	thresholds Thresholds
}

func NewModerationService(
	evaluator *moderation.Evaluator,
	store *moderation.Store,
	queueRepo repository.ReviewQueueRepo,
	statRepo repository.ModerationStatRepo,
	logRepo repository.ModerationLogRepo,
	thresholds Thresholds,
) ModerationService {
	return &moderationServiceImpl{
		evaluator:  evaluator,
		store:      store,
		queueRepo:  queueRepo,
		statRepo:   statRepo,
		logRepo:    logRepo,
		thresholds: thresholds,
	}
}

// QueuePriority 严重度 >= High 为 urgent，>= Mid 为 high
func QueuePriority(severity float64, t Thresholds) string {
	switch {
	case severity >= t.High:
		return model.QueuePriorityUrgent
	case severity >= t.Mid:
		return model.QueuePriorityHigh
	default:
		return model.QueuePriorityNormal
	}
}

// ContentStatusFor 审核结论对应的内容状态
func ContentStatusFor(status string) int8 {
	switch moderation.Status(status) {
	case moderation.StatusApproved:
		return model.ContentStatusPublished
	case moderation.StatusRejected:
		return model.ContentStatusRejected
	default:
		return model.ContentStatusManual
	}
}

// statDelta 每次评估 total+1；有规则命中 moderated+1；
// 待审核 flagged+1；拒绝 rejected+1 并累加严重度
func statDelta(userID uint64, v *moderation.Verdict, now time.Time) repository.StatDelta {
	d := repository.StatDelta{UserID: userID, Total: 1}
	if len(v.Triggered) > 0 {
		d.Moderated = 1
	}
	switch v.Status {
	case moderation.StatusPending:
		d.Flagged = 1
		d.ViolationAt = &now
	case moderation.StatusRejected:
		d.Rejected = 1
		d.Score = v.Severity
		d.ViolationAt = &now
	}
	return d
}

func (s *moderationServiceImpl) CheckContent(ctx context.Context, req *dto.ModerationCheckReq) (*dto.ModerationResultDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}

	start := time.Now()
	content := &moderation.Content{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		UserID:      req.UserID,
		Title:       req.Title,
		Body:        req.Content,
	}

	verdict, err := s.evaluator.Evaluate(ctx, content)
	if err != nil {
		if verdict == nil {
			log.ErrorContext(ctx, "moderation evaluate failed, fallback to manual review", "user_id", req.UserID, "err", err)
			verdict = moderation.PendingVerdict("审核服务异常，转人工审核")
		} else {
			log.WarnContext(ctx, "moderation log write failed", "user_id", req.UserID, "err", err)
		}
	}
	metrics.RecordVerdict(req.ContentType, string(verdict.Status), verdict.Degraded, time.Since(start))

	if err = s.statRepo.ApplyDelta(ctx, statDelta(req.UserID, verdict, time.Now())); err != nil {
		log.ErrorContext(ctx, "update moderation stat error", "user_id", req.UserID, "err", err)
	}

	res := toModerationResult(verdict)
	if verdict.Status == moderation.StatusPending {
		res.QueuePriority = QueuePriority(verdict.Severity, s.thresholds)
		if req.ContentID != nil {
			item := &model.ReviewQueueItem{
				ContentType:   req.ContentType,
				ContentID:     *req.ContentID,
				UserID:        req.UserID,
				Priority:      res.QueuePriority,
				SeverityScore: verdict.Severity,
				Reason:        truncate(verdict.Reason(), 1000),
			}
			if err = s.queueRepo.Enqueue(ctx, item); err != nil {
				log.ErrorContext(ctx, "enqueue review item error", "content_id", *req.ContentID, "err", err)
			}
		}
	}
	return res, nil
}

func (s *moderationServiceImpl) EnqueueReview(ctx context.Context, req *dto.EnqueueReviewReq) (string, error) {
	if err := util.ValidateDTO(req); err != nil {
		return "", ErrParamInvalid
	}
	priority := QueuePriority(req.SeverityScore, s.thresholds)
	item := &model.ReviewQueueItem{
		ContentType:   req.ContentType,
		ContentID:     req.ContentID,
		UserID:        req.UserID,
		Priority:      priority,
		SeverityScore: req.SeverityScore,
		Reason:        req.Reason,
	}
	if err := s.queueRepo.Enqueue(ctx, item); err != nil {
		return "", err
	}
	return priority, nil
}

func (s *moderationServiceImpl) GetUserStat(ctx context.Context, userID uint64) (*dto.UserModerationStatDTO, error) {
	stat, err := s.statRepo.GetStat(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stat == nil {
		return &dto.UserModerationStatDTO{UserID: userID}, nil
	}
	return toStatDTO(stat), nil
}

func (s *moderationServiceImpl) GetOverview(ctx context.Context) (*dto.ModerationOverviewDTO, error) {
	byStatus, err := s.queueRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.queueRepo.CountPendingByPriority(ctx)
	if err != nil {
		return nil, err
	}
	actions, err := s.logRepo.CountByActionSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	top, err := s.statRepo.TopViolators(ctx, 10)
	if err != nil {
		return nil, err
	}

	res := &dto.ModerationOverviewDTO{
		QueueByStatus:     byStatus,
		PendingByPriority: byPriority,
		ActionsLast24h:    actions,
		TopViolators:      make([]*dto.UserModerationStatDTO, 0, len(top)),
	}
	for _, st := range top {
		res.TopViolators = append(res.TopViolators, toStatDTO(st))
	}
	if snap := s.store.Current(); snap != nil {
		res.SnapshotVersion = snap.Version
	}
	return res, nil
}

func toModerationResult(v *moderation.Verdict) *dto.ModerationResultDTO {
	res := &dto.ModerationResultDTO{
		Status:         string(v.Status),
		Action:         string(v.Action),
		SeverityScore:  v.Severity,
		Reason:         v.Reason(),
		Degraded:       v.Degraded,
		TriggeredRules: make([]*dto.TriggeredRuleDTO, 0, len(v.Triggered)),
	}
	for _, r := range v.Triggered {
		res.TriggeredRules = append(res.TriggeredRules, &dto.TriggeredRuleDTO{
			RuleID:   r.RuleID,
			RuleName: r.RuleName,
			RuleType: string(r.RuleType),
			Action:   string(r.Action),
			Severity: r.Severity,
			Reason:   r.Reason,
		})
	}
	return res
}

func toStatDTO(st *model.UserModerationStat) *dto.UserModerationStatDTO {
	return &dto.UserModerationStatDTO{
		UserID:          st.UserID,
		TotalContent:    st.TotalContent,
		ModeratedCount:  st.ModeratedCount,
		RejectedCount:   st.RejectedCount,
		FlaggedCount:    st.FlaggedCount,
		ViolationScore:  st.ViolationScore,
		LastViolationAt: util.FormatTimePtr(st.LastViolationAt),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// moderationSources 把日志与统计仓库适配为评估器需要的依赖
type moderationSources struct {
	logRepo  repository.ModerationLogRepo
	statRepo repository.ModerationStatRepo
}

// NewModerationSources 返回同时实现 ViolationSource 和 LogSink 的适配器
func NewModerationSources(logRepo repository.ModerationLogRepo, statRepo repository.ModerationStatRepo) interface {
	moderation.ViolationSource
	moderation.LogSink
} {
	return &moderationSources{logRepo: logRepo, statRepo: statRepo}
}

func (m *moderationSources) CountViolationsSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	return m.logRepo.CountViolationsSince(ctx, userID, since)
}

func (m *moderationSources) ViolationScore(ctx context.Context, userID uint64) (float64, error) {
	stat, err := m.statRepo.GetStat(ctx, userID)
	if err != nil {
		return 0, err
	}
	if stat == nil {
		return 0, nil
	}
	return stat.ViolationScore, nil
}

func (m *moderationSources) WriteLog(ctx context.Context, entry *model.ModerationLog) error {
	entry.Reason = truncate(entry.Reason, 1000)
	return m.logRepo.CreateLog(ctx, entry)
}

