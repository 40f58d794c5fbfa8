package moderation

import (
	"Touchstone/internal/model"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"
)

type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Verdict 一次评估的结论
type Verdict struct {
	Status    Status
	Action    model.RuleAction
	Severity  float64
	Triggered []model.TriggeredRule
	Reasons   []string
	Degraded  bool
	Version   uint64
}

func (v *Verdict) Reason() string {
	return strings.Join(v.Reasons, "; ")
}

// apply 追加一条命中规则，reject 一旦出现不再降级
func (v *Verdict) apply(r *CompiledRule, reason string) {
	v.Triggered = append(v.Triggered, model.TriggeredRule{
		RuleID:   r.ID,
		RuleName: r.Name,
		RuleType: r.Type,
		Action:   r.Action,
		Severity: r.Severity,
		Reason:   reason,
	})
	v.Reasons = append(v.Reasons, reason)
	v.Severity += r.Severity
	v.Action = MergeAction(v.Action, r.Action)
}

func (v *Verdict) degrade(reason string) {
	v.Degraded = true
	v.Reasons = append(v.Reasons, reason)
	v.Action = MergeAction(v.Action, model.RuleActionQueue)
}

func (v *Verdict) finish() {
	switch v.Action {
	case model.RuleActionReject:
		v.Status = StatusRejected
	case model.RuleActionQueue:
		v.Status = StatusPending
	default:
		v.Status = StatusApproved
	}
}

func actionRank(a model.RuleAction) int {
	switch a {
	case model.RuleActionReject:
		return 2
	case model.RuleActionQueue:
		return 1
	default:
		return 0
	}
}

// MergeAction reject > queue > pass
func MergeAction(cur, next model.RuleAction) model.RuleAction {
	if actionRank(next) > actionRank(cur) {
		return next
	}
	if cur == "" {
		return model.RuleActionPass
	}
	return cur
}

// PendingVerdict 引擎不可用时的安全结论
func PendingVerdict(reason string) *Verdict {
	v := &Verdict{Action: model.RuleActionQueue, Degraded: true, Reasons: []string{reason}}
	v.finish()
	return v
}

type evalEnv struct {
	snapshot   *Snapshot
	norm       Normalizer
	spam       SpamDetector
	violations ViolationSource
	now        time.Time
	cache      map[string]string
}

func (e *evalEnv) normalized(field string, in *Content) string {
	if s, ok := e.cache[field]; ok {
		return s
	}
	s := e.norm.Normalize(in.Field(field))
	e.cache[field] = s
	return s
}

// Evaluator 按快照逐条执行规则
type Evaluator struct {
	store      *Store
	violations ViolationSource
	spam       SpamDetector
	sink       LogSink
	now        func() time.Time
}

// NewEvaluator spam 和 sink 可以为 nil
func NewEvaluator(store *Store, violations ViolationSource, spam SpamDetector, sink LogSink) *Evaluator {
	return &Evaluator{
		store:      store,
		violations: violations,
		spam:       spam,
		sink:       sink,
		now:        time.Now,
	}
}

// Evaluate 评估内容。有规则命中或降级时先写审核日志再返回；
// 日志写入失败时仍返回结论，同时返回错误。
func (e *Evaluator) Evaluate(ctx context.Context, in *Content) (*Verdict, error) {
	snap := e.store.Current()
	if snap == nil {
		log.WarnContext(ctx, "moderation snapshot not loaded, fallback to manual review", "content_type", in.ContentType, "user_id", in.UserID)
		v := PendingVerdict("审核规则未加载，转人工审核")
		return v, e.writeLog(ctx, in, v)
	}

	env := &evalEnv{
		snapshot:   snap,
		norm:       e.store.Normalizer(),
		spam:       e.spam,
		violations: e.violations,
		now:        e.now(),
		cache:      make(map[string]string, 2),
	}

	v := &Verdict{Action: model.RuleActionPass, Version: snap.Version}
	for _, r := range snap.Rules {
		hit, reason, err := r.check.check(ctx, env, in)
		if err != nil {
			log.WarnContext(ctx, "moderation rule check failed", "rule_id", r.ID, "type", r.Type, "err", err)
			v.degrade(fmt.Sprintf("规则 %s 检查失败", r.Name))
			continue
		}
		if hit {
			v.apply(r, reason)
		}
	}
	v.finish()

	if len(v.Triggered) > 0 || v.Degraded {
		return v, e.writeLog(ctx, in, v)
	}
	return v, nil
}

func (e *Evaluator) writeLog(ctx context.Context, in *Content, v *Verdict) error {
	if e.sink == nil {
		return nil
	}
	entry := &model.ModerationLog{
		ContentType:    in.ContentType,
		ContentID:      in.ContentID,
		UserID:         in.UserID,
		Action:         string(v.Action),
		Reason:         v.Reason(),
		TriggeredRules: v.Triggered,
		SeverityScore:  v.Severity,
	}
	if err := e.sink.WriteLog(ctx, entry); err != nil {
		return fmt.Errorf("write moderation log: %w", err)
	}
	return nil
}
