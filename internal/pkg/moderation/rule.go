package moderation

import (
	"Touchstone/internal/model"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// KeywordFilterConfig 敏感词规则
type KeywordFilterConfig struct {
	Fields     []string `json:"fields"`
	Categories []string `json:"categories"`
	MinMatches int      `json:"min_matches"`
}

// ContentLengthConfig 长度规则，按字符计数，MaxLength 为 0 表示不限
type ContentLengthConfig struct {
	Field     string `json:"field"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
}

// SpamDetectionConfig 垃圾内容检测参数，交给 SpamDetector 解释
type SpamDetectionConfig struct {
	WindowMinutes int     `json:"window_minutes"`
	MaxDuplicates int     `json:"max_duplicates"`
	Threshold     float64 `json:"threshold"`
}

// BehaviorAnalysisConfig 用户历史行为规则，阈值为 0 表示不检查该项
type BehaviorAnalysisConfig struct {
	WindowHours   int     `json:"window_hours"`
	MaxViolations int64   `json:"max_violations"`
	MaxScore      float64 `json:"max_score"`
}

// CompiledRule 已校验的规则
type CompiledRule struct {
	ID       uint64
	Name     string
	Type     model.RuleType
	Severity float64
	Action   model.RuleAction
	Priority int
	check    checker
}

type checker interface {
	check(ctx context.Context, env *evalEnv, in *Content) (hit bool, reason string, err error)
}

// Compile 解析并校验规则配置
func Compile(r *model.ModerationRule) (*CompiledRule, error) {
	if r == nil {
		return nil, errors.New("nil rule")
	}
	if r.SeverityScore < 0 {
		return nil, errors.Errorf("rule %d: negative severity %v", r.ID, r.SeverityScore)
	}
	switch r.Action {
	case model.RuleActionPass, model.RuleActionQueue, model.RuleActionReject:
	default:
		return nil, errors.Errorf("rule %d: unknown action %q", r.ID, r.Action)
	}

	var (
		c   checker
		err error
	)
	switch r.Type {
	case model.RuleTypeKeywordFilter:
		c, err = compileKeyword(r.Config)
	case model.RuleTypeContentLength:
		c, err = compileLength(r.Config)
	case model.RuleTypeSpamDetection:
		c, err = compileSpam(r.Config)
	case model.RuleTypeBehaviorAnalysis:
		c, err = compileBehavior(r.Config)
	default:
		return nil, errors.Errorf("rule %d: unknown type %q", r.ID, r.Type)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "rule %d (%s)", r.ID, r.Type)
	}

	return &CompiledRule{
		ID:       r.ID,
		Name:     r.Name,
		Type:     r.Type,
		Severity: r.SeverityScore,
		Action:   r.Action,
		Priority: r.Priority,
		check:    c,
	}, nil
}

func decodeConfig(raw model.JSONRaw, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, "decode config")
	}
	return nil
}

func validField(f string) bool {
	return f == FieldContent || f == FieldTitle
}

type keywordRule struct {
	fields     []string
	categories map[string]struct{}
	minMatches int
}

func compileKeyword(raw model.JSONRaw) (checker, error) {
	var cfg KeywordFilterConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = []string{FieldContent, FieldTitle}
	}
	for _, f := range cfg.Fields {
		if !validField(f) {
			return nil, errors.Errorf("unknown field %q", f)
		}
	}
	if cfg.MinMatches < 0 {
		return nil, errors.Errorf("negative min_matches %d", cfg.MinMatches)
	}
	if cfg.MinMatches == 0 {
		cfg.MinMatches = 1
	}
	k := &keywordRule{fields: cfg.Fields, minMatches: cfg.MinMatches}
	if len(cfg.Categories) > 0 {
		k.categories = make(map[string]struct{}, len(cfg.Categories))
		for _, c := range cfg.Categories {
			k.categories[c] = struct{}{}
		}
	}
	return k, nil
}

func (k *keywordRule) check(_ context.Context, env *evalEnv, in *Content) (bool, string, error) {
	texts := make([]string, 0, len(k.fields))
	for _, f := range k.fields {
		texts = append(texts, env.normalized(f, in))
	}

	matched := make([]string, 0)
	for _, term := range env.snapshot.Terms {
		if k.categories != nil {
			if _, ok := k.categories[term.Category]; !ok {
				continue
			}
		}
		for _, text := range texts {
			if strings.Contains(text, term.Normalized) {
				matched = append(matched, term.Term)
				break
			}
		}
	}
	if len(matched) < k.minMatches {
		return false, "", nil
	}
	return true, "命中敏感词: " + strings.Join(matched, ", "), nil
}

type lengthRule struct {
	field string
	min   int
	max   int
}

func compileLength(raw model.JSONRaw) (checker, error) {
	var cfg ContentLengthConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Field == "" {
		cfg.Field = FieldContent
	}
	if !validField(cfg.Field) {
		return nil, errors.Errorf("unknown field %q", cfg.Field)
	}
	if cfg.MinLength < 0 || cfg.MaxLength < 0 {
		return nil, errors.New("negative length bound")
	}
	if cfg.MaxLength > 0 && cfg.MinLength > cfg.MaxLength {
		return nil, errors.Errorf("min_length %d > max_length %d", cfg.MinLength, cfg.MaxLength)
	}
	return &lengthRule{field: cfg.Field, min: cfg.MinLength, max: cfg.MaxLength}, nil
}

func (l *lengthRule) check(_ context.Context, _ *evalEnv, in *Content) (bool, string, error) {
	n := utf8.RuneCountInString(in.Field(l.field))
	if n < l.min {
		return true, fmt.Sprintf("%s长度 %d 小于下限 %d", l.field, n, l.min), nil
	}
	if l.max > 0 && n > l.max {
		return true, fmt.Sprintf("%s长度 %d 超过上限 %d", l.field, n, l.max), nil
	}
	return false, "", nil
}

type spamRule struct {
	cfg SpamDetectionConfig
}

func compileSpam(raw model.JSONRaw) (checker, error) {
	var cfg SpamDetectionConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.WindowMinutes < 0 || cfg.MaxDuplicates < 0 || cfg.Threshold < 0 {
		return nil, errors.New("negative spam parameter")
	}
	return &spamRule{cfg: cfg}, nil
}

// 未接入检测后端时不命中
func (s *spamRule) check(ctx context.Context, env *evalEnv, in *Content) (bool, string, error) {
	if env.spam == nil {
		return false, "", nil
	}
	return env.spam.Detect(ctx, in, s.cfg)
}

type behaviorRule struct {
	cfg BehaviorAnalysisConfig
}

func compileBehavior(raw model.JSONRaw) (checker, error) {
	var cfg BehaviorAnalysisConfig
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.MaxViolations < 0 || cfg.MaxScore < 0 || cfg.WindowHours < 0 {
		return nil, errors.New("negative behavior parameter")
	}
	if cfg.MaxViolations == 0 && cfg.MaxScore == 0 {
		return nil, errors.New("behavior rule needs max_violations or max_score")
	}
	if cfg.WindowHours == 0 {
		cfg.WindowHours = 24
	}
	return &behaviorRule{cfg: cfg}, nil
}

func (b *behaviorRule) check(ctx context.Context, env *evalEnv, in *Content) (bool, string, error) {
	if env.violations == nil {
		return false, "", errors.New("violation source not configured")
	}
	if b.cfg.MaxViolations > 0 {
		since := env.now.Add(-time.Duration(b.cfg.WindowHours) * time.Hour)
		count, err := env.violations.CountViolationsSince(ctx, in.UserID, since)
		if err != nil {
			return false, "", err
		}
		if count > b.cfg.MaxViolations {
			return true, fmt.Sprintf("近%d小时违规 %d 次", b.cfg.WindowHours, count), nil
		}
	}
	if b.cfg.MaxScore > 0 {
		score, err := env.violations.ViolationScore(ctx, in.UserID)
		if err != nil {
			return false, "", err
		}
		if score > b.cfg.MaxScore {
			return true, fmt.Sprintf("累计违规分 %.2f 超过阈值", score), nil
		}
	}
	return false, "", nil
}
