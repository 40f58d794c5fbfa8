package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrUserNotFound         = errors.New("用户不存在")
	ErrPostNotFound         = errors.New("帖子不存在")
	ErrRuleNotFound         = errors.New("审核规则不存在")
	ErrRuleInvalid          = errors.New("审核规则配置错误")
	ErrTermNotFound         = errors.New("敏感词不存在")
	ErrTermExist            = errors.New("敏感词已存在")
	ErrReviewItemNotFound   = errors.New("审核任务不存在")
	ErrReviewItemResolved   = errors.New("审核任务已处理")
	ErrContentTypeInvalid   = errors.New("内容类型错误")
	ErrSimilaritySelf       = errors.New("不能与自己比较")
	ErrRecommendationTarget = errors.New("推荐目标无效")
	ErrJobNotFound          = errors.New("任务不存在")
	ErrJobRunning           = errors.New("任务正在运行")
	ErrJobNotRunning        = errors.New("任务未在运行")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrUserNotFound:         NotFound,
	ErrPostNotFound:         NotFound,
	ErrRuleNotFound:         NotFound,
	ErrRuleInvalid:          BadRequest,
	ErrTermNotFound:         NotFound,
	ErrTermExist:            BadRequest,
	ErrReviewItemNotFound:   NotFound,
	ErrReviewItemResolved:   Conflict,
	ErrContentTypeInvalid:   BadRequest,
	ErrSimilaritySelf:       BadRequest,
	ErrRecommendationTarget: BadRequest,
	ErrJobNotFound:          NotFound,
	ErrJobRunning:           Conflict,
	ErrJobNotRunning:        BadRequest,
	UnauthorizedError:       Unauthorized,
	UnExpectedError:         InternalServerError,
}
