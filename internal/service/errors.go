package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrValidation       = errors.New("参数校验失败")
	ErrContentNotFound  = errors.New("内容不存在")
	ErrQuotaExceeded    = errors.New("存储配额不足")
	ErrTransientStore   = errors.New("存储暂时不可用，请稍后重试")
	ErrDashboardTimeout = errors.New("统计查询超时，请稍后重试")
	UnauthorizedError   = errors.New("权限不足")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrValidation:       BadRequest,
	ErrContentNotFound:  NotFound,
	ErrQuotaExceeded:    Forbidden,
	ErrTransientStore:   ServiceUnavailable,
	ErrDashboardTimeout: ServiceUnavailable,
	UnauthorizedError:   Unauthorized,
	UnExpectedError:     InternalServerError,
}

// CodeOf 沿错误链查找业务码
func CodeOf(err error) (int, bool) {
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return 0, false
}

// IsTerminal 业务错误，重试没有意义
func IsTerminal(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, UnauthorizedError)
}
