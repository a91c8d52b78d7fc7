package interp

import (
	"fmt"
	"strings"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/errdefs"
)

// Interpolator 将表达式解析为替换值。
//
// found=false 表示没有可用的值，调用方应保留原始文本。
type Interpolator interface {
	Interpolate(expression string, guard RecursionInterceptor) (value string, found bool, err error)
}

// PrefixInterpolator 支持显式前缀的调用约定。
//
// prefix 非空时，以其开头的表达式会额外尝试去掉前缀后的名称；
// prefix 为空时与 [Interpolator.Interpolate] 等价。
type PrefixInterpolator interface {
	Interpolator
	InterpolateWithPrefix(expression, prefix string, guard RecursionInterceptor) (value string, found bool, err error)
}

// AnswerCacher 可缓存重复表达式结果的插值服务。
type AnswerCacher interface {
	SetCacheAnswers(enabled bool)
}

// InterpolationError 表达式解析失败。
type InterpolationError struct {
	Expression string
	Err        error
}

func (e *InterpolationError) Error() string {
	return fmt.Sprintf("interp: %s: %v", e.Expression, e.Err)
}

// Unwrap 同时暴露 [errdefs.ErrInterpolation] 与底层原因。
func (e *InterpolationError) Unwrap() []error {
	return []error{errdefs.ErrInterpolation, e.Err}
}

// CycleError 表达式之间出现循环引用。
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return "expression cycle detected: " + strings.Join(e.Cycle, " -> ")
}

func (e *CycleError) Unwrap() error {
	return errdefs.ErrRecursion
}
