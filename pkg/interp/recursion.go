package interp

import (
	"slices"
	"strings"
)

// RecursionInterceptor 记录当前解析链上的表达式并检测循环。
type RecursionInterceptor interface {
	// Enter 标记表达式开始解析；表达式已在链上时返回 *CycleError。
	Enter(expression string) error
	// Leave 标记表达式解析结束。
	Leave(expression string)
}

// SimpleRecursionInterceptor 按表达式原文检测循环。
type SimpleRecursionInterceptor struct {
	stack []string
}

// NewSimpleRecursionInterceptor 创建默认拦截器。
func NewSimpleRecursionInterceptor() *SimpleRecursionInterceptor {
	return &SimpleRecursionInterceptor{}
}

func (s *SimpleRecursionInterceptor) Enter(expression string) error {
	return s.enter(expression)
}

func (s *SimpleRecursionInterceptor) Leave(expression string) {
	s.leave(expression)
}

func (s *SimpleRecursionInterceptor) enter(name string) error {
	if i := slices.Index(s.stack, name); i >= 0 {
		cycle := append(slices.Clone(s.stack[i:]), name)
		return &CycleError{Cycle: cycle}
	}
	s.stack = append(s.stack, name)

	return nil
}

func (s *SimpleRecursionInterceptor) leave(name string) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i] == name {
			s.stack = slices.Delete(s.stack, i, i+1)
			return
		}
	}
}

// PrefixAwareRecursionInterceptor 去掉已知前缀后再检测循环，
// 因此 ${project.version} 与 ${version} 视为同一表达式。
type PrefixAwareRecursionInterceptor struct {
	SimpleRecursionInterceptor

	prefixes []string
}

// NewPrefixAwareRecursionInterceptor 创建带前缀归一化的拦截器。
func NewPrefixAwareRecursionInterceptor(prefixes ...string) *PrefixAwareRecursionInterceptor {
	return &PrefixAwareRecursionInterceptor{prefixes: prefixes}
}

func (p *PrefixAwareRecursionInterceptor) Enter(expression string) error {
	return p.enter(p.normalize(expression))
}

func (p *PrefixAwareRecursionInterceptor) Leave(expression string) {
	p.leave(p.normalize(expression))
}

func (p *PrefixAwareRecursionInterceptor) normalize(expression string) string {
	for _, prefix := range p.prefixes {
		if prefix != "" && strings.HasPrefix(expression, prefix) {
			return strings.TrimPrefix(expression, prefix)
		}
	}

	return expression
}
