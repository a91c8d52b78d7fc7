package interp

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// Service 基于有序值源的插值服务。
//
// 非并发安全：每个过滤会话应持有自己的实例，见 [Service.Clone]。
type Service struct {
	sources      []ValueSource
	prefixes     []string
	cacheAnswers bool
	answers      map[string]answer
	assigned     map[string]string
}

type answer struct {
	value string
	found bool
}

// Option 服务选项函数。
type Option func(*Service)

// WithSources 追加值源，先添加者优先。
func WithSources(sources ...ValueSource) Option {
	return func(s *Service) {
		s.sources = append(s.sources, sources...)
	}
}

// WithPrefixes 设置可省略的名称前缀，如 "project."、"pom."。
func WithPrefixes(prefixes ...string) Option {
	return func(s *Service) {
		s.prefixes = append(s.prefixes, prefixes...)
	}
}

// WithCacheAnswers 设置是否缓存表达式结果（默认关闭）。
func WithCacheAnswers(enabled bool) Option {
	return func(s *Service) {
		s.cacheAnswers = enabled
	}
}

// New 创建插值服务。
func New(opts ...Option) *Service {
	s := &Service{
		answers:  make(map[string]answer),
		assigned: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Clone 返回共享值源、但缓存与赋值独立的新会话。
func (s *Service) Clone() *Service {
	return &Service{
		sources:      slices.Clone(s.sources),
		prefixes:     slices.Clone(s.prefixes),
		cacheAnswers: s.cacheAnswers,
		answers:      make(map[string]answer),
		assigned:     maps.Clone(s.assigned),
	}
}

// SetCacheAnswers 开关结果缓存，关闭时清空已有缓存。
func (s *Service) SetCacheAnswers(enabled bool) {
	s.cacheAnswers = enabled
	if !enabled {
		s.ClearAnswers()
	}
}

// ClearAnswers 清空结果缓存。
func (s *Service) ClearAnswers() {
	clear(s.answers)
}

// Interpolate 解析表达式，guard 为 nil 时使用 [SimpleRecursionInterceptor]。
func (s *Service) Interpolate(expression string, guard RecursionInterceptor) (string, bool, error) {
	return s.InterpolateWithPrefix(expression, "", guard)
}

// InterpolateWithPrefix 解析表达式，并在名称以 prefix 开头时额外尝试去掉 prefix 后查找。
func (s *Service) InterpolateWithPrefix(expression, prefix string, guard RecursionInterceptor) (string, bool, error) {
	if guard == nil {
		guard = NewSimpleRecursionInterceptor()
	}

	return s.interpolate(expression, prefix, guard)
}

func (s *Service) interpolate(expression, prefix string, guard RecursionInterceptor) (string, bool, error) {
	cacheKey := prefix + "\x00" + expression
	if s.cacheAnswers {
		if a, ok := s.answers[cacheKey]; ok {
			return a.value, a.found, nil
		}
	}

	if err := guard.Enter(expression); err != nil {
		return "", false, &InterpolationError{Expression: expression, Err: err}
	}
	value, found, err := s.evaluate(expression, prefix, guard)
	guard.Leave(expression)
	if err != nil {
		var ie *InterpolationError
		if errors.As(err, &ie) {
			return "", false, err
		}

		return "", false, &InterpolationError{Expression: expression, Err: err}
	}

	if s.cacheAnswers {
		s.answers[cacheKey] = answer{value: value, found: found}
	}

	return value, found, nil
}

// lookup 依次查询赋值表与值源，命中值中的 ${...} 会继续展开。
func (s *Service) lookup(name, prefix string, guard RecursionInterceptor) (string, bool, error) {
	if v, ok := s.assigned[name]; ok {
		return v, true, nil
	}

	for _, candidate := range s.candidates(name, prefix) {
		for _, src := range s.sources {
			v, ok := src.Value(candidate)
			if !ok {
				continue
			}
			expanded, err := s.expandNested(v, guard)
			if err != nil {
				return "", false, err
			}

			return expanded, true, nil
		}
	}

	return "", false, nil
}

func (s *Service) candidates(name, prefix string) []string {
	names := []string{name}
	add := func(p string) {
		if p == "" {
			return
		}
		if rest, ok := strings.CutPrefix(name, p); ok && rest != "" && !slices.Contains(names, rest) {
			names = append(names, rest)
		}
	}
	add(prefix)
	for _, p := range s.prefixes {
		add(p)
	}

	return names
}
