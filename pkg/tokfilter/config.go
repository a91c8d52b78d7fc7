package tokfilter

import (
	"fmt"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/delim"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/interp"
)

// Config 过滤器的不可变配置，由 [NewConfig] 构造，可在多个过滤器之间共享。
//
// 内部注册表构造后不再修改，只读访问可并发进行。
type Config struct {
	multiLine      bool
	escape         []rune
	preserveEscape bool
	registry       *delim.Registry
	runes          map[delim.Spec]spec
	prefixPattern  bool
	newGuard       func() interp.RecursionInterceptor
}

// spec 预先拆分为 rune 的分隔符。
type spec struct {
	begin []rune
	end   []rune
}

// options 配置构造选项。
type options struct {
	escape         string
	preserveEscape bool
	delimiters     []string
	delimitersSet  bool
	noPrefix       bool
	newGuard       func() interp.RecursionInterceptor
}

// Option 配置选项函数。
type Option func(*options)

// WithEscapeString 设置转义前缀，空字符串表示不启用转义。
func WithEscapeString(escape string) Option {
	return func(o *options) {
		o.escape = escape
	}
}

// WithPreserveEscapeString 设置转义 token 输出时是否保留转义前缀。
func WithPreserveEscapeString(preserve bool) Option {
	return func(o *options) {
		o.preserveEscape = preserve
	}
}

// WithDelimiters 设置分隔符（"<begin>*<end>" 格式），按给定顺序匹配。
//
// 未设置时仅使用 ${ }。
func WithDelimiters(specs ...string) Option {
	return func(o *options) {
		o.delimiters = specs
		o.delimitersSet = true
	}
}

// WithoutPrefixPattern 改用 [interp.Interpolator.Interpolate] 调用约定，
// 默认使用 [interp.PrefixInterpolator.InterpolateWithPrefix] 并传入空前缀。
func WithoutPrefixPattern() Option {
	return func(o *options) {
		o.noPrefix = true
	}
}

// WithRecursionInterceptor 设置每个过滤器使用的循环引用拦截器工厂。
//
// 默认每个过滤器创建新的 [interp.SimpleRecursionInterceptor]。
func WithRecursionInterceptor(newGuard func() interp.RecursionInterceptor) Option {
	return func(o *options) {
		o.newGuard = newGuard
	}
}

// NewConfig 校验并冻结过滤器配置。multiLine 指定 token 能否跨越换行。
func NewConfig(multiLine bool, opts ...Option) (Config, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	registry, err := delim.NewRegistry()
	if err != nil {
		return Config{}, err
	}
	if o.delimitersSet {
		if err := registry.ReplaceAll(o.delimiters); err != nil {
			return Config{}, fmt.Errorf("tokfilter: %w", err)
		}
	}

	cfg := Config{
		multiLine:      multiLine,
		escape:         []rune(o.escape),
		preserveEscape: o.preserveEscape,
		prefixPattern:  !o.noPrefix,
		newGuard:       o.newGuard,
		registry:       registry,
		runes:          make(map[delim.Spec]spec, registry.Len()),
	}
	for _, s := range registry.Specs() {
		cfg.runes[s] = spec{begin: []rune(s.Begin), end: []rune(s.End)}
	}
	if cfg.newGuard == nil {
		cfg.newGuard = func() interp.RecursionInterceptor {
			return interp.NewSimpleRecursionInterceptor()
		}
	}

	return cfg, nil
}

// MustConfig 同 [NewConfig]，失败时 panic。
func MustConfig(multiLine bool, opts ...Option) Config {
	cfg, err := NewConfig(multiLine, opts...)
	if err != nil {
		panic(fmt.Sprintf("tokfilter: %v", err))
	}

	return cfg
}

// Delimiters 返回按匹配顺序排列的分隔符。
func (c Config) Delimiters() []delim.Spec {
	if c.registry == nil {
		return nil
	}

	return c.registry.Specs()
}

// MultiLine 返回 token 是否可以跨行。
func (c Config) MultiLine() bool { return c.multiLine }

// EscapeString 返回转义前缀，未启用时为空。
func (c Config) EscapeString() string { return string(c.escape) }

func (c Config) useEscape() bool { return len(c.escape) > 0 }

// selectSpec 按注册顺序返回首字符匹配的分隔符，见 [delim.Registry.Select]。
func (c Config) selectSpec(ch rune) (spec, bool) {
	if c.registry == nil {
		return spec{}, false
	}
	d, ok := c.registry.Select(ch)
	if !ok {
		return spec{}, false
	}

	return c.runes[d], true
}
