package filtering

import (
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/interp"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/tokfilter"
)

// DefaultDelimiters 默认分隔符：${ } 与 @ @。
var DefaultDelimiters = []string{"${*}", "@"}

// DefaultPrefixes 查找时可省略的名称前缀。
var DefaultPrefixes = []string{"project.", "pom."}

// Wrapper 包装字符流，多个 Wrapper 按顺序串联。
type Wrapper interface {
	Wrap(src io.RuneReader) io.RuneReader
}

// InterpolationWrapper 每次 Wrap 创建新的 [tokfilter.Filter]，
// 插值会话通过 [interp.Service.Clone] 隔离，因此可被多个复制任务并发使用。
type InterpolationWrapper struct {
	Service *interp.Service
	Config  tokfilter.Config
}

func (w InterpolationWrapper) Wrap(src io.RuneReader) io.RuneReader {
	return tokfilter.New(src, w.Service.Clone(), w.Config)
}

// Chain 依次应用 wrappers。
func Chain(src io.RuneReader, wrappers ...Wrapper) io.RuneReader {
	for _, w := range wrappers {
		src = w.Wrap(src)
	}

	return src
}

// WrapperRequest 描述默认过滤链的组装参数。
type WrapperRequest struct {
	Properties map[string]string // 显式属性，优先级最高
	Filters    []string          // 过滤文件路径
	Env        bool              // 是否以 env.NAME 暴露环境变量
	Prefixes   []string          // 可省略的名称前缀，nil 时使用 DefaultPrefixes

	// EscapeWindowsPaths 对形如 C:\dir 的值转义反斜杠
	EscapeWindowsPaths bool

	Delimiters      []string // nil 时使用 DefaultDelimiters
	Escape          string
	PreserveEscape  bool
	MultiLine       bool
	NoPrefixPattern bool
}

// DefaultWrappers 根据请求组装过滤链。
func DefaultWrappers(req WrapperRequest) ([]Wrapper, error) {
	filterProps := make(interp.MapSource)
	for _, path := range req.Filters {
		props, err := LoadFilterFile(path)
		if err != nil {
			return nil, err
		}
		maps.Copy(filterProps, props)
		slog.Debug("Loaded filter file", "path", path, "count", len(props))
	}

	sources := []interp.ValueSource{interp.MapSource(req.Properties), filterProps}
	if req.Env {
		sources = append(sources, interp.EnvSource("env."))
	}
	if req.EscapeWindowsPaths {
		for i, src := range sources {
			sources[i] = interp.EscapeWindowsPaths(src)
		}
	}

	prefixes := req.Prefixes
	if prefixes == nil {
		prefixes = DefaultPrefixes
	}
	delimiters := req.Delimiters
	if delimiters == nil {
		delimiters = DefaultDelimiters
	}

	opts := []tokfilter.Option{
		tokfilter.WithDelimiters(delimiters...),
		tokfilter.WithEscapeString(req.Escape),
		tokfilter.WithPreserveEscapeString(req.PreserveEscape),
		tokfilter.WithRecursionInterceptor(func() interp.RecursionInterceptor {
			return interp.NewPrefixAwareRecursionInterceptor(prefixes...)
		}),
	}
	if req.NoPrefixPattern {
		opts = append(opts, tokfilter.WithoutPrefixPattern())
	}

	cfg, err := tokfilter.NewConfig(req.MultiLine, opts...)
	if err != nil {
		return nil, fmt.Errorf("build filter config: %w", err)
	}

	svc := interp.New(
		interp.WithSources(sources...),
		interp.WithPrefixes(prefixes...),
	)

	return []Wrapper{InterpolationWrapper{Service: svc, Config: cfg}}, nil
}
