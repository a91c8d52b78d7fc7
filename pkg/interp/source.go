package interp

import (
	"os"
	"strings"
)

// ValueSource 按名称提供原始值。
type ValueSource interface {
	Value(name string) (string, bool)
}

// SourceFunc 函数形式的 [ValueSource]。
type SourceFunc func(name string) (string, bool)

func (f SourceFunc) Value(name string) (string, bool) {
	return f(name)
}

// MapSource 基于 map 的只读值源。
type MapSource map[string]string

func (m MapSource) Value(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// EnvSource 生成当前环境变量快照，key 统一加上 prefix（如 "env."）。
func EnvSource(prefix string) MapSource {
	vars := make(MapSource)
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if ok && name != "" {
			vars[prefix+name] = value
		}
	}

	return vars
}

// PrefixedSource 仅响应以 Prefix 开头的名称，去掉前缀后查询 Source。
type PrefixedSource struct {
	Prefix string
	Source ValueSource
}

func (p PrefixedSource) Value(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, p.Prefix)
	if !ok {
		return "", false
	}

	return p.Source.Value(rest)
}

// EscapeWindowsPaths 对形如 "C:\dir" 的值做反斜杠转义，
// 使其写入 properties 等以反斜杠为转义符的文件后仍保持原义。
func EscapeWindowsPaths(src ValueSource) ValueSource {
	return SourceFunc(func(name string) (string, bool) {
		v, ok := src.Value(name)
		if ok && isWindowsPath(v) {
			v = strings.ReplaceAll(v, `\`, `\\`)
		}

		return v, ok
	})
}

func isWindowsPath(v string) bool {
	return len(v) >= 3 && v[1] == ':' && v[2] == '\\' &&
		((v[0] >= 'A' && v[0] <= 'Z') || (v[0] >= 'a' && v[0] <= 'z'))
}
