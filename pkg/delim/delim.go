package delim

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/errdefs"
)

// Separator 分隔 begin 与 end 的字符。
const Separator = "*"

// Spec 一对分隔符，按值比较。
type Spec struct {
	Begin string
	End   string
}

// DefaultSpec 默认分隔符 ${ }。
var DefaultSpec = MustParse("${*}")

// Parse 解析 "<begin>*<end>" 形式的分隔符。
func Parse(spec string) (Spec, error) {
	begin, end, found := strings.Cut(spec, Separator)
	if !found {
		end = begin
	}
	if begin == "" || end == "" {
		return Spec{}, fmt.Errorf("%w: malformed delimiter spec %q", errdefs.ErrConfiguration, spec)
	}
	if !utf8.ValidString(begin) || !utf8.ValidString(end) {
		return Spec{}, fmt.Errorf("%w: delimiter spec %q is not valid UTF-8", errdefs.ErrConfiguration, spec)
	}

	return Spec{Begin: begin, End: end}, nil
}

// MustParse 同 [Parse]，失败时 panic，用于常量初始化。
func MustParse(spec string) Spec {
	s, err := Parse(spec)
	if err != nil {
		panic(err)
	}

	return s
}

// String 返回 "<begin>*<end>" 形式。
func (s Spec) String() string {
	return s.Begin + Separator + s.End
}

// First 返回 begin token 的首字符。
func (s Spec) First() rune {
	r, _ := utf8.DecodeRuneInString(s.Begin)
	return r
}

// Registry 有序、去重的分隔符集合。
//
// 零值为空集合；[NewRegistry] 返回仅含 [DefaultSpec] 的集合。
type Registry struct {
	specs []Spec
}

// NewRegistry 创建注册表。未提供 specs 时使用默认分隔符。
func NewRegistry(specs ...string) (*Registry, error) {
	r := &Registry{}
	if len(specs) == 0 {
		r.specs = []Spec{DefaultSpec}
		return r, nil
	}
	if err := r.ReplaceAll(specs); err != nil {
		return nil, err
	}

	return r, nil
}

// Add 解析并追加分隔符，已存在时忽略。
func (r *Registry) Add(spec string) error {
	s, err := Parse(spec)
	if err != nil {
		return err
	}
	r.insert(s)

	return nil
}

func (r *Registry) insert(s Spec) {
	if !slices.Contains(r.specs, s) {
		r.specs = append(r.specs, s)
	}
}

// Remove 移除分隔符，返回其是否存在。
func (r *Registry) Remove(spec string) (bool, error) {
	s, err := Parse(spec)
	if err != nil {
		return false, err
	}
	i := slices.Index(r.specs, s)
	if i < 0 {
		return false, nil
	}
	r.specs = slices.Delete(r.specs, i, i+1)

	return true, nil
}

// ReplaceAll 清空并按给定顺序重新填充。
//
// 任一项非法时返回错误，注册表保持原样。
func (r *Registry) ReplaceAll(specs []string) error {
	parsed := make([]Spec, 0, len(specs))
	for _, spec := range specs {
		s, err := Parse(spec)
		if err != nil {
			return err
		}
		if !slices.Contains(parsed, s) {
			parsed = append(parsed, s)
		}
	}
	r.specs = parsed

	return nil
}

// Specs 返回按注册顺序排列的副本。
func (r *Registry) Specs() []Spec {
	return slices.Clone(r.specs)
}

// Len 返回分隔符数量。
func (r *Registry) Len() int {
	return len(r.specs)
}

// Select 返回首字符等于 ch 的第一个分隔符。
func (r *Registry) Select(ch rune) (Spec, bool) {
	for _, s := range r.specs {
		if s.First() == ch {
			return s, true
		}
	}

	return Spec{}, false
}
