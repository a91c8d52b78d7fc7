package tokfilter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/errdefs"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/interp"
)

// Filter 流式插值过滤器。
//
// 每个实例绑定一个数据源，在整个读取周期内保持状态，不可复用于其他数据源。
type Filter struct {
	src   io.RuneReader
	ip    interp.Interpolator
	guard interp.RecursionInterceptor
	cfg   Config

	// out 待输出的替换值或字面文本，不再参与扫描
	out runeQueue
	// preserved 转义前缀之后、未构成 token 的字符，原样输出
	preserved optRune
	// replay 已从数据源读出、需要重新扫描的字符
	replay runeQueue
	srcEOF bool
	// carry Read 中未写完的 UTF-8 字节
	carry []byte
}

var (
	_ io.RuneReader = (*Filter)(nil)
	_ io.Reader     = (*Filter)(nil)
)

// New 创建绑定到 src 的过滤器。
//
// 若 ip 实现了 [interp.AnswerCacher]，会开启结果缓存。
func New(src io.RuneReader, ip interp.Interpolator, cfg Config) *Filter {
	if c, ok := ip.(interp.AnswerCacher); ok {
		c.SetCacheAnswers(true)
	}

	var guard interp.RecursionInterceptor
	if cfg.newGuard != nil {
		guard = cfg.newGuard()
	} else {
		guard = interp.NewSimpleRecursionInterceptor()
	}

	return &Filter{
		src:   src,
		ip:    ip,
		guard: guard,
		cfg:   cfg,
	}
}

// NewReader 同 [New]，r 未实现 [io.RuneReader] 时使用 [bufio.Reader] 包装。
//
// 字符按 UTF-8 解码，非法字节读出为 U+FFFD，因此"无分隔符时输出等于输入"
// 只对合法 UTF-8 输入成立。其他编码应先经 golang.org/x/text 解码。
func NewReader(r io.Reader, ip interp.Interpolator, cfg Config) *Filter {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}

	return New(rr, ip, cfg)
}

// ReadRune 返回过滤后的下一个字符。
//
// 数据源结束时返回 [io.EOF]；插值失败返回同时满足 [errdefs.ErrConfiguration]
// 与 [errdefs.ErrInterpolation] 的错误。
func (f *Filter) ReadRune() (rune, int, error) {
	// 解析为空字符串的 token 不产生输出，循环继续扫描后续字符
	for {
		if r, ok := f.out.pop(); ok {
			return r, runeLen(r), nil
		}
		if f.preserved.ok {
			r := f.preserved.r
			f.preserved = optRune{}
			return r, runeLen(r), nil
		}

		ch, err := f.next()
		if err != nil {
			return 0, 0, err
		}
		if f.breaks(ch) {
			return ch, 1, nil
		}

		if f.cfg.useEscape() && ch == f.cfg.escape[0] {
			err = f.scanEscape(ch)
		} else if s, ok := f.cfg.selectSpec(ch); ok {
			err = f.scanToken(s, []rune{ch}, false)
		} else {
			return ch, runeLen(ch), nil
		}
		if err != nil {
			return 0, 0, err
		}
	}
}

// next 优先从 replay 取字符，否则读取数据源。
func (f *Filter) next() (rune, error) {
	if r, ok := f.replay.pop(); ok {
		return r, nil
	}
	if f.srcEOF {
		return 0, io.EOF
	}

	r, _, err := f.src.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			f.srcEOF = true
			return 0, io.EOF
		}

		return 0, err
	}

	return r, nil
}

// breaks 报告 ch 是否中断 token 匹配。
func (f *Filter) breaks(ch rune) bool {
	return ch == '\n' && !f.cfg.multiLine
}

// abort 处理扫描中途的读取错误：EOF 时已读字符按字面输出，
// 其他错误时放回 replay 以便重试，并将错误原样返回。
func (f *Filter) abort(key []rune, err error) error {
	if errors.Is(err, io.EOF) {
		f.out.push(key...)
		return nil
	}
	f.replay.unread(key...)

	return err
}

// scanEscape 匹配转义前缀及其后的 begin token 首字符。
func (f *Filter) scanEscape(first rune) error {
	key := []rune{first}
	for _, want := range f.cfg.escape[1:] {
		ch, err := f.next()
		if err != nil {
			return f.abort(key, err)
		}
		if ch != want || f.breaks(ch) {
			f.out.push(key...)
			f.replay.unread(ch)
			return nil
		}
		key = append(key, ch)
	}

	ch, err := f.next()
	if err != nil {
		return f.abort(key, err)
	}
	if f.breaks(ch) {
		f.out.push(key...)
		f.replay.unread(ch)
		return nil
	}

	s, ok := f.cfg.selectSpec(ch)
	if !ok {
		// 转义前缀后不是 token：前缀保留，该字符原样输出且不再扫描
		f.out.push(key...)
		f.preserved = optRune{r: ch, ok: true}
		return nil
	}

	return f.scanToken(s, append(key, ch), true)
}

// scanToken 在已匹配 begin token 首字符后继续匹配整个 token。
//
// key 保存 token 原文（含转义前缀与两端分隔符）。
func (f *Filter) scanToken(s spec, key []rune, escaped bool) error {
	for pos := 1; pos < len(s.begin); pos++ {
		ch, err := f.next()
		if err != nil {
			return f.abort(key, err)
		}
		if f.breaks(ch) {
			f.out.push(key...)
			f.out.push(ch)
			return nil
		}
		if ch != s.begin[pos] {
			f.out.push(key...)
			f.replay.unread(ch)
			return nil
		}
		key = append(key, ch)
	}

	for {
		ch, err := f.next()
		if err != nil {
			return f.abort(key, err)
		}
		if f.breaks(ch) {
			f.out.push(key...)
			f.out.push(ch)
			return nil
		}
		key = append(key, ch)
		if ch == s.end[0] {
			break
		}
	}

	// end token 其余字符匹配失败时，首字符之后的已读字符重新参与扫描
	tail := len(key)
	for pos := 1; pos < len(s.end); pos++ {
		ch, err := f.next()
		if err != nil {
			return f.abort(key, err)
		}
		if f.breaks(ch) {
			f.out.push(key...)
			f.out.push(ch)
			return nil
		}
		if ch != s.end[pos] {
			f.out.push(key[:tail]...)
			f.replay.unread(append(key[tail:], ch)...)
			return nil
		}
		key = append(key, ch)
	}

	return f.resolve(s, key, escaped)
}

// resolve 处理完整 token：转义、替换或保留原文。
func (f *Filter) resolve(s spec, key []rune, escaped bool) error {
	if escaped {
		if f.cfg.preserveEscape {
			f.out.push(key...)
		} else {
			f.out.push(key[len(f.cfg.escape):]...)
		}

		return nil
	}

	expr := string(key[len(s.begin) : len(key)-len(s.end)])
	value, found, err := f.interpolate(expr)
	if err != nil {
		return fmt.Errorf("tokfilter: %w: %s: %w", errdefs.ErrConfiguration, string(key), err)
	}
	if !found {
		// 无值：begin 与表达式原样输出，end token 重新扫描
		f.out.push(key[:len(key)-len(s.end)]...)
		f.replay.unread(s.end...)

		return nil
	}
	for _, r := range value {
		f.out.push(r)
	}

	return nil
}

func (f *Filter) interpolate(expr string) (string, bool, error) {
	if f.cfg.prefixPattern {
		if p, ok := f.ip.(interp.PrefixInterpolator); ok {
			return p.InterpolateWithPrefix(expr, "", f.guard)
		}
	}

	return f.ip.Interpolate(expr, f.guard)
}

func runeLen(r rune) int {
	if n := utf8.RuneLen(r); n > 0 {
		return n
	}

	return utf8.RuneLen(utf8.RuneError)
}
