package tokfilter

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/errdefs"
)

// ReadRunes 逐字符填充 dst，遇到数据源结束时返回已填充数量。
//
// 仅在一个字符都未读到时返回 [io.EOF]。
func (f *Filter) ReadRunes(dst []rune) (int, error) {
	for i := range dst {
		r, _, err := f.ReadRune()
		if err != nil {
			if i > 0 && errors.Is(err, io.EOF) {
				return i, nil
			}

			return i, err
		}
		dst[i] = r
	}

	return len(dst), nil
}

// Read 实现 [io.Reader]，输出 UTF-8 编码的过滤结果。
//
// 放不下的多字节字符会在下一次 Read 中继续输出。
func (f *Filter) Read(p []byte) (int, error) {
	n := copy(p, f.carry)
	f.carry = f.carry[n:]

	for n < len(p) {
		r, size, err := f.ReadRune()
		if err != nil {
			if n > 0 && errors.Is(err, io.EOF) {
				return n, nil
			}

			return n, err
		}
		if n+size <= len(p) {
			n += utf8.EncodeRune(p[n:], r)
			continue
		}

		var buf [utf8.UTFMax]byte
		m := utf8.EncodeRune(buf[:], r)
		c := copy(p[n:], buf[:m])
		n += c
		f.carry = append(f.carry[:0], buf[c:m]...)
	}

	return n, nil
}

// Skip 丢弃 n 个过滤后的字符（非数据源字符），返回实际跳过数量。
//
// n 为负数时返回 [errdefs.ErrInvalidArgument]。
// 上一次 Read 残留的半个字符属于已计数的字符，会被一并丢弃。
func (f *Filter) Skip(n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("tokfilter: %w: skip value is negative: %d", errdefs.ErrInvalidArgument, n)
	}
	f.carry = nil

	for i := range n {
		if _, _, err := f.ReadRune(); err != nil {
			if errors.Is(err, io.EOF) {
				return i, nil
			}

			return i, err
		}
	}

	return n, nil
}
