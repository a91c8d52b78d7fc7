package filtering

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultNonFilteredExtensions 默认不做过滤的二进制扩展名。
var DefaultNonFilteredExtensions = []string{"jpg", "jpeg", "gif", "bmp", "png"}

// ctxCheckInterval 过滤复制时检查 context 的字符间隔。
const ctxCheckInterval = 4096

// Request 描述一次文件复制。
type Request struct {
	From      string
	To        string
	Filtering bool      // 是否应用 Wrappers
	Wrappers  []Wrapper // 按顺序串联
	Encoding  string    // 字符集名称 (IANA)，空表示 UTF-8
	Overwrite bool      // false 时目标文件不旧于源文件则跳过
}

// CopyFile 执行一次复制。
//
// 目标先写入同目录临时文件再重命名，失败时不会留下半个文件。
func CopyFile(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(req.From)
	if err != nil {
		return fmt.Errorf("stat %s: %w", req.From, err)
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: source is a directory", req.From)
	}

	if !req.Overwrite {
		if dst, err := os.Stat(req.To); err == nil && !dst.ModTime().Before(info.ModTime()) {
			slog.Debug("Skip up-to-date file", "from", req.From, "to", req.To)
			return nil
		}
	}

	dir := filepath.Dir(req.To)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(req.To)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := copyContent(ctx, tmp, req); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, req.To); err != nil {
		return fmt.Errorf("rename to %s: %w", req.To, err)
	}

	slog.Debug("Copied file", "from", req.From, "to", req.To, "filtering", req.Filtering)

	return nil
}

func copyContent(ctx context.Context, dst io.Writer, req Request) error {
	in, err := os.Open(req.From)
	if err != nil {
		return fmt.Errorf("open %s: %w", req.From, err)
	}
	defer func() { _ = in.Close() }()

	if !req.Filtering || len(req.Wrappers) == 0 {
		if _, err := io.Copy(dst, in); err != nil {
			return fmt.Errorf("copy %s: %w", req.From, err)
		}

		return nil
	}

	if err := Stream(ctx, dst, in, req.Encoding, req.Wrappers...); err != nil {
		return fmt.Errorf("filter %s: %w", req.From, err)
	}

	return nil
}

// Stream 按 encoding 解码 src，经 wrappers 过滤后以同一编码写入 dst。
//
// 替换值中目标字符集不支持的字符输出为该字符集的替换字符 (ISO-8859-1 为 0x1A)。
func Stream(ctx context.Context, dst io.Writer, src io.Reader, encodingName string, wrappers ...Wrapper) error {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return err
	}

	// 目标字符集无法表示的字符写为替换字符，不中断复制
	encoder := encoding.ReplaceUnsupported(enc.NewEncoder()).Writer(dst)
	out := bufio.NewWriter(encoder)
	rr := Chain(bufio.NewReader(enc.NewDecoder().Reader(src)), wrappers...)

	if err := pump(ctx, out, rr); err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return err
	}
	if c, ok := encoder.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// pump 逐字符复制，定期检查 ctx。
func pump(ctx context.Context, out *bufio.Writer, src io.RuneReader) error {
	for n := 1; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		r, _, err := src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}
		if _, err := out.WriteRune(r); err != nil {
			return err
		}
	}
}

// LookupEncoding 按 IANA 名称查找字符集，空名称返回 UTF-8。
func LookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return unicode.UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}

	return enc, nil
}

// CopyAll 并发执行多个复制，workers<=0 表示不限制并发数。
//
// 任一复制失败会取消其余尚未开始的复制，返回第一个错误。
func CopyAll(ctx context.Context, reqs []Request, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for _, req := range reqs {
		g.Go(func() error {
			return CopyFile(ctx, req)
		})
	}

	return g.Wait()
}

// Filterable 报告 path 的扩展名是否不在 nonFiltered 中（不区分大小写）。
func Filterable(path string, nonFiltered []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return true
	}

	return !slices.ContainsFunc(nonFiltered, func(e string) bool {
		return strings.EqualFold(strings.TrimPrefix(e, "."), ext)
	})
}

// PlanTree 为 from 下的每个文件生成复制请求，保持相对路径。
//
// from 为文件时仅生成一个请求。template 提供除 From/To 外的公共字段；
// 扩展名位于 nonFiltered 中的文件关闭过滤。
func PlanTree(from, to string, template Request, nonFiltered []string) ([]Request, error) {
	info, err := os.Stat(from)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", from, err)
	}

	newReq := func(src, dst string) Request {
		req := template
		req.From = src
		req.To = dst
		req.Filtering = template.Filtering && Filterable(src, nonFiltered)

		return req
	}

	if !info.IsDir() {
		return []Request{newReq(from, to)}, nil
	}

	var reqs []Request
	err = filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		reqs = append(reqs, newReq(path, filepath.Join(to, rel)))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", from, err)
	}

	return reqs, nil
}
