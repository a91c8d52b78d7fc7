package filtering_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/errdefs"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/filtering"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestLoadFilterFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    map[string]string
	}{
		{
			name:    "properties keeps references",
			file:    "app.properties",
			content: "name=demo\nurl=http://${host}:8080\n",
			want:    map[string]string{"name": "demo", "url": "http://${host}:8080"},
		},
		{
			name:    "unknown extension is properties",
			file:    "filter.txt",
			content: "a = 1\n",
			want:    map[string]string{"a": "1"},
		},
		{
			name:    "yaml nested",
			file:    "app.yaml",
			content: "db:\n  host: localhost\n  port: 5432\ntags:\n  - a\n  - b\n",
			want:    map[string]string{"db.host": "localhost", "db.port": "5432", "tags.0": "a", "tags.1": "b"},
		},
		{
			name:    "toml tables",
			file:    "app.toml",
			content: "[server]\naddr = \":8080\"\ndebug = true\n",
			want:    map[string]string{"server.addr": ":8080", "server.debug": "true"},
		},
		{
			name:    "json object",
			file:    "app.json",
			content: `{"model": {"name": "gpt-4", "max": 2048}, "empty": null}`,
			want:    map[string]string{"model.name": "gpt-4", "model.max": "2048", "empty": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content)

			got, err := filtering.LoadFilterFile(path)
			require.NoError(t, err)
			for k, v := range tt.want {
				assert.Equal(t, v, got[k], "key %s", k)
			}
			assert.Len(t, got, len(tt.want))
		})
	}
}

func TestLoadFilterFile_Missing(t *testing.T) {
	_, err := filtering.LoadFilterFile(filepath.Join(t.TempDir(), "none.properties"))
	require.Error(t, err)
}

func TestDefaultWrappers_FilterAndCopy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.properties"), "host=localhost\nurl=http://${host}:8080\nname=base\n")
	writeFile(t, filepath.Join(dir, "override.yaml"), "name: override\n")
	writeFile(t, filepath.Join(dir, "src", "app.conf"),
		"name=${name}\nurl=@url@\nversion=${project.version}\nhome=${env.FILTERING_TEST_HOME}\nkeep=\\${name}\nmissing=${nope}\n")
	t.Setenv("FILTERING_TEST_HOME", "/home/test")

	wrappers, err := filtering.DefaultWrappers(filtering.WrapperRequest{
		Properties: map[string]string{"version": "1.0.0"},
		Filters:    []string{filepath.Join(dir, "base.properties"), filepath.Join(dir, "override.yaml")},
		Env:        true,
		Escape:     `\`,
	})
	require.NoError(t, err)
	require.Len(t, wrappers, 1)

	req := filtering.Request{
		From:      filepath.Join(dir, "src", "app.conf"),
		To:        filepath.Join(dir, "out", "nested", "app.conf"),
		Filtering: true,
		Wrappers:  wrappers,
	}
	require.NoError(t, filtering.CopyFile(context.Background(), req))

	want := "name=override\nurl=http://localhost:8080\nversion=1.0.0\nhome=/home/test\nkeep=${name}\nmissing=${nope}\n"
	assert.Equal(t, want, readFile(t, req.To))
}

func TestDefaultWrappers_EscapeWindowsPaths(t *testing.T) {
	wrappers, err := filtering.DefaultWrappers(filtering.WrapperRequest{
		Properties:         map[string]string{"dir": `C:\build\out`},
		EscapeWindowsPaths: true,
	})
	require.NoError(t, err)

	out, err := io.ReadAll(asReader(filtering.Chain(strings.NewReader("path=${dir}"), wrappers...)))
	require.NoError(t, err)
	assert.Equal(t, `path=C:\\build\\out`, string(out))
}

func TestDefaultWrappers_BadDelimiter(t *testing.T) {
	_, err := filtering.DefaultWrappers(filtering.WrapperRequest{Delimiters: []string{"*"}})
	require.ErrorIs(t, err, errdefs.ErrConfiguration)
}

func TestDefaultWrappers_InterpolationError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "loop.properties"), "a=${b}\nb=${a}\n")
	writeFile(t, filepath.Join(dir, "in.txt"), "value=${a}")

	wrappers, err := filtering.DefaultWrappers(filtering.WrapperRequest{
		Filters: []string{filepath.Join(dir, "loop.properties")},
	})
	require.NoError(t, err)

	err = filtering.CopyFile(context.Background(), filtering.Request{
		From:      filepath.Join(dir, "in.txt"),
		To:        filepath.Join(dir, "out.txt"),
		Filtering: true,
		Wrappers:  wrappers,
	})
	require.ErrorIs(t, err, errdefs.ErrRecursion)
	assert.NoFileExists(t, filepath.Join(dir, "out.txt"))
}

func TestCopyFile_WithoutFilteringIsVerbatim(t *testing.T) {
	dir := t.TempDir()
	content := "raw ${x} \xff\xfe bytes"
	writeFile(t, filepath.Join(dir, "in.bin"), content)

	wrappers, err := filtering.DefaultWrappers(filtering.WrapperRequest{Properties: map[string]string{"x": "X"}})
	require.NoError(t, err)

	req := filtering.Request{
		From:     filepath.Join(dir, "in.bin"),
		To:       filepath.Join(dir, "out.bin"),
		Wrappers: wrappers,
	}
	require.NoError(t, filtering.CopyFile(context.Background(), req))
	assert.Equal(t, content, readFile(t, req.To))
}

func TestCopyFile_Encoding(t *testing.T) {
	dir := t.TempDir()
	// ISO-8859-1: "café ${x}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in.txt"), []byte("caf\xe9 ${x}"), 0o644))

	wrappers, err := filtering.DefaultWrappers(filtering.WrapperRequest{Properties: map[string]string{"x": "é"}})
	require.NoError(t, err)

	req := filtering.Request{
		From:      filepath.Join(dir, "in.txt"),
		To:        filepath.Join(dir, "out.txt"),
		Filtering: true,
		Wrappers:  wrappers,
		Encoding:  "ISO-8859-1",
	}
	require.NoError(t, filtering.CopyFile(context.Background(), req))
	assert.Equal(t, "caf\xe9 \xe9", readFile(t, req.To))

	req.Encoding = "no-such-charset"
	req.Overwrite = true
	require.Error(t, filtering.CopyFile(context.Background(), req))
}

func TestStream_UnsupportedRunesAreReplaced(t *testing.T) {
	wrappers, err := filtering.DefaultWrappers(filtering.WrapperRequest{Properties: map[string]string{"who": "世界"}})
	require.NoError(t, err)

	var out strings.Builder
	err = filtering.Stream(context.Background(), &out, strings.NewReader("hi ${who}!"), "ISO-8859-1", wrappers...)
	require.NoError(t, err)
	assert.Equal(t, "hi \x1a\x1a!", out.String())
}

func TestCopyFile_UnsupportedRunesKeepFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "in.txt"), "caf\xe9 ${who}\n")

	wrappers, err := filtering.DefaultWrappers(filtering.WrapperRequest{Properties: map[string]string{"who": "世界"}})
	require.NoError(t, err)

	req := filtering.Request{
		From:      filepath.Join(dir, "in.txt"),
		To:        filepath.Join(dir, "out.txt"),
		Filtering: true,
		Wrappers:  wrappers,
		Encoding:  "ISO-8859-1",
	}
	require.NoError(t, filtering.CopyFile(context.Background(), req))
	assert.Equal(t, "caf\xe9 \x1a\x1a\n", readFile(t, req.To))
}

func TestCopyFile_Overwrite(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "in.txt")
	to := filepath.Join(dir, "out.txt")
	writeFile(t, from, "new")
	writeFile(t, to, "old")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(from, past, past))

	require.NoError(t, filtering.CopyFile(context.Background(), filtering.Request{From: from, To: to}))
	assert.Equal(t, "old", readFile(t, to), "destination newer than source is kept")

	require.NoError(t, filtering.CopyFile(context.Background(), filtering.Request{From: from, To: to, Overwrite: true}))
	assert.Equal(t, "new", readFile(t, to))
}

func TestCopyFile_Errors(t *testing.T) {
	dir := t.TempDir()

	err := filtering.CopyFile(context.Background(), filtering.Request{From: filepath.Join(dir, "none"), To: filepath.Join(dir, "x")})
	require.Error(t, err)

	err = filtering.CopyFile(context.Background(), filtering.Request{From: dir, To: filepath.Join(dir, "x")})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	writeFile(t, filepath.Join(dir, "in"), "x")
	err = filtering.CopyFile(ctx, filtering.Request{From: filepath.Join(dir, "in"), To: filepath.Join(dir, "out")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPlanTreeAndCopyAll(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "a.txt"), "a=${v}")
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "b=@v@")
	writeFile(t, filepath.Join(src, "img", "logo.PNG"), "png ${v}")

	wrappers, err := filtering.DefaultWrappers(filtering.WrapperRequest{Properties: map[string]string{"v": "1"}})
	require.NoError(t, err)

	dst := filepath.Join(dir, "dst")
	reqs, err := filtering.PlanTree(src, dst, filtering.Request{Filtering: true, Wrappers: wrappers}, filtering.DefaultNonFilteredExtensions)
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	require.NoError(t, filtering.CopyAll(context.Background(), reqs, 2))
	assert.Equal(t, "a=1", readFile(t, filepath.Join(dst, "a.txt")))
	assert.Equal(t, "b=1", readFile(t, filepath.Join(dst, "sub", "b.txt")))
	assert.Equal(t, "png ${v}", readFile(t, filepath.Join(dst, "img", "logo.PNG")))
}

func TestPlanTree_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")

	reqs, err := filtering.PlanTree(filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"), filtering.Request{Filtering: true}, nil)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].Filtering)
	assert.Equal(t, filepath.Join(dir, "b.txt"), reqs[0].To)
}

func TestFilterable(t *testing.T) {
	assert.True(t, filtering.Filterable("a.txt", filtering.DefaultNonFilteredExtensions))
	assert.True(t, filtering.Filterable("Makefile", filtering.DefaultNonFilteredExtensions))
	assert.False(t, filtering.Filterable("a.JPG", filtering.DefaultNonFilteredExtensions))
	assert.False(t, filtering.Filterable("a.zip", []string{".zip"}))
}

func TestLookupEncoding(t *testing.T) {
	enc, err := filtering.LookupEncoding("")
	require.NoError(t, err)
	require.NotNil(t, enc)

	_, err = filtering.LookupEncoding("UTF-8")
	require.NoError(t, err)

	_, err = filtering.LookupEncoding("bogus")
	require.Error(t, err)
}

// asReader 将 RuneReader 适配为 io.Reader。
func asReader(rr io.RuneReader) io.Reader {
	if r, ok := rr.(io.Reader); ok {
		return r
	}
	panic("wrapper does not implement io.Reader")
}
