package filter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/errdefs"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	var out bytes.Buffer
	cmd := New()
	cmd.Reader = strings.NewReader(stdin)
	cmd.Writer = &out
	cmd.ErrWriter = &bytes.Buffer{}

	err := cmd.Run(context.Background(), append([]string{"filter"}, args...))

	return out.String(), err
}

func TestFilter_Stdin(t *testing.T) {
	t.Setenv("FILTERING_CMD_USER", "alice")

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{
			name:  "properties flag",
			args:  []string{"-D", "name=demo"},
			stdin: "hello ${name} @name@\n",
			want:  "hello demo demo\n",
		},
		{
			name:  "env source",
			stdin: "user=${env.FILTERING_CMD_USER}",
			want:  "user=alice",
		},
		{
			name:  "env disabled",
			args:  []string{"--filter-env=false"},
			stdin: "user=${env.FILTERING_CMD_USER}",
			want:  "user=${env.FILTERING_CMD_USER}",
		},
		{
			name:  "escape",
			args:  []string{"-D", "name=demo"},
			stdin: `\${name} ${name}`,
			want:  "${name} demo",
		},
		{
			name:  "custom delimiters",
			args:  []string{"-d", "#{*}", "-D", "name=demo"},
			stdin: "#{name} ${name} @name@",
			want:  "demo ${name} @name@",
		},
		{
			name:  "prefix",
			args:  []string{"-D", "version=1.0"},
			stdin: "${project.version}",
			want:  "1.0",
		},
		{
			name:  "multi line off",
			args:  []string{"-D", "a=x"},
			stdin: "${a\n}",
			want:  "${a\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_Files(t *testing.T) {
	dir := t.TempDir()
	props := filepath.Join(dir, "app.properties")
	in1 := filepath.Join(dir, "a.txt")
	in2 := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(props, []byte("greeting=hi\n"), 0o600))
	require.NoError(t, os.WriteFile(in1, []byte("${greeting} "), 0o600))
	require.NoError(t, os.WriteFile(in2, []byte("@greeting@"), 0o600))

	got, err := run(t, "", "-f", props, in1, in2)
	require.NoError(t, err)
	assert.Equal(t, "hi hi", got)
}

func TestFilter_Errors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		_, err := run(t, "", "does-not-exist.txt")
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad delimiter", func(t *testing.T) {
		_, err := run(t, "x", "-d", "*")
		require.ErrorIs(t, err, errdefs.ErrConfiguration)
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := run(t, "${a}", "-D", "a=${b}", "-D", "b=${a}")
		require.ErrorIs(t, err, errdefs.ErrRecursion)
	})
}
