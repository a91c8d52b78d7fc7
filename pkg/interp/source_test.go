package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/errdefs"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/interp"
)

func TestEnvSource(t *testing.T) {
	t.Setenv("INTERP_TEST_VAR", "a=b")

	src := interp.EnvSource("env.")
	got, ok := src.Value("env.INTERP_TEST_VAR")
	require.True(t, ok)
	assert.Equal(t, "a=b", got, "only the first '=' separates name and value")

	_, ok = src.Value("INTERP_TEST_VAR")
	assert.False(t, ok)
}

func TestPrefixedSource(t *testing.T) {
	src := interp.PrefixedSource{Prefix: "project.", Source: interp.MapSource{"version": "2.1"}}

	got, ok := src.Value("project.version")
	require.True(t, ok)
	assert.Equal(t, "2.1", got)

	_, ok = src.Value("version")
	assert.False(t, ok)
}

func TestEscapeWindowsPaths(t *testing.T) {
	src := interp.EscapeWindowsPaths(interp.MapSource{
		"win":   `C:\work\out`,
		"unc":   `\\server\share`,
		"plain": `a\b`,
	})

	tests := []struct {
		name string
		want string
	}{
		{name: "win", want: `C:\\work\\out`},
		{name: "unc", want: `\\server\share`},
		{name: "plain", want: `a\b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := src.Value(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecursionInterceptors(t *testing.T) {
	simple := interp.NewSimpleRecursionInterceptor()
	require.NoError(t, simple.Enter("a"))
	require.NoError(t, simple.Enter("b"))
	err := simple.Enter("a")
	require.ErrorIs(t, err, errdefs.ErrRecursion)
	simple.Leave("b")
	simple.Leave("a")
	require.NoError(t, simple.Enter("a"))

	aware := interp.NewPrefixAwareRecursionInterceptor("project.")
	require.NoError(t, aware.Enter("project.version"))
	err = aware.Enter("version")
	var cycle *interp.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"version", "version"}, cycle.Cycle)
	aware.Leave("project.version")
	require.NoError(t, aware.Enter("version"))
}
