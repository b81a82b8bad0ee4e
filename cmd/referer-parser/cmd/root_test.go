package cmd

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/Aman-CERP/referer-parser/internal/errors"
	"github.com/Aman-CERP/referer-parser/pkg/version"
)

// testEnv isolates a CLI run: empty user config, HOME and working
// directory in temp dirs and no REFPARSER_* variables.
type testEnv struct {
	home string
	xdg  string
	dir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{home: t.TempDir(), xdg: t.TempDir(), dir: t.TempDir()}

	t.Setenv("HOME", env.home)
	t.Setenv("XDG_CONFIG_HOME", env.xdg)
	for _, k := range []string{
		"REFPARSER_DATA_PATH", "REFPARSER_INTERNAL_DOMAINS", "REFPARSER_WATCH",
		"REFPARSER_CACHE_SIZE", "REFPARSER_WORKERS", "REFPARSER_FORMAT", "REFPARSER_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Chdir(env.dir)

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	return env
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the root command with args and stdin.
func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	outBuf, errBuf := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"classify", "lookup", "stream", "sources", "validate", "config", "logs", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"debug", "config", "profile-cpu", "profile-mem", "profile-trace"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
}

func TestVersionCmd_Default(t *testing.T) {
	cmd := newVersionCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "referer-parser")
	assert.Contains(t, buf.String(), version.Version)
}

func TestVersionCmd_Short(t *testing.T) {
	cmd := newVersionCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--short"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version.Version+"\n", buf.String())
}

func TestVersionCmd_JSON(t *testing.T) {
	cmd := newVersionCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())

	var info version.BuildInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestRootCmd_MissingExplicitConfig(t *testing.T) {
	newTestEnv(t)

	_, _, err := run(t, "", "--config", "missing.yaml", "sources")
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeConfigNotFound, perrors.GetCode(err))
}

func TestRootCmd_BrokenConfig(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, ".referer-parser.yaml", "classify: [")

	// Given: a project config that does not parse
	// When: running a command that needs configuration
	_, _, err := run(t, "", "sources")

	// Then: it fails with a config error
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeConfigInvalid, perrors.GetCode(err))

	// But: version still runs on defaults
	stdout, stderr, err := run(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
	assert.Contains(t, stderr, "config_load_failed_using_defaults")
}

func TestRootCmd_DebugWritesLogFile(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := run(t, "", "--debug", "classify", "http://t.co/x")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(env.home, ".referer-parser", "logs", "referer-parser.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug_logging_enabled")
	assert.Contains(t, string(data), "batch_classify_complete")
	assert.Contains(t, string(data), "debug_logging_stopped")
}

func TestRootCmd_ProfileFlags(t *testing.T) {
	env := newTestEnv(t)
	cpu := filepath.Join(env.dir, "cpu.prof")
	heap := filepath.Join(env.dir, "heap.prof")

	_, _, err := run(t, "", "--profile-cpu", cpu, "--profile-mem", heap, "validate")
	require.NoError(t, err)

	assert.FileExists(t, cpu)
	info, err := os.Stat(heap)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
