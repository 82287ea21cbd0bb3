package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstockton/go-xray/encoding"
	"github.com/cstockton/go-xray/internal/fdrgen"
	"github.com/cstockton/go-xray/record"
)

func run(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XRAY_LOG_LEVEL", "")
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd := newRootCmd(bytes.NewReader(stdin), stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerate(t *testing.T) {
	out, _, err := run(t, nil, "-g", "--version", "3", "-c", "3", "--calls", "4")
	require.NoError(t, err)

	g := fdrgen.New(record.Version3)
	g.Threads, g.Calls = 3, 4
	exp, err := g.Bytes()
	require.NoError(t, err)
	assert.Equal(t, string(exp), out)

	_, _, err = run(t, nil, "-g", "--version", "9")
	assert.Error(t, err)

	for _, args := range [][]string{{"-g", "-c", "-1"}, {"-g", "--calls", "-1"}} {
		out, _, err := run(t, nil, args...)
		assert.Error(t, err, "%v", args)
		assert.Empty(t, out)
	}
}

func TestLogLevel(t *testing.T) {
	exec := func(args ...string) string {
		stderr := new(bytes.Buffer)
		cmd := newRootCmd(bytes.NewReader(nil), io.Discard, stderr)
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		return stderr.String()
	}

	t.Setenv("XRAY_LOG_LEVEL", "error")
	assert.NotContains(t, exec("-g"), "generating log", "env level applies without a flag")
	assert.Contains(t, exec("-g", "--log-level", "debug"), "generating log", "flag wins over env")

	path := filepath.Join(t.TempDir(), "xray.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o600))
	assert.NotContains(t, exec("-g", "--config", path), "generating log", "env wins over file")

	t.Setenv("XRAY_LOG_LEVEL", "")
	assert.Contains(t, exec("-g", "--config", path), "generating log")
}

func TestCat(t *testing.T) {
	g := fdrgen.New(record.Version5)
	log, err := g.Bytes()
	require.NoError(t, err)
	recs := g.Records()

	t.Run("Stdin", func(t *testing.T) {
		out, errOut, err := run(t, log, "--log-level", "debug")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, len(recs))
		assert.Equal(t, "0x00000020 "+recs[0].String(), lines[0])
		assert.Contains(t, errOut, "decoding")
		assert.Contains(t, errOut, "decoded")
	})
	t.Run("Files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "v5.xray")
		require.NoError(t, os.WriteFile(path, log, 0o600))

		out, _, err := run(t, log, path, "-")
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2*len(recs))
	})
	t.Run("Kind", func(t *testing.T) {
		out, _, err := run(t, log, "--kind", "NewBuffer,wallclock")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2*g.Threads)
		for _, line := range lines {
			assert.True(t, strings.Contains(line, "record.NewBuffer") ||
				strings.Contains(line, "record.Wallclock"), line)
		}

		_, _, err = run(t, log, "--kind", "nope")
		assert.Error(t, err)
	})
	t.Run("MaxRecords", func(t *testing.T) {
		out, _, err := run(t, log, "-n", "3")
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

		path := filepath.Join(t.TempDir(), "xray.toml")
		require.NoError(t, os.WriteFile(path, []byte("[decode]\nmax_records = 5\n"), 0o600))
		out, _, err = run(t, log, "--config", path)
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5)
	})
	t.Run("DecodeError", func(t *testing.T) {
		bad := append(append([]byte(nil), log...), 0x03)
		_, errOut, err := run(t, bad)
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrUnsupported)
		assert.Contains(t, errOut, "decode failed")

		path := filepath.Join(t.TempDir(), "xray.toml")
		require.NoError(t, os.WriteFile(path, []byte("[decode]\nstop_on_error = false\n"), 0o600))
		good := filepath.Join(t.TempDir(), "v5.xray")
		require.NoError(t, os.WriteFile(good, log, 0o600))

		out, _, err := run(t, bad, "--config", path, "-", good)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 logs failed")
		assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2*len(recs))
	})
	t.Run("OnlyVersion", func(t *testing.T) {
		g2 := fdrgen.New(record.Version2)
		log2, err := g2.Bytes()
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "v2.xray")
		require.NoError(t, os.WriteFile(path, log2, 0o600))

		out, _, err := run(t, log, "--only-version", "2", "-", path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, len(g2.Records()))
		assert.Equal(t, "0x00000020 "+g2.Records()[0].String(), lines[0])

		out, _, err = run(t, log, "--only-version", "3", "-", path)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
	t.Run("Header", func(t *testing.T) {
		h := encoding.NewHeader(record.Version5, 0)
		h.Type = encoding.LogTypeNaive
		_, _, err := run(t, encoding.AppendHeader(nil, h))
		assert.ErrorIs(t, err, encoding.ErrLogType)
	})
}
