package checkrun

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode))
	return path
}

// processGone 进程不存在或已经是僵尸进程
func processGone(pid int) bool {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return true
	}
	// 格式: pid (comm) state ...
	s := string(data)
	idx := strings.LastIndex(s, ")")
	if idx < 0 || idx+2 >= len(s) {
		return true
	}
	return s[idx+2] == 'Z'
}

func TestScripts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScript(t, dir, "20-second", "exit 0", 0o755)
	writeScript(t, dir, "10-first", "exit 0", 0o755)
	writeScript(t, dir, ".hidden", "exit 1", 0o755)
	writeScript(t, dir, "not-exec", "exit 1", 0o644)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	scripts, err := New(dir, 0).Scripts()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "10-first"),
		filepath.Join(dir, "20-second"),
	}, scripts)
}

func TestScripts_MissingDir(t *testing.T) {
	t.Parallel()

	scripts, err := New(filepath.Join(t.TempDir(), "absent"), 0).Scripts()
	require.NoError(t, err)
	assert.Empty(t, scripts)

	scripts, err = New("", 0).Scripts()
	require.NoError(t, err)
	assert.Empty(t, scripts)
}

func TestRunAll(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name       string
		scripts    map[string]string
		wantScript string
	}{
		{
			name:    "all pass",
			scripts: map[string]string{"a": "exit 0", "b": "test \"$1\" = dom1"},
		},
		{
			name:       "second fails",
			scripts:    map[string]string{"a": "exit 0", "b": "exit 3", "c": "exit 0"},
			wantScript: "b",
		},
		{
			name:       "argument check fails",
			scripts:    map[string]string{"a": "test \"$2\" = qemu:///other"},
			wantScript: "a",
		},
		{
			name:    "empty dir",
			scripts: map[string]string{},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			for name, body := range tc.scripts {
				writeScript(t, dir, name, body, 0o755)
			}

			err := New(dir, 5*time.Second).RunAll(context.Background(), "dom1", "qemu:///system", "/dev/null")
			if tc.wantScript == "" {
				require.NoError(t, err)
				return
			}

			var checkErr *CheckError
			require.ErrorAs(t, err, &checkErr)
			assert.Equal(t, tc.wantScript, checkErr.Script)
		})
	}
}

func TestRun_TimeoutKillsProcessGroup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pidFile := filepath.Join(dir, "child.pid")
	script := writeScript(t, dir, "slow", "sleep 30 &\necho $! > "+pidFile+"\nwait", 0o755)

	r := New(dir, 500*time.Millisecond)
	start := time.Now()
	err := r.Run(context.Background(), script)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, elapsed, 10*time.Second)

	data, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return processGone(pid) }, 3*time.Second, 50*time.Millisecond,
		"background child %d survived the timeout", pid)
}

func TestWriteParams(t *testing.T) {
	t.Parallel()

	path, err := WriteParams([]string{"one", "two=2", ""})
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	assert.True(t, strings.HasPrefix(filepath.Base(path), "virtcim_mig."))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo=2\n\n", string(data))
}

// paramSink 记录写入内容，可以让写入或关闭失败
type paramSink struct {
	bytes.Buffer
	writeErr error
	closeErr error
	closed   int
}

func (s *paramSink) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.Buffer.Write(p)
}

func (s *paramSink) Close() error {
	s.closed++
	return s.closeErr
}

func TestWriteParams_Errors(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("no space left on device")

	testcases := []struct {
		name     string
		sink     *paramSink
		wantErr  string
		wantData string
	}{
		{name: "ok", sink: &paramSink{}, wantData: "a\nb\n"},
		{name: "write fails", sink: &paramSink{writeErr: errDisk}, wantErr: "write check param file"},
		{name: "close fails", sink: &paramSink{closeErr: errDisk}, wantErr: "close check param file", wantData: "a\nb\n"},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := writeParams(tc.sink, []string{"a", "b"})
			assert.Equal(t, 1, tc.sink.closed)
			assert.Equal(t, tc.wantData, tc.sink.String())
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, errDisk)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
