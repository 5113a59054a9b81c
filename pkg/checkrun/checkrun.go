// Package checkrun 执行迁移前的外部检查脚本
//
// 检查目录下每个可执行的普通文件（忽略以 . 开头的文件）按名称顺序运行，
// 参数为 <domain> <source-uri> <param-file>。任一脚本退出码非零或超时即判定失败。
// 超时时整个进程组被 SIGKILL，脚本派生的子进程不会残留。
package checkrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// DefaultTimeout 单个脚本的默认超时
const DefaultTimeout = 10 * time.Second

// waitDelay 杀死进程组后等待输出管道关闭的时间
const waitDelay = 2 * time.Second

// ErrTimeout 脚本运行超时
var ErrTimeout = errors.New("check timed out")

// CheckError 某个检查脚本失败
type CheckError struct {
	Script string
	Err    error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check %s: %v", e.Script, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// Runner 运行检查目录中的脚本
type Runner struct {
	Dir     string
	Timeout time.Duration
}

// New 创建 Runner，timeout <= 0 时使用 DefaultTimeout
func New(dir string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{Dir: dir, Timeout: timeout}
}

// Scripts 返回目录中按名称排序的可执行脚本路径
// 目录不存在时返回空列表
func (r *Runner) Scripts() ([]string, error) {
	if r.Dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checks dir %s: %w", r.Dir, err)
	}

	var scripts []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(r.Dir, e.Name())
		info, err := os.Stat(path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable check")
			continue
		}
		if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	sort.Strings(scripts)
	return scripts, nil
}

// RunAll 依次运行所有脚本，遇到第一个失败即返回 *CheckError
func (r *Runner) RunAll(ctx context.Context, args ...string) error {
	scripts, err := r.Scripts()
	if err != nil {
		return err
	}

	for _, script := range scripts {
		if err := r.Run(ctx, script, args...); err != nil {
			return &CheckError{Script: filepath.Base(script), Err: err}
		}
	}
	return nil
}

// Run 运行单个脚本
func (r *Runner) Run(ctx context.Context, script string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, script, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// 负 pid 表示整个进程组
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	start := time.Now()
	out, err := cmd.CombinedOutput()
	logger := log.Debug().Str("script", script).Dur("elapsed", time.Since(start))
	if len(out) > 0 {
		logger = logger.Str("output", strings.TrimSpace(string(out)))
	}
	logger.Err(err).Msg("Migration check finished")

	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, r.Timeout)
	}
	return fmt.Errorf("run %s: %w", filepath.Base(script), err)
}

// WriteParams 将参数逐行写入唯一的临时文件，返回文件路径
// 调用方负责删除该文件，写入或关闭失败时文件已被删除
func WriteParams(params []string) (string, error) {
	f, err := os.CreateTemp("", "virtcim_mig.*")
	if err != nil {
		return "", fmt.Errorf("create check param file: %w", err)
	}

	if err := writeParams(f, params); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// writeParams 写入参数并关闭 f，无论成功与否 f 都会被关闭
func writeParams(f io.WriteCloser, params []string) error {
	for _, p := range params {
		if _, err := fmt.Fprintln(f, p); err != nil {
			f.Close()
			return fmt.Errorf("write check param file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close check param file: %w", err)
	}
	return nil
}
