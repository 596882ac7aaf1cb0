package inspect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ProcessExecutionError 表示外部查询命令执行失败（非 0 退出码或无法启动）。
type ProcessExecutionError struct {
	Command  string
	Args     []string
	ExitCode int // 无法启动时为 -1
	Stderr   string
	Err      error
}

func (e *ProcessExecutionError) Error() string {
	cmd := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("命令执行失败 [%s]（exit=%d）：%v", cmd, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("命令执行失败 [%s]（exit=%d）：%v：%s", cmd, e.ExitCode, e.Err, stderr)
}

func (e *ProcessExecutionError) Unwrap() error { return e.Err }

// Command 通过 `rpm -qlp <url>` 读取远端包的文件清单。
// rpm 自己负责下载，本进程只解析 stdout。
type Command struct {
	Path string
}

func NewCommand(path string) *Command {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultRPMCommand
	}
	return &Command{Path: path}
}

func (c *Command) ListFiles(ctx context.Context, packageURL string) ([]string, error) {
	args := []string{"-qlp", packageURL}
	zap.L().Sugar().Debugf("Exec: [%s %s]", c.Path, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			code = ee.ExitCode()
		}
		return nil, &ProcessExecutionError{
			Command:  c.Path,
			Args:     args,
			ExitCode: code,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return splitLines(stdout.String()), nil
}
