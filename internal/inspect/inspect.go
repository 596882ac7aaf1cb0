// Package inspect 读取 RPM 包内的文件清单（manifest）。
package inspect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	KindRPM    = "rpm"
	KindNative = "native"

	// DefaultRPMCommand 是 KindRPM 默认调用的可执行文件。
	DefaultRPMCommand = "rpm"
)

// PackageInspector 返回包安装后的绝对文件路径列表（顺序与包内一致）。
//
// 约束：实现不做重试；任何错误都由上层视为致命错误。
type PackageInspector interface {
	ListFiles(ctx context.Context, packageURL string) ([]string, error)
}

// New 按 kind 构造 inspector。
// - rpm：调用外部 `rpm -qlp <url>`（rpmCommand 为空时使用 DefaultRPMCommand）
// - native：用 c 下载包并直接解析 RPM header
func New(kind, rpmCommand string, c *http.Client) (PackageInspector, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindRPM:
		return NewCommand(rpmCommand), nil
	case KindNative:
		if c == nil {
			return nil, fmt.Errorf("native inspector 需要 http client")
		}
		return &Native{Client: c}, nil
	default:
		return nil, fmt.Errorf("未知 inspector：%q（只能是 rpm 或 native）", kind)
	}
}

// splitLines 把命令输出按行切分，去掉行尾空白与空行。
func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r \t")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
