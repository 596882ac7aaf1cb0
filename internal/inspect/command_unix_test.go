//go:build unix

package inspect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeRPM 写出一个模拟 rpm 的脚本：打印 $2（包 URL）对应的 manifest，或按需失败。
func fakeRPM(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "rpm")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(p, []byte(script), 0o755); err != nil {
		t.Fatalf("写入脚本失败：%v", err)
	}
	return p
}

func TestCommand_ListFiles(t *testing.T) {
	rpm := fakeRPM(t, `[ "$1" = "-qlp" ] || exit 9
echo "/etc/depmod.d/zz02-mlnx-ofa_kernel.conf"
echo "/lib/modules/3.10.0-957.el7.x86_64/extra/mlnx-ofa_kernel"
echo "$2"`)

	got, err := NewCommand(rpm).ListFiles(context.Background(), "http://example.test/kmod.rpm")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{
		"/etc/depmod.d/zz02-mlnx-ofa_kernel.conf",
		"/lib/modules/3.10.0-957.el7.x86_64/extra/mlnx-ofa_kernel",
		"http://example.test/kmod.rpm",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("manifest 不符合预期 (-want +got)：\n%s", diff)
	}
}

func TestCommand_NonZeroExit(t *testing.T) {
	rpm := fakeRPM(t, `echo "error: open of $2 failed" >&2
exit 1`)

	_, err := NewCommand(rpm).ListFiles(context.Background(), "http://example.test/missing.rpm")
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	var pe *ProcessExecutionError
	if !errors.As(err, &pe) {
		t.Fatalf("期望 *ProcessExecutionError，实际 %T %v", err, err)
	}
	if pe.ExitCode != 1 {
		t.Fatalf("期望 exit=1，实际 %d", pe.ExitCode)
	}
	if !strings.Contains(pe.Stderr, "missing.rpm") {
		t.Fatalf("stderr 未被捕获：%q", pe.Stderr)
	}
}

func TestCommand_MissingBinary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-rpm")
	_, err := NewCommand(missing).ListFiles(context.Background(), "http://example.test/kmod.rpm")
	var pe *ProcessExecutionError
	if !errors.As(err, &pe) {
		t.Fatalf("期望 *ProcessExecutionError，实际 %T %v", err, err)
	}
	if pe.ExitCode != -1 {
		t.Fatalf("无法启动时期望 exit=-1，实际 %d", pe.ExitCode)
	}
}
