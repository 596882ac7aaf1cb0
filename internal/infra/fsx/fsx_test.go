package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile_ReplacesAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "kernels.json")

	if err := os.WriteFile(out, []byte("old"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
	if err := WriteFile(out, []byte("[]\n")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "[]\n" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".kernels.json.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFile_CreatesParentDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "b", "kernels.json")
	if err := WriteFile(out, []byte("[]\n")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("期望写出文件：%v", err)
	}
}

func TestWriteFile_RenameFailKeepsOldAndNoTemp(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "kernels.json")
	if err := os.WriteFile(out, []byte("old"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrPermission}
	}
	defer func() { renameFunc = old }()

	err := WriteFile(out, []byte("[]\n"))
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("期望 rename 的错误被透传，实际 %v", err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "old" {
		t.Fatalf("失败时不应改动已有文件，实际 %q", string(b))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("rename 失败后只应剩下原文件，实际 %d 项", len(entries))
	}
}

func TestWriteFile_TargetIsDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "a.json")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := WriteFile(out, []byte("[]")); err == nil {
		t.Fatalf("目标是目录时期望错误，但得到 nil")
	}
}

func TestWriteFile_RelativePath(t *testing.T) {
	chdir(t, t.TempDir())
	if err := WriteFile("kernels.json", []byte("[]\n")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if b, err := os.ReadFile("kernels.json"); err != nil || string(b) != "[]\n" {
		t.Fatalf("内容不符合预期：%q err=%v", string(b), err)
	}
}

// chdir 等价于 Go 1.24 的 t.Chdir：切换工作目录并在测试结束时恢复。
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("获取工作目录失败：%v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("切换工作目录失败：%v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("恢复工作目录失败：%v", err)
		}
	})
}
