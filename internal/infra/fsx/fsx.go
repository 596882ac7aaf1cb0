// Package fsx 负责输出文件的落盘。
package fsx

import (
	"fmt"
	"os"
	"path/filepath"
)

// 测试通过替换它来模拟 rename 失败。
var renameFunc = os.Rename

// WriteFile 把 data 原子地写到 path：同目录临时文件 -> fsync -> rename。
// 任一步失败都不会改动已有的 path，也不会留下临时文件。
func WriteFile(path string, data []byte) (err error) {
	path = filepath.Clean(path)
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	if fi, statErr := os.Stat(path); statErr == nil && fi.IsDir() {
		return fmt.Errorf("目标路径是目录：%q", path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = renameFunc(tmp.Name(), path); err != nil {
		return fmt.Errorf("替换 %s 失败：%w", path, err)
	}

	syncDir(dir)
	return nil
}

// syncDir 让 rename 本身落盘；部分平台（Windows）不支持目录 Sync，失败忽略。
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}
