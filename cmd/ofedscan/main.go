// Command ofedscan 扫描 Mellanox OFED 公共仓库，输出 OFED 版本与内核版本的对应关系。
//
// 用法：
//
//	ofedscan OUTFILE [--config FILE] [--inspector rpm|native] [--base-url URL] [--verbose]
//
// 输出为 JSON 数组，每项包含 ofed_ver / kernel_ver / repo_url（指向对应的 .repo 文件）。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/ofedscan/internal/app/run"
	"github.com/John-Robertt/ofedscan/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// usageError 标记参数错误（退出码 2），与运行期失败（退出码 1）区分。
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type rootFlags struct {
	configPath string
	inspector  string
	baseURL    string
	verbose    bool
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "参数错误：%v\n\n%s", ue.err, cmd.UsageString())
			return 2
		}
		// 运行期错误已经由 RunE 记录到日志。
		return 1
	}
	return 0
}

func newRootCommand(logw io.Writer) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "ofedscan OUTFILE",
		Short: "扫描 Mellanox OFED 仓库，输出 OFED 版本与内核版本的对应关系",
		Long: `扫描 Mellanox OFED 公共仓库（默认 https://linux.mellanox.com/public/repo/mlnx_ofed/），
对每个 <版本>/<rhel*>/<arch>/ 目录读取 kmod-mlnx-ofa_kernel 包的文件清单，
从 /lib/modules/<kernel>/ 路径中提取内核版本，结果写入 OUTFILE（JSON）。`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], f, logw)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.Flags().StringVar(&f.configPath, "config", "", "配置文件路径（默认尝试 ./"+config.FileName+"）")
	cmd.Flags().StringVar(&f.inspector, "inspector", "", "包清单读取方式：rpm（调用 rpm -qlp）或 native（内置解析）")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "仓库根目录 URL（覆盖配置文件）")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "输出 debug 日志")
	return cmd
}

func runScan(cmd *cobra.Command, outFile string, f rootFlags, logw io.Writer) error {
	logger := newLogger(logw, f.verbose)
	defer func() { _ = logger.Sync() }()
	undo := zap.ReplaceGlobals(logger)
	defer undo()
	log := logger.Sugar()

	cwd, err := os.Getwd()
	if err != nil {
		log.Errorf("读取当前目录失败：%v", err)
		return err
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		OutFile:      outFile,
		ConfigPath:   f.configPath,
		BaseURL:      f.baseURL,
		BaseURLSet:   cmd.Flags().Changed("base-url"),
		Inspector:    f.inspector,
		InspectorSet: cmd.Flags().Changed("inspector"),
	})
	if err != nil {
		log.Errorw(err.Error(), "error_code", config.Code(err))
		return err
	}

	if _, err := run.ExecuteWithObserver(cmd.Context(), eff, nil, newProgressLog(log)); err != nil {
		log.Errorf("扫描失败：%v", err)
		return err
	}
	return nil
}
