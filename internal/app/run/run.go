package run

import (
	"context"
	"fmt"
	"time"

	"github.com/John-Robertt/ofedscan/internal/config"
	"github.com/John-Robertt/ofedscan/internal/domain"
	"github.com/John-Robertt/ofedscan/internal/infra/fsx"
	"github.com/John-Robertt/ofedscan/internal/infra/httpx"
	"github.com/John-Robertt/ofedscan/internal/inspect"
	"github.com/John-Robertt/ofedscan/internal/listing"
	"github.com/John-Robertt/ofedscan/internal/scan"
)

// Execute 执行一次完整扫描并写出输出文件，返回写入的记录。
// insp 为 nil 时按 eff.Inspector 构造（与目录抓取共用同一个 HTTP client）。
func Execute(ctx context.Context, eff config.EffectiveConfig, insp inspect.PackageInspector) ([]domain.Record, error) {
	return ExecuteWithObserver(ctx, eff, insp, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 输出逐条诊断。
//
// 任何致命错误都会在写文件之前返回：失败的 run 不会留下（或覆盖）输出文件。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, insp inspect.PackageInspector, obs Observer) ([]domain.Record, error) {
	started := time.Now()

	client, err := httpx.NewClient(eff.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("proxy.url 无效：%w", err)
	}
	if insp == nil {
		insp, err = inspect.New(eff.Inspector, eff.RPMCommand, client)
		if err != nil {
			return nil, err
		}
	}

	if obs != nil {
		obs.OnStart(eff)
	}

	s := &scan.Scanner{
		Target: scan.Target{
			BaseURL: eff.BaseURL,
			OSName:  eff.OSName,
			Arch:    eff.Arch,
		},
		Lister:    listing.New(client),
		Inspector: insp,
	}
	// 避免把 nil 接口值包装成非 nil 的 scan.Observer。
	if obs != nil {
		s.Observer = obs
	}

	records, err := s.Scan(ctx)
	if err != nil {
		return records, err
	}

	b, err := domain.EncodeRecords(records)
	if err != nil {
		return records, fmt.Errorf("序列化输出失败：%w", err)
	}
	if err := fsx.WriteFile(eff.OutFile, b); err != nil {
		return records, fmt.Errorf("写入 %s 失败：%w", eff.OutFile, err)
	}

	if obs != nil {
		obs.OnWritten(eff.OutFile, len(records), time.Since(started))
	}
	return records, nil
}
