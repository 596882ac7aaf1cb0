package main

import (
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/John-Robertt/ofedscan/internal/app/run"
	"github.com/John-Robertt/ofedscan/internal/config"
	"github.com/John-Robertt/ofedscan/internal/domain"
	"github.com/John-Robertt/ofedscan/internal/scan"
)

var _ run.Observer = (*progressLog)(nil)

// progressLog 把 run 层事件逐行写入日志（stderr），每条记录/每个跳过目录一行。
type progressLog struct {
	log *zap.SugaredLogger
}

func newProgressLog(log *zap.SugaredLogger) *progressLog {
	return &progressLog{log: log}
}

func (p *progressLog) OnStart(eff config.EffectiveConfig) {
	p.log.Infof("scan %s os=%s arch=%s inspector=%s", eff.BaseURL, eff.OSName, eff.Arch, eff.Inspector)
}

func (p *progressLog) OnRecord(rec domain.Record, repoURL string) {
	p.log.Infof("processed %s %s %s", rec.OFEDVersion, rec.KernelOrNone(), repoURL)
}

func (p *progressLog) OnSkip(s domain.Skip) {
	var le *scan.LookupError
	if errors.As(s.Reason, &le) {
		p.log.Warnf("no %s package in %s", le.Prefix, s.URL)
		return
	}
	p.log.Warnf("could not read %s", s.URL)
	if s.Reason != nil {
		p.log.Debugf("skip reason: %v", s.Reason)
	}
}

func (p *progressLog) OnWritten(path string, records int, dur time.Duration) {
	p.log.Infow("written "+path, "records", records, "elapsed", dur.Round(time.Millisecond).String())
}

// newLogger 构造写到 w 的 console logger；verbose=true 时输出 debug。
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
