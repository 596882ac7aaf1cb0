package run

import (
	"time"

	"github.com/John-Robertt/ofedscan/internal/config"
	"github.com/John-Robertt/ofedscan/internal/scan"
)

// Observer 把“运行进度/诊断”从核心执行流程中解耦出来。
//
// 约束：run/scan 包只发事件，不做任何输出；由 CLI 决定如何展示。
type Observer interface {
	scan.Observer

	// OnStart 在开始遍历前调用。
	OnStart(eff config.EffectiveConfig)
	// OnWritten 在输出文件落盘后调用。
	OnWritten(path string, records int, dur time.Duration)
}
