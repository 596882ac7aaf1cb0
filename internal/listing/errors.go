package listing

import (
	"errors"
	"fmt"
)

// FetchError 表示目录页（或包文件）无法读取。
//
// StatusCode 非 0：站点返回了非 2xx 状态码（HTTP 层失败，可由上层按需跳过）。
// StatusCode 为 0：网络/传输层失败（Err 非空），上层不应吞掉。
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "fetch error"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsHTTPStatus 判断 err 链中是否有“站点返回非 2xx”的 FetchError。
func IsHTTPStatus(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.StatusCode != 0
}
