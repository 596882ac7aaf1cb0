package inspect

import (
	"context"
	"fmt"
	"io"
	"net/http"

	rpmutils "github.com/sassoftware/go-rpmutils"
	"go.uber.org/zap"

	"github.com/John-Robertt/ofedscan/internal/listing"
)

// Native 不依赖宿主机的 rpm 命令：下载包并用 go-rpmutils 只读取 header。
//
// header 位于包的开头，读完文件列表后即关闭连接，不下载 payload。
type Native struct {
	Client *http.Client
}

func (n *Native) ListFiles(ctx context.Context, packageURL string) ([]string, error) {
	if n == nil || n.Client == nil {
		return nil, fmt.Errorf("http client 不能为空")
	}
	zap.L().Sugar().Debugf("reading rpm header %s", packageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, packageURL, nil)
	if err != nil {
		return nil, &listing.FetchError{URL: packageURL, Err: err}
	}
	resp, err := n.Client.Do(req)
	if err != nil {
		return nil, &listing.FetchError{URL: packageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &listing.FetchError{URL: packageURL, StatusCode: resp.StatusCode}
	}

	return ReadFileList(resp.Body)
}

// ReadFileList 从 RPM 流中解析 header 并返回文件路径（保持 header 内顺序）。
func ReadFileList(r io.Reader) ([]string, error) {
	hdr, err := rpmutils.ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("解析 rpm header 失败：%w", err)
	}
	files, err := hdr.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("读取 rpm 文件列表失败：%w", err)
	}

	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name())
	}
	return out, nil
}
