package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

const (
	defaultTimeout = 60 * time.Second

	// DefaultUserAgent 是所有请求的默认 UA（目录索引站点对 UA 不敏感，保持固定即可）。
	DefaultUserAgent = "ofedscan/1 (+https://github.com/John-Robertt/ofedscan)"
)

// Transport 把“固定 UA + keep-alive 策略”固化为统一策略。
//
// 不做重试：单次失败直接返回，由上层决定是跳过还是终止。
type Transport struct {
	Base *http.Transport

	UserAgent string

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone 会复制 Header，避免在 RoundTripper 内部修改调用方的 request。
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		ua := t.UserAgent
		if ua == "" {
			ua = DefaultUserAgent
		}
		r.Header.Set("User-Agent", ua)
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

// NewClient 构造目录索引抓取与包下载共用的 HTTP client。
//
// 规则：
// - proxyURL 非空：走代理，且禁用 keep-alive（每请求新连接）
// - proxyURL 为空：尊重环境变量 HTTP_PROXY/HTTPS_PROXY
// - 总超时 defaultTimeout（包下载走 Native inspector 时也受此约束）
func NewClient(proxyURL string) (*http.Client, error) {
	proxyURL = strings.TrimSpace(proxyURL)

	// 独立的连接池，不与 http.DefaultTransport 共享状态。
	base := cleanhttp.DefaultPooledTransport()
	base.ResponseHeaderTimeout = 30 * time.Second

	disableKeepAlives := false
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	tr := &Transport{
		Base:              base,
		UserAgent:         DefaultUserAgent,
		DisableKeepAlives: disableKeepAlives,
	}
	return &http.Client{
		Transport: tr,
		Timeout:   defaultTimeout,
	}, nil
}
