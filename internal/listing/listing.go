// Package listing 读取 HTML 目录索引页并提取其中的链接。
package listing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// hrefRE 限定允许的 href 字符集：单词字符 + 固定的 URL 特殊字符（含空格）。
// 整个 href 都必须落在该字符集内，否则丢弃（例如带引号/尖括号的异常链接）。
var hrefRE = regexp.MustCompile(`^[\w\-.~:/?#\[\]@!$&'()*+ ,;%=]+$`)

// Lister 通过 HTTP GET 读取目录页，按文档顺序返回 <a href> 的目标。
//
// 约束：
// - 每次调用只发一次 GET，不缓存、不重试
// - 返回的链接保持页面原样（相对/绝对都不做解析），允许重复
type Lister struct {
	Client *http.Client
}

func New(c *http.Client) *Lister {
	return &Lister{Client: c}
}

// Links 抓取 url 并提取链接。读取失败时返回 *FetchError。
func (l *Lister) Links(ctx context.Context, url string) ([]string, error) {
	if l == nil || l.Client == nil {
		return nil, errors.New("http client 不能为空")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	// 按 Content-Type 的 charset 解码（缺省时由 charset 包嗅探）。
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	links, err := ParseLinks(body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return links, nil
}

// ParseLinks 从 HTML 中提取合法字符集内的 href（纯函数，便于测试）。
func ParseLinks(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, 32)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !hrefRE.MatchString(href) {
			return
		}
		links = append(links, href)
	})
	return links, nil
}
