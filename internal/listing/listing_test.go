package listing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const indexHTML = `<html><head><title>Index of /public/repo/mlnx_ofed</title></head>
<body>
<h1>Index of /public/repo/mlnx_ofed</h1>
<pre><a href="?C=N;O=D">Name</a> <a href="/public/repo/">Parent Directory</a>
<a href="4.5-1.0.1.0/">4.5-1.0.1.0/</a>  2018-12-10 11:05    -
<a href="4.5-1.0.1.0/">4.5-1.0.1.0/</a>  2018-12-10 11:05    -
<a href="latest/">latest/</a>  2020-01-01 00:00    -
<a href="bad&quot;quote/">bad</a>
<a href="with<angle>/">angle</a>
<a name="anchor-only">no href</a>
<a href="kmod-mlnx-ofa_kernel-5.0-1.rpm">kmod</a>
</pre></body></html>`

func TestParseLinks_DocumentOrderAndCharset(t *testing.T) {
	got, err := ParseLinks(strings.NewReader(indexHTML))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{
		"?C=N;O=D",
		"/public/repo/",
		"4.5-1.0.1.0/",
		"4.5-1.0.1.0/",
		"latest/",
		"kmod-mlnx-ofa_kernel-5.0-1.rpm",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("链接不符合预期 (-want +got)：\n%s", diff)
	}
}

func TestLinks_FetchesOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	}))
	defer srv.Close()

	links, err := New(srv.Client()).Links(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if calls != 1 {
		t.Fatalf("期望 1 次请求，实际 %d", calls)
	}
	if len(links) != 6 {
		t.Fatalf("期望 6 个链接，实际 %d：%q", len(links), links)
	}
}

func TestLinks_Latin1Charset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		// 0xE9 = 'é'（latin1），只出现在文本里，不影响 href。
		_, _ = w.Write([]byte("<html><body><a href=\"rhel7.6/\">caf\xe9</a></body></html>"))
	}))
	defer srv.Close()

	links, err := New(srv.Client()).Links(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if diff := cmp.Diff([]string{"rhel7.6/"}, links); diff != "" {
		t.Fatalf("链接不符合预期：%q", links)
	}
}

func TestLinks_NotFoundIsHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(srv.Client()).Links(context.Background(), srv.URL+"/x86_64/")
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("期望 *FetchError，实际 %T %v", err, err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Fatalf("期望 404，实际 %d", fe.StatusCode)
	}
	if !IsHTTPStatus(err) {
		t.Fatalf("IsHTTPStatus 应为 true")
	}
}

func TestLinks_TransportErrorIsNotHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()

	_, err := New(http.DefaultClient).Links(context.Background(), u+"/")
	if err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("期望 *FetchError，实际 %T %v", err, err)
	}
	if IsHTTPStatus(err) {
		t.Fatalf("传输层失败不应被视为 HTTP 状态错误：%v", err)
	}
}

func TestLinks_NilClient(t *testing.T) {
	if _, err := (&Lister{}).Links(context.Background(), "http://example.test/"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}
