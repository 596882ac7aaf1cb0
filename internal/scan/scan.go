package scan

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/John-Robertt/ofedscan/internal/domain"
	"github.com/John-Robertt/ofedscan/internal/inspect"
	"github.com/John-Robertt/ofedscan/internal/listing"
)

const (
	// KmodPrefix 是包含内核模块的包名前缀；其文件清单决定 kernel_ver。
	KmodPrefix = "kmod-mlnx-ofa_kernel"
	// ModulesPrefix 是内核模块安装目录前缀，紧随其后的路径段即内核版本。
	ModulesPrefix = "/lib/modules/"
	// DescriptorName 是每个 OS/架构目录下的 yum .repo 描述文件名。
	DescriptorName = "mellanox_mlnx_ofed.repo"
)

// versionRE 只校验宽松前缀（<major>.<minor>...），例如 4.5-1.0.1.0/。
var versionRE = regexp.MustCompile(`^\d+\.\d+`)

// Lister 读取目录页中的链接（由 listing.Lister 实现）。
type Lister interface {
	Links(ctx context.Context, url string) ([]string, error)
}

// Observer 接收逐条诊断事件；Scanner 本身不做任何输出。
type Observer interface {
	OnRecord(rec domain.Record, repoURL string)
	OnSkip(s domain.Skip)
}

// Target 描述要扫描的目录树与匹配条件。
type Target struct {
	BaseURL string // 必须以 '/' 结尾
	OSName  string // OS 变体目录前缀，例如 rhel
	Arch    string // 架构子目录，例如 x86_64
}

// LookupError 表示架构目录中找不到 KmodPrefix 开头的包。
type LookupError struct {
	URL    string
	Prefix string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s 下没有 %s 开头的包", e.URL, e.Prefix)
}

// Scanner 执行 version → OS 变体 → 架构 三层遍历。
//
// 约束：
// - 严格串行，记录按遍历顺序追加
// - 只有两类叶子错误会被降级为 skip：架构目录 HTTP 状态错误、缺少 kmod 包
// - 其余错误（网络失败、inspector 失败）直接返回，整个 run 终止
type Scanner struct {
	Target    Target
	Lister    Lister
	Inspector inspect.PackageInspector
	Observer  Observer
}

// Scan 遍历目录树并返回有序记录。出错时返回已收集的记录与错误。
func (s *Scanner) Scan(ctx context.Context) ([]domain.Record, error) {
	if s.Lister == nil || s.Inspector == nil {
		return nil, errors.New("scanner 缺少 lister 或 inspector")
	}
	base := s.Target.BaseURL

	links, err := s.Lister.Links(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("读取版本列表失败：%w", err)
	}

	records := make([]domain.Record, 0, 64)
	for _, link := range links {
		if !IsVersionDir(link) {
			continue
		}
		ofedVer := strings.TrimSuffix(link, "/")

		osLinks, err := s.Lister.Links(ctx, base+link)
		if err != nil {
			return records, fmt.Errorf("读取版本目录 %s 失败：%w", ofedVer, err)
		}
		for _, osLink := range osLinks {
			if !strings.HasPrefix(osLink, s.Target.OSName) {
				continue
			}
			repoURL := base + link + osLink

			rec, ok, err := s.scanLeaf(ctx, ofedVer, repoURL)
			if err != nil {
				return records, err
			}
			if !ok {
				continue
			}
			if s.Observer != nil {
				s.Observer.OnRecord(rec, repoURL)
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// scanLeaf 处理一个 OS 变体目录；ok=false 表示该目录被跳过（已发 skip 事件）。
func (s *Scanner) scanLeaf(ctx context.Context, ofedVer, repoURL string) (domain.Record, bool, error) {
	archURL := repoURL + s.Target.Arch
	archDir := archURL + "/"

	pkgLinks, err := s.Lister.Links(ctx, archDir)
	if err != nil {
		if listing.IsHTTPStatus(err) {
			s.skip(domain.Skip{URL: archURL, Reason: err})
			return domain.Record{}, false, nil
		}
		return domain.Record{}, false, fmt.Errorf("读取架构目录 %s 失败：%w", archURL, err)
	}

	pkg, ok := FirstWithPrefix(pkgLinks, KmodPrefix)
	if !ok {
		s.skip(domain.Skip{URL: archURL, Reason: &LookupError{URL: archDir, Prefix: KmodPrefix}})
		return domain.Record{}, false, nil
	}

	pkgURL := archDir + pkg
	manifest, err := s.Inspector.ListFiles(ctx, pkgURL)
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("读取包 %s 的文件清单失败：%w", pkgURL, err)
	}

	return domain.Record{
		OFEDVersion:   ofedVer,
		KernelVersion: KernelVersion(manifest),
		RepoURL:       archDir + DescriptorName,
	}, true, nil
}

func (s *Scanner) skip(sk domain.Skip) {
	if s.Observer != nil {
		s.Observer.OnSkip(sk)
	}
}

// IsVersionDir 判断链接是否像 OFED 版本目录（以 digit.digit 开头）。
func IsVersionDir(link string) bool {
	return versionRE.MatchString(link)
}

// FirstWithPrefix 返回第一个以 prefix 开头的链接。
func FirstWithPrefix(links []string, prefix string) (string, bool) {
	for _, l := range links {
		if strings.HasPrefix(l, prefix) {
			return l, true
		}
	}
	return "", false
}

// KernelVersion 在 manifest 中找第一条 /lib/modules/<ver>/... 并返回 <ver>。
//
// <ver> 为空的行（/lib/modules/、/lib/modules//x）不算匹配，继续看后面的行，
// 而不是在第一条带前缀的行处停下。全部不匹配时返回 nil。
func KernelVersion(manifest []string) *string {
	for _, line := range manifest {
		rest, ok := strings.CutPrefix(line, ModulesPrefix)
		if !ok {
			continue
		}
		ver, _, _ := strings.Cut(rest, "/")
		if ver == "" {
			continue
		}
		return &ver
	}
	return nil
}
