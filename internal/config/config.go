package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/ofedscan/internal/inspect"
)

const (
	// ErrCodeNotFound 表示 --config 指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	DefaultBaseURL = "https://linux.mellanox.com/public/repo/mlnx_ofed/"
	DefaultOSName  = "rhel"
	DefaultArch    = "x86_64"

	// FileName 是未指定 --config 时在 cwd 下查找的可选配置文件。
	FileName = "ofedscan.json"
)

// CLIArgs 是 CLI 暴露的入口；*Set 字段保留“是否显式指定”，用于覆盖优先级。
type CLIArgs struct {
	OutFile    string
	ConfigPath string

	BaseURL    string
	BaseURLSet bool

	Inspector    string
	InspectorSet bool
}

// FileConfig 对应 ofedscan.json 的解析结构。
type FileConfig struct {
	BaseURL    string       `json:"base_url"`
	OSName     string       `json:"os_name"`
	Arch       string       `json:"arch"`
	Inspector  string       `json:"inspector"`
	RPMCommand string       `json:"rpm_command"`
	Proxy      *ProxyConfig `json:"proxy"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并规范化后的最终配置（实现层直接消费）。
type EffectiveConfig struct {
	OutFile string

	BaseURL string // 总是以 '/' 结尾
	OSName  string
	Arch    string

	Inspector  string // inspect.KindRPM 或 inspect.KindNative
	RPMCommand string
	ProxyURL   string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Path == "" {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取配置文件并与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 给了 --config：必须存在
// 2) 否则尝试 <cwd>/ofedscan.json（可选）
//
// 覆盖优先级：CLI > 配置文件 > 内置默认值。
// OutFile 若为相对路径，则相对 cwd 解析。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.OutFile) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Err: errors.New("输出文件路径不能为空")}
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)
	if p := strings.TrimSpace(cli.ConfigPath); p != "" {
		cfgPath = absCleanFrom(cwdAbs, p)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(cwdAbs, FileName)
		fc, _, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	return merge(absCleanFrom(cwdAbs, cli.OutFile), cli, fc, cfgPath)
}

func merge(outFile string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	baseURL := pick(cli.BaseURLSet, cli.BaseURL, fc.BaseURL, DefaultBaseURL)
	baseURL, err := normalizeBaseURL(baseURL)
	if err != nil {
		return invalid(err)
	}

	osName := pick(false, "", fc.OSName, DefaultOSName)
	arch := strings.Trim(pick(false, "", fc.Arch, DefaultArch), "/")
	if arch == "" {
		return invalid(errors.New("arch 不能为空"))
	}

	kind := strings.ToLower(pick(cli.InspectorSet, cli.Inspector, fc.Inspector, inspect.KindRPM))
	switch kind {
	case inspect.KindRPM, inspect.KindNative:
	default:
		return invalid(fmt.Errorf("inspector 只能是 rpm 或 native，实际是 %q", kind))
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return invalid(fmt.Errorf("proxy.url 无效：%w", err))
		}
	}

	return EffectiveConfig{
		OutFile:    outFile,
		BaseURL:    baseURL,
		OSName:     osName,
		Arch:       arch,
		Inspector:  kind,
		RPMCommand: pick(false, "", fc.RPMCommand, inspect.DefaultRPMCommand),
		ProxyURL:   proxyURL,
	}, nil
}

// pick 按 CLI > 配置文件 > 默认值 取第一个非空值。
func pick(cliSet bool, cliVal, fileVal, def string) string {
	if cliSet && strings.TrimSpace(cliVal) != "" {
		return strings.TrimSpace(cliVal)
	}
	if strings.TrimSpace(fileVal) != "" {
		return strings.TrimSpace(fileVal)
	}
	return def
}

// normalizeBaseURL 要求 http/https + host，并保证以 '/' 结尾（子目录 URL 靠字符串拼接得到）。
func normalizeBaseURL(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base_url 无效：%q", s)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base_url 必须是 http/https：%q", s)
	}
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
