package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record 是输出文件中的一条记录：一个 OFED 版本在某个 OS 变体/架构目录下对应的内核版本。
//
// 字段按 JSON key 的字典序声明（kernel_ver < ofed_ver < repo_url），
// encoding/json 按声明顺序输出，因此序列化结果的 key 天然有序。
type Record struct {
	// KernelVersion 为 nil 表示 manifest 中没有 /lib/modules/<ver>/ 条目（输出 null）。
	KernelVersion *string `json:"kernel_ver"`
	OFEDVersion   string  `json:"ofed_ver"`
	RepoURL       string  `json:"repo_url"`
}

// KernelOrNone 用于诊断输出：nil 显示为 None。
func (r Record) KernelOrNone() string {
	if r.KernelVersion == nil {
		return "None"
	}
	return *r.KernelVersion
}

// Skip 描述一个被跳过的叶子目录（只用于诊断，不写入输出文件）。
type Skip struct {
	URL    string
	Reason error
}

func (s Skip) String() string {
	if s.Reason == nil {
		return fmt.Sprintf("could not read %s", s.URL)
	}
	return fmt.Sprintf("could not read %s: %v", s.URL, s.Reason)
}

// EncodeRecords 把记录序列化为最终输出：JSON 数组、4 空格缩进、末尾换行。
// records 为空时输出 []（而不是 null）；URL 中的 & < > 保持原样。
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StrPtr 返回 s 的指针（测试与构造 Record 时使用）。
func StrPtr(s string) *string { return &s }
