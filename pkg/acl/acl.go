// Package acl 解析和生成 libvirt 网络过滤器（nwfilter）XML
package acl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedXML 文档不是合法的 filter XML
	ErrMalformedXML = errors.New("malformed filter XML")
	// ErrMissingAttr 缺少必需的属性
	ErrMissingAttr = errors.New("missing required attribute")
	// ErrInvalidRuleID 规则 ID 不是 "<filter>:<index>" 格式
	ErrInvalidRuleID = errors.New("invalid rule id")
)

// RuleType 规则负载类型
type RuleType int

const (
	RuleTypeUnknown RuleType = iota
	RuleTypeMAC
	RuleTypeARP
	RuleTypeIP
	RuleTypeTCP
	RuleTypeICMP
	RuleTypeIGMP
)

func (t RuleType) String() string {
	switch t {
	case RuleTypeMAC:
		return "mac"
	case RuleTypeARP:
		return "arp"
	case RuleTypeIP:
		return "ip"
	case RuleTypeTCP:
		return "tcp"
	case RuleTypeICMP:
		return "icmp"
	case RuleTypeIGMP:
		return "igmp"
	default:
		return "unknown"
	}
}

// Filter 网络过滤器
type Filter struct {
	Name     string   `json:"name"`
	UUID     string   `json:"uuid,omitempty"`
	Chain    string   `json:"chain,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Rules    []*Rule  `json:"rules,omitempty"`
	Refs     []string `json:"refs,omitempty"`
}

// Rule 过滤规则
// Name 在加入过滤器时生成，格式为 "<filter>:<index>"
type Rule struct {
	Name       string  `json:"name"`
	ProtocolID string  `json:"protocol_id,omitempty"`
	Action     string  `json:"action"`
	Direction  string  `json:"direction"`
	Priority   string  `json:"priority,omitempty"`
	StateMatch string  `json:"statematch,omitempty"`
	Payload    Payload `json:"payload,omitempty"`
}

// Type 返回负载类型，没有负载时为 RuleTypeUnknown
func (r *Rule) Type() RuleType {
	if r.Payload == nil {
		return RuleTypeUnknown
	}
	return r.Payload.RuleType()
}

// AppendRule 追加规则并按位置生成规则名
func (f *Filter) AppendRule(r *Rule) {
	r.Name = MakeRuleID(f.Name, len(f.Rules))
	f.Rules = append(f.Rules, r)
}

// AppendRef 追加引用的过滤器，名称忽略大小写去重
// 已存在时返回 false
func (f *Filter) AppendRef(name string) bool {
	if f.HasRef(name) {
		return false
	}
	f.Refs = append(f.Refs, name)
	return true
}

// RemoveRef 删除引用的过滤器，不存在时返回 false
func (f *Filter) RemoveRef(name string) bool {
	refs := f.Refs[:0]
	removed := false
	for _, ref := range f.Refs {
		if strings.EqualFold(ref, name) {
			removed = true
			continue
		}
		refs = append(refs, ref)
	}
	f.Refs = refs
	return removed
}

// HasRef 判断是否引用了指定过滤器
func (f *Filter) HasRef(name string) bool {
	for _, ref := range f.Refs {
		if strings.EqualFold(ref, name) {
			return true
		}
	}
	return false
}

// Rule 按规则名查找
func (f *Filter) Rule(id string) (*Rule, bool) {
	name, index, err := ParseRuleID(id)
	if err != nil || name != f.Name || index >= len(f.Rules) {
		return nil, false
	}
	return f.Rules[index], true
}

// MakeRuleID 生成规则 ID
func MakeRuleID(filter string, index int) string {
	return filter + ":" + strconv.Itoa(index)
}

// ParseRuleID 解析规则 ID，在最后一个 ":" 处拆分
func ParseRuleID(id string) (filter string, index int, err error) {
	i := strings.LastIndexByte(id, ':')
	if i <= 0 || i == len(id)-1 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidRuleID, id)
	}

	index, err = strconv.Atoi(id[i+1:])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidRuleID, id)
	}
	return id[:i], index, nil
}
