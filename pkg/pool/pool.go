// Package pool 解析存储池 XML
package pool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jimyag/virtcim/pkg/xmlnode"
)

var (
	// ErrNotSupported 该类型的池尚不支持解析，调用方应作为正常结果处理
	ErrNotSupported = errors.New("pool kind not supported")
	// ErrMissingName 池定义缺少 name
	ErrMissingName = errors.New("pool name is required")
	// ErrMalformedXML 文档不是合法的池 XML
	ErrMalformedXML = errors.New("malformed pool XML")
)

// Kind 资源池类型
type Kind int

const (
	KindDisk Kind = iota + 1
	KindNet
)

func (k Kind) String() string {
	switch k {
	case KindDisk:
		return "disk"
	case KindNet:
		return "net"
	default:
		return "unknown"
	}
}

// ParseKind 将字符串转换为资源池类型
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "disk":
		return KindDisk, true
	case "net", "network":
		return KindNet, true
	default:
		return 0, false
	}
}

// PoolType 磁盘池的后端类型
type PoolType int

const (
	PoolTypeUnknown PoolType = iota
	PoolTypeDir
	PoolTypeFS
	PoolTypeNetFS
	PoolTypeDisk
	PoolTypeISCSI
	PoolTypeLogical
	PoolTypeSCSI
)

var poolTypeNames = []string{
	PoolTypeUnknown: "unknown",
	PoolTypeDir:     "dir",
	PoolTypeFS:      "fs",
	PoolTypeNetFS:   "netfs",
	PoolTypeDisk:    "disk",
	PoolTypeISCSI:   "iscsi",
	PoolTypeLogical: "logical",
	PoolTypeSCSI:    "scsi",
}

func (t PoolType) String() string {
	if int(t) < 0 || int(t) >= len(poolTypeNames) {
		return "unknown"
	}
	return poolTypeNames[t]
}

// ParsePoolType 无法识别的类型返回 PoolTypeUnknown
func ParsePoolType(s string) PoolType {
	for i, name := range poolTypeNames {
		if i != int(PoolTypeUnknown) && name == s {
			return PoolType(i)
		}
	}
	return PoolTypeUnknown
}

// Pool 资源池
type Pool interface {
	Kind() Kind
	ID() string
	pool()
}

// DiskPool 存储池
type DiskPool struct {
	Name        string   `json:"name"`
	PoolType    PoolType `json:"pool_type"`
	Path        string   `json:"path,omitempty"`
	DevicePaths []string `json:"device_paths,omitempty"`
	Host        string   `json:"host,omitempty"`
	SourceDir   string   `json:"source_dir,omitempty"`
	Adapter     string   `json:"adapter,omitempty"`
	PortName    string   `json:"port_name,omitempty"`
	NodeName    string   `json:"node_name,omitempty"`
}

func (p *DiskPool) Kind() Kind { return KindDisk }
func (p *DiskPool) ID() string { return p.Name }
func (*DiskPool) pool()        {}

// NetPool 虚拟网络
type NetPool struct {
	Name        string `json:"name"`
	Addr        string `json:"addr,omitempty"`
	Netmask     string `json:"netmask,omitempty"`
	IPStart     string `json:"ip_start,omitempty"`
	IPEnd       string `json:"ip_end,omitempty"`
	ForwardMode string `json:"forward_mode,omitempty"`
	ForwardDev  string `json:"forward_dev,omitempty"`
}

func (p *NetPool) Kind() Kind { return KindNet }
func (p *NetPool) ID() string { return p.Name }
func (*NetPool) pool()        {}

// Parse 解析池 XML
// 网络池未实现，返回 ErrNotSupported
func Parse(doc string, kind Kind) (Pool, error) {
	if kind == KindNet {
		return nil, ErrNotSupported
	}

	root, err := xmlnode.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	if root.Name() != "pool" {
		return nil, fmt.Errorf("%w: unexpected root element <%s>", ErrMalformedXML, root.Name())
	}

	p := &DiskPool{PoolType: ParsePoolType(root.AttrValue("type"))}

	name, ok := root.ChildText("name")
	if !ok {
		return nil, ErrMissingName
	}
	p.Name = strings.TrimSpace(name)

	if target := root.Child("target"); target != nil {
		p.Path, _ = target.ChildText("path")
	}

	if source := root.Child("source"); source != nil {
		parseSource(p, source)
	}

	return p, nil
}

func parseSource(p *DiskPool, source *xmlnode.Node) {
	for _, child := range source.Elements() {
		switch child.Name() {
		case "host":
			p.Host = child.AttrValue("name")
		case "dir":
			p.SourceDir = child.AttrValue("path")
		case "adapter":
			p.Adapter = child.AttrValue("name")
			p.PortName = child.AttrValue("wwpn")
			p.NodeName = child.AttrValue("wwnn")
		case "device":
			if path, ok := child.Attr("path"); ok {
				p.DevicePaths = append(p.DevicePaths, path)
			}
		}
	}
}
