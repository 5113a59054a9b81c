// Package device 定义虚拟设备模型，并从 domain XML 中解析设备
package device

import (
	"strconv"
)

// Kind 设备类型
type Kind int

const (
	KindDisk Kind = iota + 1
	KindNet
	KindMem
	KindVcpu
	KindEmulator
	KindGraphics
	KindInput
)

var kindNames = map[Kind]string{
	KindDisk:     "disk",
	KindNet:      "net",
	KindMem:      "mem",
	KindVcpu:     "vcpu",
	KindEmulator: "emulator",
	KindGraphics: "graphics",
	KindInput:    "input",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind 将字符串转换为设备类型
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// DiskType 磁盘后端类型
type DiskType int

const (
	DiskTypeUnknown DiskType = iota
	DiskTypePhy
	DiskTypeFile
	DiskTypeFS
)

func (t DiskType) String() string {
	switch t {
	case DiskTypePhy:
		return "phy"
	case DiskTypeFile:
		return "file"
	case DiskTypeFS:
		return "fs"
	default:
		return "unknown"
	}
}

// Device 虚拟设备
// 通过未导出方法封闭实现集合，只有本包中的变体类型可以实现
type Device interface {
	Kind() Kind
	ID() string
	clone() Device
}

// Disk 磁盘或文件系统设备
type Disk struct {
	Type       string   `json:"type"`
	Device     string   `json:"device"`
	Driver     string   `json:"driver,omitempty"`
	Source     string   `json:"source"`
	VirtualDev string   `json:"virtual_dev"`
	DiskType   DiskType `json:"disk_type"`
	ReadOnly   bool     `json:"readonly"`
	Shareable  bool     `json:"shareable"`
}

func (d *Disk) Kind() Kind    { return KindDisk }
func (d *Disk) ID() string    { return d.VirtualDev }
func (d *Disk) clone() Device { c := *d; return &c }

// Net 网络接口
type Net struct {
	Type   string `json:"type"`
	MAC    string `json:"mac"`
	Source string `json:"source"`
	Model  string `json:"model,omitempty"`
}

func (n *Net) Kind() Kind    { return KindNet }
func (n *Net) ID() string    { return n.MAC }
func (n *Net) clone() Device { c := *n; return &c }

// Mem 内存设备，单位 KiB
type Mem struct {
	Size    uint64 `json:"size"`
	MaxSize uint64 `json:"max_size"`
}

func (m *Mem) Kind() Kind    { return KindMem }
func (m *Mem) ID() string    { return "mem" }
func (m *Mem) clone() Device { c := *m; return &c }

// Vcpu 单个虚拟 CPU
type Vcpu struct {
	Number  uint32 `json:"number"`
	State   int32  `json:"state"`
	CPUTime uint64 `json:"cpu_time"`
	CPU     int32  `json:"cpu"`
}

func (v *Vcpu) Kind() Kind    { return KindVcpu }
func (v *Vcpu) ID() string    { return strconv.FormatUint(uint64(v.Number), 10) }
func (v *Vcpu) clone() Device { c := *v; return &c }

// Emulator 设备模型程序
type Emulator struct {
	Path string `json:"path"`
}

func (e *Emulator) Kind() Kind    { return KindEmulator }
func (e *Emulator) ID() string    { return "emulator" }
func (e *Emulator) clone() Device { c := *e; return &c }

// Graphics 图形控制台
type Graphics struct {
	Type   string `json:"type"`
	Port   string `json:"port"`
	Listen string `json:"listen,omitempty"`
}

func (g *Graphics) Kind() Kind    { return KindGraphics }
func (g *Graphics) ID() string    { return g.Type }
func (g *Graphics) clone() Device { c := *g; return &c }

// Input 输入设备
type Input struct {
	Type string `json:"type"`
	Bus  string `json:"bus,omitempty"`
}

func (i *Input) Kind() Kind    { return KindInput }
func (i *Input) ID() string    { return i.Type + ":" + i.Bus }
func (i *Input) clone() Device { c := *i; return &c }

// Dup 深拷贝设备，返回的副本与原列表互不影响
func Dup(d Device) Device {
	if d == nil {
		return nil
	}
	return d.clone()
}

// DupAll 深拷贝设备列表
func DupAll(devs []Device) []Device {
	if devs == nil {
		return nil
	}
	out := make([]Device, len(devs))
	for i, d := range devs {
		out[i] = Dup(d)
	}
	return out
}
