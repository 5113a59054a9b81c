package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jimyag/virtcim/pkg/device"
	"github.com/jimyag/virtcim/pkg/xmlnode"
)

var (
	// ErrMalformedXML 文档不是合法的 domain XML
	ErrMalformedXML = errors.New("malformed domain XML")
)

// osFields <os> 下所有可能出现的字段
type osFields struct {
	typ, kernel, initrd, cmdline, loader, boot, init string
}

// Parse 静态解析 domain XML
// 设备列表只包含 XML 中能得到的信息，内存和 vCPU 由 Get 用运行时数据替换
func Parse(doc string) (*Domain, error) {
	root, err := xmlnode.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	if root.Name() != "domain" {
		return nil, fmt.Errorf("%w: unexpected root element <%s>", ErrMalformedXML, root.Name())
	}

	dom := &Domain{TypeStr: root.AttrValue("type")}
	var os osFields

	for _, child := range root.Elements() {
		switch child.Name() {
		case "name":
			dom.Name = child.TextValue()
		case "uuid":
			dom.UUID = child.TextValue()
		case "bootloader":
			dom.Bootloader = child.TextValue()
		case "bootloader_args":
			dom.BootloaderArgs = child.TextValue()
		case "os":
			os = parseOS(child)
		case "on_poweroff":
			dom.OnPoweroff = ParseAction(strings.TrimSpace(child.TextValue()))
		case "on_reboot":
			dom.OnReboot = ParseAction(strings.TrimSpace(child.TextValue()))
		case "on_crash":
			dom.OnCrash = ParseAction(strings.TrimSpace(child.TextValue()))
		}
	}

	dom.Type = Classify(dom.TypeStr, os.typ)
	dom.OS = os.info(dom.Type)

	dom.Emulator = first(device.Typed[*device.Emulator](device.ParseNode(root, device.KindEmulator)))
	dom.Graphics = first(device.Typed[*device.Graphics](device.ParseNode(root, device.KindGraphics)))
	dom.Memory = device.Typed[*device.Mem](device.ParseNode(root, device.KindMem))
	dom.Net = device.Typed[*device.Net](device.ParseNode(root, device.KindNet))
	dom.Disk = device.Typed[*device.Disk](device.ParseNode(root, device.KindDisk))
	dom.Vcpu = device.Typed[*device.Vcpu](device.ParseNode(root, device.KindVcpu))

	return dom, nil
}

func parseOS(n *xmlnode.Node) osFields {
	var f osFields
	for _, child := range n.Elements() {
		switch child.Name() {
		case "type":
			f.typ = strings.TrimSpace(child.TextValue())
		case "kernel":
			f.kernel = child.TextValue()
		case "initrd":
			f.initrd = child.TextValue()
		case "cmdline":
			f.cmdline = child.TextValue()
		case "loader":
			f.loader = child.TextValue()
		case "boot":
			f.boot = child.AttrValue("dev")
		case "init":
			f.init = child.TextValue()
		}
	}
	return f
}

func (f osFields) info(t Type) OSInfo {
	switch t {
	case TypeXenPV:
		return &PVOSInfo{Type: f.typ, Kernel: f.kernel, Initrd: f.initrd, Cmdline: f.cmdline}
	case TypeXenFV, TypeKVM:
		return &FVOSInfo{Type: f.typ, Loader: f.loader, Boot: f.boot}
	case TypeLXC:
		return &LXCOSInfo{Type: f.typ, Init: f.init}
	default:
		return nil
	}
}

// Classify 根据 domain 的 type 属性和 <os><type> 判断 hypervisor 类型
//
//	xen  + hvm   -> XenFV
//	kvm  + hvm   -> KVM (qemu 同 kvm)
//	lxc  + exe   -> LXC
//	xen  + linux -> XenPV
//
// 其他组合均为 Unknown
func Classify(typeStr, osType string) Type {
	hv := strings.ToLower(strings.TrimSpace(typeStr))
	os := strings.ToLower(strings.TrimSpace(osType))

	switch {
	case os == "hvm" && hv == "xen":
		return TypeXenFV
	case os == "hvm" && (hv == "kvm" || hv == "qemu"):
		return TypeKVM
	case os == "exe" && hv == "lxc":
		return TypeLXC
	case os == "linux" && hv == "xen":
		return TypeXenPV
	default:
		return TypeUnknown
	}
}

// first 最多保留一个设备
func first[T any](devs []T) []T {
	if len(devs) > 1 {
		return devs[:1]
	}
	return devs
}
