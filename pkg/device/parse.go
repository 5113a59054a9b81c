package device

import (
	"strconv"
	"strings"

	"github.com/jimyag/virtcim/pkg/xmlnode"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBridge 网络接口没有 source 时使用的网桥
	DefaultBridge = "xenbr0"
	// DefaultNetwork network 类型接口没有 source 时使用的网络
	DefaultNetwork = "default"
)

type nodeParser func(n *xmlnode.Node) (Device, bool)

// Parse 从完整的 domain XML 中解析指定类型的设备
// 文档无法解析时返回 nil；单个设备节点不合法时直接跳过，结果按文档顺序排列
func Parse(doc string, kind Kind) []Device {
	root, err := xmlnode.Parse(doc)
	if err != nil {
		log.Debug().Err(err).Str("kind", kind.String()).Msg("Failed to parse domain XML")
		return nil
	}
	return ParseNode(root, kind)
}

// ParseNode 与 Parse 相同，但使用已解析的文档
func ParseNode(root *xmlnode.Node, kind Kind) []Device {
	switch kind {
	case KindDisk:
		devs := collect(root.Select("/domain/devices/disk"), parseDisk)
		return append(devs, collect(root.Select("/domain/devices/filesystem"), parseFilesystem)...)
	case KindNet:
		return collect(root.Select("/domain/devices/interface"), parseNet)
	case KindGraphics:
		return collect(root.Select("/domain/devices/graphics"), parseGraphics)
	case KindEmulator:
		return collect(root.Select("/domain/devices/emulator"), parseEmulator)
	case KindInput:
		return collect(root.Select("/domain/devices/input"), parseInput)
	case KindMem:
		return parseMem(root)
	case KindVcpu:
		return parseVcpu(root)
	default:
		return nil
	}
}

func collect(nodes []*xmlnode.Node, parse nodeParser) []Device {
	var devs []Device
	for _, n := range nodes {
		d, ok := parse(n)
		if !ok {
			log.Debug().Str("element", n.Name()).Msg("Skipping invalid device node")
			continue
		}
		devs = append(devs, d)
	}
	return devs
}

func parseDisk(n *xmlnode.Node) (Device, bool) {
	disk := &Disk{}
	var ok bool

	if disk.Type, ok = n.Attr("type"); !ok {
		return nil, false
	}
	if disk.Device, ok = n.Attr("device"); !ok {
		return nil, false
	}

	for _, child := range n.Elements() {
		switch child.Name() {
		case "driver":
			if disk.Driver, ok = child.Attr("name"); !ok {
				return nil, false
			}
		case "source":
			if file, ok := child.Attr("file"); ok {
				disk.Source = file
				disk.DiskType = DiskTypeFile
			} else if dev, ok := child.Attr("dev"); ok {
				disk.Source = dev
				disk.DiskType = DiskTypePhy
			} else {
				return nil, false
			}
		case "target":
			if disk.VirtualDev, ok = child.Attr("dev"); !ok {
				return nil, false
			}
		case "readonly":
			disk.ReadOnly = true
		case "shareable":
			disk.Shareable = true
		}
	}

	if disk.Source == "" || disk.VirtualDev == "" {
		return nil, false
	}
	return disk, true
}

func parseFilesystem(n *xmlnode.Node) (Device, bool) {
	disk := &Disk{Device: "filesystem", DiskType: DiskTypeFS}
	var ok bool

	if disk.Type, ok = n.Attr("type"); !ok {
		return nil, false
	}
	if disk.Source, ok = n.ChildAttr("source", "dir"); !ok {
		return nil, false
	}
	if disk.VirtualDev, ok = n.ChildAttr("target", "dir"); !ok {
		return nil, false
	}
	if driver, ok := n.ChildAttr("driver", "type"); ok {
		disk.Driver = driver
	}
	disk.ReadOnly = n.Child("readonly") != nil
	return disk, true
}

func parseNet(n *xmlnode.Node) (Device, bool) {
	net := &Net{}
	var ok bool

	if net.Type, ok = n.Attr("type"); !ok {
		return nil, false
	}

	for _, child := range n.Elements() {
		switch child.Name() {
		case "mac":
			if net.MAC, ok = child.Attr("address"); !ok {
				return nil, false
			}
		case "source":
			if bridge, ok := child.Attr("bridge"); ok {
				net.Source = bridge
			} else if network, ok := child.Attr("network"); ok {
				net.Source = network
			} else {
				return nil, false
			}
		case "model":
			net.Model = child.AttrValue("type")
		}
	}

	if net.MAC == "" {
		return nil, false
	}

	if net.Source == "" {
		switch {
		case strings.EqualFold(net.Type, "bridge"):
			net.Source = DefaultBridge
		case strings.EqualFold(net.Type, "network"):
			net.Source = DefaultNetwork
		default:
			// 其他类型没有可用的默认值，通常是不支持的网络配置
			log.Debug().
				Str("mac", net.MAC).
				Str("type", net.Type).
				Msg("Interface has no source and no known default")
			return nil, false
		}
		log.Debug().
			Str("mac", net.MAC).
			Str("type", net.Type).
			Str("source", net.Source).
			Msg("Interface has no source, taking default")
	}
	return net, true
}

func parseGraphics(n *xmlnode.Node) (Device, bool) {
	typ, ok := n.Attr("type")
	if !ok {
		return nil, false
	}
	port, ok := n.Attr("port")
	if !ok {
		return nil, false
	}
	return &Graphics{Type: typ, Port: port, Listen: n.AttrValue("listen")}, true
}

func parseEmulator(n *xmlnode.Node) (Device, bool) {
	path, ok := n.Text()
	if !ok {
		return nil, false
	}
	return &Emulator{Path: strings.TrimSpace(path)}, true
}

func parseInput(n *xmlnode.Node) (Device, bool) {
	typ, ok := n.Attr("type")
	if !ok {
		return nil, false
	}
	return &Input{Type: typ, Bus: n.AttrValue("bus")}, true
}

// parseMem 将 <memory> 和 <currentMemory> 合并为一个 "mem" 设备
func parseMem(root *xmlnode.Node) []Device {
	maxNodes := root.Select("/domain/memory")
	curNodes := root.Select("/domain/currentMemory")
	if len(maxNodes) == 0 && len(curNodes) == 0 {
		return nil
	}

	mem := &Mem{}
	if len(maxNodes) > 0 {
		mem.MaxSize = parseUint(maxNodes[0].TextValue())
	}
	if len(curNodes) > 0 {
		mem.Size = parseUint(curNodes[0].TextValue())
	} else {
		mem.Size = mem.MaxSize
	}
	return []Device{mem}
}

// MaxVcpus 单个域允许的最大 vCPU 数量，超出视为无效值
const MaxVcpus = 4096

// parseVcpu 根据 <vcpu> 的数量生成每个 vCPU 的设备
// 缺失、无法解析或超出 [1, MaxVcpus] 时默认为 1
func parseVcpu(root *xmlnode.Node) []Device {
	count := 1
	if nodes := root.Select("/domain/vcpu"); len(nodes) > 0 {
		n, err := strconv.ParseInt(strings.TrimSpace(nodes[0].TextValue()), 0, 32)
		if err == nil && n > 0 && n <= MaxVcpus {
			count = int(n)
		}
	}

	devs := make([]Device, 0, count)
	for i := 0; i < count; i++ {
		devs = append(devs, &Vcpu{Number: uint32(i)})
	}
	return devs
}

func parseUint(s string) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Disks 解析所有磁盘设备
func Disks(doc string) []*Disk { return typed[*Disk](Parse(doc, KindDisk)) }

// Nets 解析所有网络接口
func Nets(doc string) []*Net { return typed[*Net](Parse(doc, KindNet)) }

// GraphicsDevices 解析所有图形设备
func GraphicsDevices(doc string) []*Graphics { return typed[*Graphics](Parse(doc, KindGraphics)) }

// Emulators 解析 emulator
func Emulators(doc string) []*Emulator { return typed[*Emulator](Parse(doc, KindEmulator)) }

// Inputs 解析所有输入设备
func Inputs(doc string) []*Input { return typed[*Input](Parse(doc, KindInput)) }

// Typed 将设备列表转换为具体类型的列表，类型不匹配的设备被忽略
func Typed[T Device](devs []Device) []T { return typed[T](devs) }

func typed[T Device](devs []Device) []T {
	if len(devs) == 0 {
		return nil
	}
	out := make([]T, 0, len(devs))
	for _, d := range devs {
		if v, ok := d.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
