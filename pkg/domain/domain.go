// Package domain 将 libvirt domain XML 解析为类型化的虚拟机记录
package domain

import (
	"github.com/jimyag/virtcim/pkg/device"
)

// Type hypervisor 类型
type Type int

const (
	TypeUnknown Type = iota
	TypeXenPV
	TypeXenFV
	TypeKVM
	TypeLXC
)

func (t Type) String() string {
	switch t {
	case TypeXenPV:
		return "XenPV"
	case TypeXenFV:
		return "XenFV"
	case TypeKVM:
		return "KVM"
	case TypeLXC:
		return "LXC"
	default:
		return "Unknown"
	}
}

// ClassPrefix 返回迁移时使用的 hypervisor 类名前缀
func (t Type) ClassPrefix() string {
	switch t {
	case TypeXenPV, TypeXenFV:
		return "Xen"
	case TypeKVM:
		return "KVM"
	case TypeLXC:
		return "LXC"
	default:
		return ""
	}
}

// Action 生命周期动作
type Action int

const (
	ActionNone Action = iota
	ActionRestart
	ActionPreserve
)

func (a Action) String() string {
	switch a {
	case ActionRestart:
		return "restart"
	case ActionPreserve:
		return "preserve"
	default:
		return "destroy"
	}
}

// ParseAction 解析 on_poweroff/on_reboot/on_crash 的内容
// 无法识别的值（包括缺失）视为 ActionNone
func ParseAction(text string) Action {
	switch text {
	case "restart":
		return ActionRestart
	case "preserve":
		return ActionPreserve
	default:
		return ActionNone
	}
}

// OSInfo 与 domain 类型对应的启动参数
// 通过未导出方法封闭实现集合
type OSInfo interface {
	OSType() string
	osInfo()
}

// PVOSInfo 半虚拟化启动参数
type PVOSInfo struct {
	Type    string `json:"type"`
	Kernel  string `json:"kernel,omitempty"`
	Initrd  string `json:"initrd,omitempty"`
	Cmdline string `json:"cmdline,omitempty"`
}

func (o *PVOSInfo) OSType() string { return o.Type }
func (*PVOSInfo) osInfo()          {}

// FVOSInfo 全虚拟化启动参数，XenFV 和 KVM 共用
type FVOSInfo struct {
	Type   string `json:"type"`
	Loader string `json:"loader,omitempty"`
	Boot   string `json:"boot,omitempty"`
}

func (o *FVOSInfo) OSType() string { return o.Type }
func (*FVOSInfo) osInfo()          {}

// LXCOSInfo 容器启动参数
type LXCOSInfo struct {
	Type string `json:"type"`
	Init string `json:"init,omitempty"`
}

func (o *LXCOSInfo) OSType() string { return o.Type }
func (*LXCOSInfo) osInfo()          {}

// Domain 一个虚拟机定义的快照
type Domain struct {
	Name           string `json:"name"`
	UUID           string `json:"uuid"`
	TypeStr        string `json:"typestr"`
	Bootloader     string `json:"bootloader,omitempty"`
	BootloaderArgs string `json:"bootloader_args,omitempty"`

	Type Type   `json:"type"`
	OS   OSInfo `json:"os,omitempty"`

	OnPoweroff Action `json:"on_poweroff"`
	OnReboot   Action `json:"on_reboot"`
	OnCrash    Action `json:"on_crash"`

	Graphics []*device.Graphics `json:"graphics,omitempty"`
	Emulator []*device.Emulator `json:"emulator,omitempty"`
	Memory   []*device.Mem      `json:"memory,omitempty"`
	Net      []*device.Net      `json:"net,omitempty"`
	Disk     []*device.Disk     `json:"disk,omitempty"`
	Vcpu     []*device.Vcpu     `json:"vcpu,omitempty"`
}

// PV 返回半虚拟化参数，类型不匹配时为 nil
func (d *Domain) PV() *PVOSInfo {
	os, _ := d.OS.(*PVOSInfo)
	return os
}

// FV 返回全虚拟化参数，类型不匹配时为 nil
func (d *Domain) FV() *FVOSInfo {
	os, _ := d.OS.(*FVOSInfo)
	return os
}

// LXC 返回容器参数，类型不匹配时为 nil
func (d *Domain) LXC() *LXCOSInfo {
	os, _ := d.OS.(*LXCOSInfo)
	return os
}

// Devices 按固定顺序返回所有设备
func (d *Domain) Devices() []device.Device {
	var devs []device.Device
	for _, g := range d.Graphics {
		devs = append(devs, g)
	}
	for _, e := range d.Emulator {
		devs = append(devs, e)
	}
	for _, m := range d.Memory {
		devs = append(devs, m)
	}
	for _, n := range d.Net {
		devs = append(devs, n)
	}
	for _, disk := range d.Disk {
		devs = append(devs, disk)
	}
	for _, v := range d.Vcpu {
		devs = append(devs, v)
	}
	return devs
}

// Clear 清空 OS 参数和所有设备列表，类型重置为 Unknown
func (d *Domain) Clear() {
	if d == nil {
		return
	}
	*d = Domain{}
}
