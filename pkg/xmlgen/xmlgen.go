// Package xmlgen 生成 attach/detach 使用的设备 XML 以及存储池、存储卷定义
package xmlgen

import (
	"errors"
	"fmt"

	"libvirt.org/go/libvirtxml"

	"github.com/jimyag/virtcim/pkg/device"
	"github.com/jimyag/virtcim/pkg/pool"
)

var (
	// ErrUnsupportedDevice 该类型的设备没有 XML 表示
	ErrUnsupportedDevice = errors.New("unsupported device kind")
	// ErrInvalidVolume 存储卷参数不合法
	ErrInvalidVolume = errors.New("invalid volume spec")
)

// Device 生成设备的 XML
// 只支持 disk（包括 filesystem）和 net
func Device(d device.Device) (string, error) {
	switch v := d.(type) {
	case *device.Disk:
		return Disk(v)
	case *device.Net:
		return Net(v)
	default:
		if d == nil {
			return "", ErrUnsupportedDevice
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDevice, d.Kind())
	}
}

// Disk 生成 <disk> 或 <filesystem>
func Disk(d *device.Disk) (string, error) {
	if d.DiskType == device.DiskTypeFS {
		return filesystem(d)
	}

	disk := &libvirtxml.DomainDisk{
		Device: d.Device,
		Target: &libvirtxml.DomainDiskTarget{Dev: d.VirtualDev},
	}
	if disk.Device == "" {
		disk.Device = "disk"
	}
	if d.Driver != "" {
		disk.Driver = &libvirtxml.DomainDiskDriver{Name: d.Driver}
	}

	switch d.DiskType {
	case device.DiskTypePhy:
		disk.Source = &libvirtxml.DomainDiskSource{
			Block: &libvirtxml.DomainDiskSourceBlock{Dev: d.Source},
		}
	default:
		disk.Source = &libvirtxml.DomainDiskSource{
			File: &libvirtxml.DomainDiskSourceFile{File: d.Source},
		}
	}

	if d.ReadOnly {
		disk.ReadOnly = &libvirtxml.DomainDiskReadOnly{}
	}
	if d.Shareable {
		disk.Shareable = &libvirtxml.DomainDiskShareable{}
	}

	out, err := disk.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal disk %s: %w", d.VirtualDev, err)
	}
	return out, nil
}

func filesystem(d *device.Disk) (string, error) {
	fs := &libvirtxml.DomainFilesystem{
		Source: &libvirtxml.DomainFilesystemSource{
			Mount: &libvirtxml.DomainFilesystemSourceMount{Dir: d.Source},
		},
		Target: &libvirtxml.DomainFilesystemTarget{Dir: d.VirtualDev},
	}
	if d.Driver != "" {
		fs.Driver = &libvirtxml.DomainFilesystemDriver{Type: d.Driver}
	}
	if d.ReadOnly {
		fs.ReadOnly = &libvirtxml.DomainFilesystemReadOnly{}
	}

	out, err := fs.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal filesystem %s: %w", d.VirtualDev, err)
	}
	return out, nil
}

// Net 生成 <interface>
// network 类型使用网络名作为 source，其余按网桥处理
func Net(n *device.Net) (string, error) {
	iface := &libvirtxml.DomainInterface{
		MAC: &libvirtxml.DomainInterfaceMAC{Address: n.MAC},
	}

	switch n.Type {
	case "network":
		iface.Source = &libvirtxml.DomainInterfaceSource{
			Network: &libvirtxml.DomainInterfaceSourceNetwork{Network: n.Source},
		}
	case "ethernet":
		iface.Source = &libvirtxml.DomainInterfaceSource{
			Ethernet: &libvirtxml.DomainInterfaceSourceEthernet{},
		}
	default:
		bridge := n.Source
		if bridge == "" {
			bridge = device.DefaultBridge
		}
		iface.Source = &libvirtxml.DomainInterfaceSource{
			Bridge: &libvirtxml.DomainInterfaceSourceBridge{Bridge: bridge},
		}
	}

	if n.Model != "" {
		iface.Model = &libvirtxml.DomainInterfaceModel{Type: n.Model}
	}

	out, err := iface.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal interface %s: %w", n.MAC, err)
	}
	return out, nil
}

// StoragePool 生成存储池定义
func StoragePool(p *pool.DiskPool) (string, error) {
	if p.Name == "" {
		return "", pool.ErrMissingName
	}

	def := &libvirtxml.StoragePool{
		Type: p.PoolType.String(),
		Name: p.Name,
	}
	if p.PoolType == pool.PoolTypeUnknown {
		def.Type = pool.PoolTypeDir.String()
	}
	if p.Path != "" {
		def.Target = &libvirtxml.StoragePoolTarget{Path: p.Path}
	}

	source := &libvirtxml.StoragePoolSource{}
	hasSource := false
	if p.Host != "" {
		source.Host = []libvirtxml.StoragePoolSourceHost{{Name: p.Host}}
		hasSource = true
	}
	if p.SourceDir != "" {
		source.Dir = &libvirtxml.StoragePoolSourceDir{Path: p.SourceDir}
		hasSource = true
	}
	for _, path := range p.DevicePaths {
		source.Device = append(source.Device, libvirtxml.StoragePoolSourceDevice{Path: path})
		hasSource = true
	}
	if p.Adapter != "" || p.PortName != "" || p.NodeName != "" {
		adapter := &libvirtxml.StoragePoolSourceAdapter{
			Name: p.Adapter,
			WWPN: p.PortName,
			WWNN: p.NodeName,
		}
		if p.PortName != "" {
			adapter.Type = "fc_host"
		} else {
			adapter.Type = "scsi_host"
		}
		source.Adapter = adapter
		hasSource = true
	}
	if hasSource {
		def.Source = source
	}

	out, err := def.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal pool %s: %w", p.Name, err)
	}
	return out, nil
}

// VolumeSpec 存储卷参数
type VolumeSpec struct {
	Name     string
	Format   string // raw 或 qcow2
	Capacity uint64
	Unit     string // 默认 G
}

// StorageVolume 生成存储卷定义
func StorageVolume(v *VolumeSpec) (string, error) {
	if v.Name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidVolume)
	}

	format := v.Format
	switch format {
	case "":
		format = "raw"
	case "raw", "qcow2":
	default:
		return "", fmt.Errorf("%w: unsupported format %q", ErrInvalidVolume, v.Format)
	}

	unit := v.Unit
	if unit == "" {
		unit = "G"
	}

	def := &libvirtxml.StorageVolume{
		Name:     v.Name,
		Capacity: &libvirtxml.StorageVolumeSize{Unit: unit, Value: v.Capacity},
		Target: &libvirtxml.StorageVolumeTarget{
			Format: &libvirtxml.StorageVolumeTargetFormat{Type: format},
		},
	}

	out, err := def.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal volume %s: %w", v.Name, err)
	}
	return out, nil
}
