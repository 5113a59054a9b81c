package entity

import (
	"github.com/jimyag/virtcim/pkg/device"
	"github.com/jimyag/virtcim/pkg/domain"
)

// DomainRequest 按名称操作域
type DomainRequest struct {
	Name string `json:"name"`
}

func (r *DomainRequest) IsValid() error {
	return requireFields(field{"name", r.Name})
}

type DescribeDomainResponse struct {
	Domain    *domain.Domain `json:"domain"`
	Class     string         `json:"class"`
	Migrating bool           `json:"migrating"`
}

type ListDomainsResponse struct {
	Domains []string `json:"domains"`
}

// ListDevicesRequest 列出域的设备，Kind 为空时列出所有类型
type ListDevicesRequest struct {
	Domain string `json:"domain"`
	Kind   string `json:"kind,omitempty"`
}

func (r *ListDevicesRequest) IsValid() error {
	if err := requireFields(field{"domain", r.Domain}); err != nil {
		return err
	}
	if r.Kind != "" {
		if _, ok := device.ParseKind(r.Kind); !ok {
			return errUnknownKind(r.Kind)
		}
	}
	return nil
}

// DeviceView 设备及其全限定 ID
type DeviceView struct {
	ID     string        `json:"id"`
	Kind   string        `json:"kind"`
	Device device.Device `json:"device"`
}

type ListDevicesResponse struct {
	Devices []DeviceView `json:"devices"`
}

// DeviceSpec 设备变更参数
// Disk 使用 Source/Target/Driver/ReadOnly/Shareable，Net 使用 NetType/MAC/Source/Model，
// Mem 使用 Memory/MaxMemory（KiB），Vcpu 使用 Vcpus
type DeviceSpec struct {
	Kind string `json:"kind"`
	// ID 设备 ID，可以是 <host>/<dev> 形式
	ID string `json:"id,omitempty"`

	Source    string `json:"source,omitempty"`
	Target    string `json:"target,omitempty"`
	Driver    string `json:"driver,omitempty"`
	DiskType  string `json:"disk_type,omitempty"` // phy/file/fs，为空时根据 Source 判断
	ReadOnly  bool   `json:"readonly,omitempty"`
	Shareable bool   `json:"shareable,omitempty"`

	NetType string `json:"net_type,omitempty"` // bridge/network/ethernet
	MAC     string `json:"mac,omitempty"`
	Model   string `json:"model,omitempty"`

	Memory    uint64 `json:"memory,omitempty"`
	MaxMemory uint64 `json:"max_memory,omitempty"`

	Vcpus uint32 `json:"vcpus,omitempty"`
}

// DeviceRequest 附加、移除或修改设备
type DeviceRequest struct {
	Domain string     `json:"domain"`
	Device DeviceSpec `json:"device"`
}

func (r *DeviceRequest) IsValid() error {
	if err := requireFields(field{"domain", r.Domain}, field{"device.kind", r.Device.Kind}); err != nil {
		return err
	}
	if _, ok := device.ParseKind(r.Device.Kind); !ok {
		return errUnknownKind(r.Device.Kind)
	}
	return nil
}
