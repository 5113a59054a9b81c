package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/pkg/apierror"
	"github.com/jimyag/virtcim/pkg/device"
	"github.com/jimyag/virtcim/pkg/domain"
	"github.com/jimyag/virtcim/pkg/libvirt"
	"github.com/jimyag/virtcim/pkg/xmlgen"
)

var allKinds = []device.Kind{
	device.KindDisk,
	device.KindNet,
	device.KindMem,
	device.KindVcpu,
	device.KindEmulator,
	device.KindGraphics,
	device.KindInput,
}

// DomainService 域和设备服务
type DomainService struct {
	libvirtClient libvirt.LibvirtClient
	jobs          *JobManager
}

// NewDomainService 创建域服务
func NewDomainService(libvirtClient libvirt.LibvirtClient, jobs *JobManager) *DomainService {
	return &DomainService{
		libvirtClient: libvirtClient,
		jobs:          jobs,
	}
}

func (s *DomainService) ensureDomain(name string) error {
	ok, err := s.libvirtClient.HasDomain(name)
	if err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "Failed to lookup domain", err)
	}
	if !ok {
		return apierror.WrapError(apierror.ErrNotFound, fmt.Sprintf("No such domain %s", name), nil)
	}
	return nil
}

// DescribeDomain 获取域的完整信息
func (s *DomainService) DescribeDomain(ctx context.Context, req *entity.DomainRequest) (*entity.DescribeDomainResponse, error) {
	if err := s.ensureDomain(req.Name); err != nil {
		return nil, err
	}

	dom, err := domain.Get(s.libvirtClient, req.Name)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, fmt.Sprintf("Failed to get domain %s", req.Name), err)
	}

	zerolog.Ctx(ctx).Debug().Str("domain", req.Name).Stringer("type", dom.Type).Msg("Domain described")
	return &entity.DescribeDomainResponse{
		Domain:    dom,
		Class:     dom.Type.ClassPrefix(),
		Migrating: s.jobs.IsMigrating(req.Name),
	}, nil
}

// ListDomains 列出所有域
func (s *DomainService) ListDomains(ctx context.Context) (*entity.ListDomainsResponse, error) {
	names, err := s.libvirtClient.ListDomains()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list domains", err)
	}
	return &entity.ListDomainsResponse{Domains: names}, nil
}

// ListDevices 列出域的设备，设备 ID 为 <host>/<dev>
func (s *DomainService) ListDevices(ctx context.Context, req *entity.ListDevicesRequest) (*entity.ListDevicesResponse, error) {
	kinds := allKinds
	if req.Kind != "" {
		k, _ := device.ParseKind(req.Kind)
		kinds = []device.Kind{k}
	}

	doc, err := s.libvirtClient.GetDomainXML(req.Domain, 0)
	if err != nil {
		return nil, libvirtError(err, fmt.Sprintf("No such domain %s", req.Domain))
	}

	host, err := s.libvirtClient.GetHostname()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to get hostname", err)
	}

	devices := []entity.DeviceView{}
	for _, kind := range kinds {
		for _, d := range device.Parse(doc, kind) {
			devices = append(devices, entity.DeviceView{
				ID:     device.FQDevID(host, d.ID()),
				Kind:   kind.String(),
				Device: d,
			})
		}
	}
	return &entity.ListDevicesResponse{Devices: devices}, nil
}

// AttachDevice 附加设备
// disk 和 net 热插拔，vcpu 数量加一
func (s *DomainService) AttachDevice(ctx context.Context, req *entity.DeviceRequest) error {
	logger := zerolog.Ctx(ctx)
	if err := s.ensureDomain(req.Domain); err != nil {
		return err
	}

	kind, _ := device.ParseKind(req.Device.Kind)
	switch kind {
	case device.KindDisk, device.KindNet:
		d, err := deviceFromSpec(kind, &req.Device)
		if err != nil {
			return err
		}
		xml, err := xmlgen.Device(d)
		if err != nil {
			return apierror.WrapError(apierror.ErrInvalidParameter, "Failed to build device XML", err)
		}
		logger.Info().Str("domain", req.Domain).Str("device", d.ID()).Msg("Attaching device")
		if err := s.libvirtClient.AttachDevice(req.Domain, xml); err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to attach device", err)
		}
		return nil
	case device.KindVcpu:
		return s.adjustVcpus(ctx, req.Domain, 1)
	default:
		return apierror.WrapError(apierror.ErrNotSupported, fmt.Sprintf("Attaching %s devices is not supported", kind), nil)
	}
}

// DetachDevice 移除设备
// disk 和 net 按设备 ID 查找当前定义后热拔，vcpu 数量减一
func (s *DomainService) DetachDevice(ctx context.Context, req *entity.DeviceRequest) error {
	logger := zerolog.Ctx(ctx)
	if err := s.ensureDomain(req.Domain); err != nil {
		return err
	}

	kind, _ := device.ParseKind(req.Device.Kind)
	switch kind {
	case device.KindDisk, device.KindNet:
		d, err := s.findDevice(req.Domain, kind, specID(kind, &req.Device))
		if err != nil {
			return err
		}
		xml, err := xmlgen.Device(d)
		if err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to build device XML", err)
		}
		logger.Info().Str("domain", req.Domain).Str("device", d.ID()).Msg("Detaching device")
		if err := s.libvirtClient.DetachDevice(req.Domain, xml); err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to detach device", err)
		}
		return nil
	case device.KindVcpu:
		return s.adjustVcpus(ctx, req.Domain, -1)
	default:
		return apierror.WrapError(apierror.ErrNotSupported, fmt.Sprintf("Detaching %s devices is not supported", kind), nil)
	}
}

// ChangeDevice 修改设备
// mem 先修改最大内存再修改当前内存，vcpu 设置数量
func (s *DomainService) ChangeDevice(ctx context.Context, req *entity.DeviceRequest) error {
	logger := zerolog.Ctx(ctx)
	if err := s.ensureDomain(req.Domain); err != nil {
		return err
	}

	spec := &req.Device
	kind, _ := device.ParseKind(spec.Kind)
	switch kind {
	case device.KindMem:
		if spec.Memory == 0 && spec.MaxMemory == 0 {
			return apierror.WrapError(apierror.ErrInvalidParameter, "memory or max_memory is required", nil)
		}
		if spec.MaxMemory != 0 && spec.Memory > spec.MaxMemory {
			return apierror.WrapError(apierror.ErrInvalidParameter,
				fmt.Sprintf("memory %d exceeds max_memory %d", spec.Memory, spec.MaxMemory), nil)
		}
		if spec.MaxMemory != 0 {
			if err := s.libvirtClient.SetMaxMemory(req.Domain, spec.MaxMemory); err != nil {
				return apierror.WrapError(apierror.ErrInternalError, "Failed to set max memory", err)
			}
		}
		if spec.Memory != 0 {
			if err := s.libvirtClient.SetMemory(req.Domain, spec.Memory); err != nil {
				return apierror.WrapError(apierror.ErrInternalError, "Failed to set memory", err)
			}
		}
		logger.Info().Str("domain", req.Domain).Uint64("memory", spec.Memory).Uint64("maxMemory", spec.MaxMemory).Msg("Memory changed")
		return nil
	case device.KindVcpu:
		if spec.Vcpus == 0 {
			return apierror.WrapError(apierror.ErrInvalidParameter, "vcpus is required", nil)
		}
		if err := s.libvirtClient.SetVcpus(req.Domain, spec.Vcpus); err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "Failed to set vcpus", err)
		}
		logger.Info().Str("domain", req.Domain).Uint32("vcpus", spec.Vcpus).Msg("Vcpus changed")
		return nil
	default:
		return apierror.WrapError(apierror.ErrNotSupported, fmt.Sprintf("Changing %s devices is not supported", kind), nil)
	}
}

func (s *DomainService) adjustVcpus(ctx context.Context, name string, delta int) error {
	info, err := s.libvirtClient.GetDomainInfo(name)
	if err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "Failed to get domain info", err)
	}

	count := int(info.VCPUs) + delta
	if count < 1 {
		return apierror.WrapError(apierror.ErrInvalidParameter, "Domain must keep at least one vcpu", nil)
	}
	if err := s.libvirtClient.SetVcpus(name, uint32(count)); err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "Failed to set vcpus", err)
	}

	zerolog.Ctx(ctx).Info().Str("domain", name).Int("vcpus", count).Msg("Vcpus changed")
	return nil
}

func (s *DomainService) findDevice(name string, kind device.Kind, id string) (device.Device, error) {
	if id == "" {
		return nil, apierror.WrapError(apierror.ErrInvalidParameter, "device id is required", nil)
	}

	doc, err := s.libvirtClient.GetDomainXML(name, 0)
	if err != nil {
		return nil, libvirtError(err, fmt.Sprintf("No such domain %s", name))
	}
	for _, d := range device.Parse(doc, kind) {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, apierror.WrapError(apierror.ErrNotFound, fmt.Sprintf("No such %s device %s", kind, id), nil)
}

// specID 设备 ID，未指定时 disk 使用 target，net 使用 MAC
func specID(kind device.Kind, spec *entity.DeviceSpec) string {
	if spec.ID != "" {
		return entity.ResolveDeviceID(spec.ID)
	}
	if kind == device.KindNet {
		return spec.MAC
	}
	return spec.Target
}

// deviceFromSpec 根据请求构造 disk 或 net 设备
func deviceFromSpec(kind device.Kind, spec *entity.DeviceSpec) (device.Device, error) {
	switch kind {
	case device.KindDisk:
		target := specID(kind, spec)
		if spec.Source == "" || target == "" {
			return nil, apierror.WrapError(apierror.ErrInvalidParameter, "disk source and target are required", nil)
		}
		d := &device.Disk{
			Type:       "file",
			Device:     "disk",
			Driver:     spec.Driver,
			Source:     spec.Source,
			VirtualDev: target,
			DiskType:   parseDiskType(spec.DiskType, spec.Source),
			ReadOnly:   spec.ReadOnly,
			Shareable:  spec.Shareable,
		}
		switch d.DiskType {
		case device.DiskTypePhy:
			d.Type = "block"
		case device.DiskTypeFS:
			d.Type = "mount"
			d.Device = "filesystem"
		}
		return d, nil
	case device.KindNet:
		mac := specID(kind, spec)
		if mac == "" {
			return nil, apierror.WrapError(apierror.ErrInvalidParameter, "net mac is required", nil)
		}
		netType := spec.NetType
		if netType == "" {
			netType = "bridge"
		}
		return &device.Net{
			Type:   netType,
			MAC:    mac,
			Source: spec.Source,
			Model:  spec.Model,
		}, nil
	default:
		return nil, apierror.WrapError(apierror.ErrNotSupported, fmt.Sprintf("Unsupported device kind %s", kind), nil)
	}
}

func parseDiskType(s, source string) device.DiskType {
	switch s {
	case "phy":
		return device.DiskTypePhy
	case "file":
		return device.DiskTypeFile
	case "fs":
		return device.DiskTypeFS
	}
	if t := device.DiskTypeFromFile(source); t != device.DiskTypeUnknown {
		return t
	}
	return device.DiskTypeFile
}
