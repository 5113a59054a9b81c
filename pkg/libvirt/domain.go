package libvirt

import (
	"fmt"

	"github.com/digitalocean/go-libvirt"

	"github.com/jimyag/virtcim/pkg/device"
)

const (
	deviceModifyFlags = uint32(libvirt.DomainDeviceModifyLive | libvirt.DomainDeviceModifyConfig)
	vcpuModifyFlags   = uint32(libvirt.DomainVCPUConfig | libvirt.DomainVCPULive)
	memModifyFlags    = uint32(libvirt.DomainMemConfig | libvirt.DomainMemLive)
)

func (c *Client) lookup(name string) (libvirt.Domain, error) {
	dom, err := c.conn.DomainLookupByName(name)
	if err != nil {
		return libvirt.Domain{}, fmt.Errorf("lookup domain %s: %w", name, err)
	}
	return dom, nil
}

// ListDomains 返回所有已定义和运行中的域名
func (c *Client) ListDomains() ([]string, error) {
	flags := libvirt.ConnectListDomainsActive | libvirt.ConnectListDomainsInactive
	domains, _, err := c.conn.ConnectListAllDomains(1000, flags)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}

	names := make([]string, 0, len(domains))
	for _, d := range domains {
		names = append(names, d.Name)
	}
	return names, nil
}

// HasDomain 判断域是否存在
func (c *Client) HasDomain(name string) (bool, error) {
	_, err := c.conn.DomainLookupByName(name)
	if err == nil {
		return true, nil
	}
	if libvirt.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("lookup domain %s: %w", name, err)
}

// GetDomainXML 获取域的 XML 描述
func (c *Client) GetDomainXML(name string, flags libvirt.DomainXMLFlags) (string, error) {
	dom, err := c.lookup(name)
	if err != nil {
		return "", err
	}
	xml, err := c.conn.DomainGetXMLDesc(dom, flags)
	if err != nil {
		return "", fmt.Errorf("get domain XML: %w", err)
	}
	return xml, nil
}

// GetDomainInfo 获取域的状态、内存和 vCPU 数量
func (c *Client) GetDomainInfo(name string) (*DomainInfo, error) {
	dom, err := c.lookup(name)
	if err != nil {
		return nil, err
	}

	state, maxMem, memory, vcpus, cpuTime, err := c.conn.DomainGetInfo(dom)
	if err != nil {
		return nil, fmt.Errorf("get domain info: %w", err)
	}

	return &DomainInfo{
		Name:      dom.Name,
		UUID:      fmt.Sprintf("%x", dom.UUID),
		State:     libvirt.DomainState(state),
		MaxMemory: maxMem,
		Memory:    memory,
		VCPUs:     vcpus,
		CPUTime:   cpuTime,
	}, nil
}

// GetDomainState 获取域的状态
func (c *Client) GetDomainState(name string) (libvirt.DomainState, error) {
	dom, err := c.lookup(name)
	if err != nil {
		return libvirt.DomainNostate, err
	}
	state, _, err := c.conn.DomainGetState(dom, 0)
	if err != nil {
		return libvirt.DomainNostate, fmt.Errorf("get domain state: %w", err)
	}
	return libvirt.DomainState(state), nil
}

// GetDomainVcpus 获取运行中域的 vCPU 信息，最多 maxInfo 条
func (c *Client) GetDomainVcpus(name string, maxInfo int) ([]device.VcpuInfo, error) {
	dom, err := c.lookup(name)
	if err != nil {
		return nil, err
	}

	infos, _, err := c.conn.DomainGetVcpus(dom, int32(maxInfo), 0)
	if err != nil {
		return nil, fmt.Errorf("get domain vcpus: %w", err)
	}

	out := make([]device.VcpuInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, device.VcpuInfo{
			Number:  info.Number,
			State:   info.State,
			CPUTime: info.CPUTime,
			CPU:     info.CPU,
		})
	}
	return out, nil
}

// DefineDomain 从 XML 定义域
func (c *Client) DefineDomain(xml string) error {
	if _, err := c.conn.DomainDefineXML(xml); err != nil {
		return fmt.Errorf("define domain: %w", err)
	}
	return nil
}

// UndefineDomain 删除域定义
func (c *Client) UndefineDomain(name string) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.conn.DomainUndefine(dom); err != nil {
		return fmt.Errorf("undefine domain %s: %w", name, err)
	}
	return nil
}

// StartDomain 启动已定义的域
func (c *Client) StartDomain(name string) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.conn.DomainCreate(dom); err != nil {
		return fmt.Errorf("failed to start domain %s: %w", name, err)
	}
	return nil
}

// ShutdownDomain 请求域正常关机，不等待完成
func (c *Client) ShutdownDomain(name string) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.conn.DomainShutdown(dom); err != nil {
		return fmt.Errorf("shutdown domain %s: %w", name, err)
	}
	return nil
}

// SaveDomain 将运行中的域内存保存到文件，域随后停止
func (c *Client) SaveDomain(name, path string) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.conn.DomainSave(dom, path); err != nil {
		return fmt.Errorf("save domain %s to %s: %w", name, path, err)
	}
	return nil
}

// RestoreDomain 从保存的文件恢复域
func (c *Client) RestoreDomain(path string) error {
	if err := c.conn.DomainRestore(path); err != nil {
		return fmt.Errorf("restore domain from %s: %w", path, err)
	}
	return nil
}

// AttachDevice 热插拔设备，同时修改持久化配置
func (c *Client) AttachDevice(name, xml string) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.conn.DomainAttachDeviceFlags(dom, xml, deviceModifyFlags); err != nil {
		return fmt.Errorf("attach device to %s: %w", name, err)
	}
	return nil
}

// DetachDevice 热拔设备，同时修改持久化配置
func (c *Client) DetachDevice(name, xml string) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.conn.DomainDetachDeviceFlags(dom, xml, deviceModifyFlags); err != nil {
		return fmt.Errorf("detach device from %s: %w", name, err)
	}
	return nil
}

// SetVcpus 修改 vCPU 数量
func (c *Client) SetVcpus(name string, count uint32) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.conn.DomainSetVcpusFlags(dom, count, vcpuModifyFlags); err != nil {
		return fmt.Errorf("set vcpus of %s to %d: %w", name, count, err)
	}
	return nil
}

// SetMemory 修改当前内存（KiB）
func (c *Client) SetMemory(name string, kib uint64) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.conn.DomainSetMemoryFlags(dom, kib, memModifyFlags); err != nil {
		return fmt.Errorf("set memory of %s to %d KiB: %w", name, kib, err)
	}
	return nil
}

// SetMaxMemory 修改最大内存（KiB）
func (c *Client) SetMaxMemory(name string, kib uint64) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.conn.DomainSetMaxMemory(dom, kib); err != nil {
		return fmt.Errorf("set max memory of %s to %d KiB: %w", name, kib, err)
	}
	return nil
}
