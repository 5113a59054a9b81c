package domain

import (
	"fmt"

	golibvirt "github.com/digitalocean/go-libvirt"

	"github.com/jimyag/virtcim/pkg/device"
	"github.com/jimyag/virtcim/pkg/libvirt"
)

// ControlPlane Get 需要的 hypervisor 查询
type ControlPlane interface {
	GetDomainXML(name string, flags golibvirt.DomainXMLFlags) (string, error)
	GetDomainInfo(name string) (*libvirt.DomainInfo, error)
	GetDomainVcpus(name string, maxInfo int) ([]device.VcpuInfo, error)
}

// Get 获取 domain 的完整信息
// 先静态解析 XML，再用运行时的内存和 vCPU 信息替换对应设备
// 当前内存大于最大内存，或者 vCPU 记录数少于报告的数量时返回错误
func Get(cp ControlPlane, name string) (*Domain, error) {
	doc, err := cp.GetDomainXML(name, 0)
	if err != nil {
		return nil, fmt.Errorf("get domain XML: %w", err)
	}

	dom, err := Parse(doc)
	if err != nil {
		return nil, err
	}

	info, err := cp.GetDomainInfo(name)
	if err != nil {
		return nil, fmt.Errorf("get domain info: %w", err)
	}

	mem, err := device.MemoryFromInfo(info.Memory, info.MaxMemory)
	if err != nil {
		return nil, fmt.Errorf("domain %s: %w", name, err)
	}
	dom.Memory = []*device.Mem{mem}

	// 未运行的 domain 无法查询 vCPU，沿用 XML 中的数量
	if !info.Running() {
		return dom, nil
	}

	count := int(info.VCPUs)
	infos, err := cp.GetDomainVcpus(name, count)
	if err != nil {
		return nil, fmt.Errorf("get domain vcpus: %w", err)
	}
	vcpus, err := device.VcpusFromInfo(count, infos)
	if err != nil {
		return nil, fmt.Errorf("domain %s: %w", name, err)
	}
	dom.Vcpu = vcpus

	return dom, nil
}
