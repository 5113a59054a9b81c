package libvirt

import (
	"github.com/digitalocean/go-libvirt"

	"github.com/jimyag/virtcim/pkg/device"
)

// LibvirtClient 定义 libvirt 客户端接口
// 用于抽象 libvirt 操作，便于测试和 mock
type LibvirtClient interface {
	// 连接信息
	URI() string
	GetHostname() (string, error)
	GetHypervisorVersion() (uint64, error)
	GetLibVersion() (uint64, error)
	SupportsStoragePools() (bool, error)
	Close() error

	// Domain 查询
	ListDomains() ([]string, error)
	HasDomain(name string) (bool, error)
	GetDomainXML(name string, flags libvirt.DomainXMLFlags) (string, error)
	GetDomainInfo(name string) (*DomainInfo, error)
	GetDomainState(name string) (libvirt.DomainState, error)
	GetDomainVcpus(name string, maxInfo int) ([]device.VcpuInfo, error)

	// Domain 生命周期
	DefineDomain(xml string) error
	UndefineDomain(name string) error
	StartDomain(name string) error
	ShutdownDomain(name string) error
	SaveDomain(name, path string) error
	RestoreDomain(path string) error
	MigrateDomain(name, destURI string, flags libvirt.DomainMigrateFlags) error

	// Domain 设备
	AttachDevice(name, xml string) error
	DetachDevice(name, xml string) error
	SetVcpus(name string, count uint32) error
	SetMemory(name string, kib uint64) error
	SetMaxMemory(name string, kib uint64) error

	// QEMU 监视器
	QueryMigration(name string) (*MigrationStatus, error)

	// Storage Pool 操作
	GetStoragePoolXML(name string) (string, error)
	DefinePool(xml string) error
	DestroyPool(name string) error
	CreateVolume(pool, xml string) (string, error)
	DeleteVolume(pool, volume string) error

	// NWFilter 操作
	ListFilters() ([]string, error)
	GetFilterXML(name string) (string, error)
	GetFilterXMLByUUID(uuid string) (string, error)
	DefineFilter(xml string) error
	UndefineFilter(name string) error
}

// Connector 根据 URI 打开到 hypervisor 的连接
type Connector func(uri string) (LibvirtClient, error)
