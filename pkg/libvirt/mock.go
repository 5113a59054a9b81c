package libvirt

import (
	"github.com/digitalocean/go-libvirt"
	"github.com/stretchr/testify/mock"

	"github.com/jimyag/virtcim/pkg/device"
)

// MockClient 是 LibvirtClient 的 mock 实现
// 用于测试，不需要真实的 libvirt 连接
type MockClient struct {
	mock.Mock
}

var _ LibvirtClient = (*MockClient)(nil)

// NewMockClient 创建 mock 客户端
func NewMockClient() *MockClient {
	return &MockClient{}
}

// 连接信息
func (m *MockClient) URI() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetHostname() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockClient) GetHypervisorVersion() (uint64, error) {
	args := m.Called()
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) GetLibVersion() (uint64, error) {
	args := m.Called()
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) SupportsStoragePools() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Domain 查询
func (m *MockClient) ListDomains() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClient) HasDomain(name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}

func (m *MockClient) GetDomainXML(name string, flags libvirt.DomainXMLFlags) (string, error) {
	args := m.Called(name, flags)
	return args.String(0), args.Error(1)
}

func (m *MockClient) GetDomainInfo(name string) (*DomainInfo, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DomainInfo), args.Error(1)
}

func (m *MockClient) GetDomainState(name string) (libvirt.DomainState, error) {
	args := m.Called(name)
	return args.Get(0).(libvirt.DomainState), args.Error(1)
}

func (m *MockClient) GetDomainVcpus(name string, maxInfo int) ([]device.VcpuInfo, error) {
	args := m.Called(name, maxInfo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]device.VcpuInfo), args.Error(1)
}

// Domain 生命周期
func (m *MockClient) DefineDomain(xml string) error {
	args := m.Called(xml)
	return args.Error(0)
}

func (m *MockClient) UndefineDomain(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockClient) StartDomain(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockClient) ShutdownDomain(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockClient) SaveDomain(name, path string) error {
	args := m.Called(name, path)
	return args.Error(0)
}

func (m *MockClient) RestoreDomain(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockClient) MigrateDomain(name, destURI string, flags libvirt.DomainMigrateFlags) error {
	args := m.Called(name, destURI, flags)
	return args.Error(0)
}

// Domain 设备
func (m *MockClient) AttachDevice(name, xml string) error {
	args := m.Called(name, xml)
	return args.Error(0)
}

func (m *MockClient) DetachDevice(name, xml string) error {
	args := m.Called(name, xml)
	return args.Error(0)
}

func (m *MockClient) SetVcpus(name string, count uint32) error {
	args := m.Called(name, count)
	return args.Error(0)
}

func (m *MockClient) SetMemory(name string, kib uint64) error {
	args := m.Called(name, kib)
	return args.Error(0)
}

func (m *MockClient) SetMaxMemory(name string, kib uint64) error {
	args := m.Called(name, kib)
	return args.Error(0)
}

// QEMU 监视器
func (m *MockClient) QueryMigration(name string) (*MigrationStatus, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MigrationStatus), args.Error(1)
}

// Storage Pool 操作
func (m *MockClient) GetStoragePoolXML(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func (m *MockClient) DefinePool(xml string) error {
	args := m.Called(xml)
	return args.Error(0)
}

func (m *MockClient) DestroyPool(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockClient) CreateVolume(pool, xml string) (string, error) {
	args := m.Called(pool, xml)
	return args.String(0), args.Error(1)
}

func (m *MockClient) DeleteVolume(pool, volume string) error {
	args := m.Called(pool, volume)
	return args.Error(0)
}

// NWFilter 操作
func (m *MockClient) ListFilters() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClient) GetFilterXML(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func (m *MockClient) GetFilterXMLByUUID(uuid string) (string, error) {
	args := m.Called(uuid)
	return args.String(0), args.Error(1)
}

func (m *MockClient) DefineFilter(xml string) error {
	args := m.Called(xml)
	return args.Error(0)
}

func (m *MockClient) UndefineFilter(name string) error {
	args := m.Called(name)
	return args.Error(0)
}
