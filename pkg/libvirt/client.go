package libvirt

import (
	"fmt"
	"net/url"

	"github.com/digitalocean/go-libvirt"
	"github.com/rs/zerolog/log"
)

// minStorageVersion 支持存储池 API 的最低 libvirt 版本（0.4.0）
const minStorageVersion = 4000

type Client struct {
	conn *libvirt.Libvirt
	uri  string
}

// DomainInfo 包含域的运行时信息
type DomainInfo struct {
	Name      string              `json:"name"`
	UUID      string              `json:"uuid"`
	State     libvirt.DomainState `json:"state"`
	MaxMemory uint64              `json:"max_memory"` // KB
	Memory    uint64              `json:"memory"`     // KB
	VCPUs     uint16              `json:"vcpus"`
	CPUTime   uint64              `json:"cpu_time"` // nanoseconds
}

// Running 域是否处于可查询 vCPU 的活动状态
func (i *DomainInfo) Running() bool {
	switch i.State {
	case libvirt.DomainRunning, libvirt.DomainBlocked, libvirt.DomainPaused:
		return true
	default:
		return false
	}
}

// StateString 返回可读的状态
func (i *DomainInfo) StateString() string {
	return FormatDomainState(i.State)
}

// New 连接本机 qemu:///system
func New() (*Client, error) {
	return NewWithURI(string(libvirt.QEMUSystem))
}

// NewWithURI 连接指定 URI 的 hypervisor
func NewWithURI(uri string) (*Client, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse libvirt uri %q: %w", uri, err)
	}
	l, err := libvirt.ConnectToURI(u)
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s: %w", uri, err)
	}

	log.Debug().Str("uri", uri).Msg("Connected to libvirt")
	return &Client{conn: l, uri: uri}, nil
}

// Connect 实现 Connector
func Connect(uri string) (LibvirtClient, error) {
	return NewWithURI(uri)
}

func (c *Client) URI() string {
	return c.uri
}

func (c *Client) Close() error {
	if err := c.conn.Disconnect(); err != nil {
		return fmt.Errorf("disconnect %s: %w", c.uri, err)
	}
	return nil
}

func (c *Client) GetHostname() (string, error) {
	hostname, err := c.conn.ConnectGetHostname()
	if err != nil {
		return "", fmt.Errorf("get hostname: %w", err)
	}
	return hostname, nil
}

// GetHypervisorVersion 返回 hypervisor 版本，编码为 major*1000000 + minor*1000 + micro
func (c *Client) GetHypervisorVersion() (uint64, error) {
	v, err := c.conn.ConnectGetVersion()
	if err != nil {
		return 0, fmt.Errorf("get hypervisor version: %w", err)
	}
	return v, nil
}

// GetLibVersion 返回 libvirt 库版本
func (c *Client) GetLibVersion() (uint64, error) {
	v, err := c.conn.ConnectGetLibVersion()
	if err != nil {
		return 0, fmt.Errorf("get libvirt version: %w", err)
	}
	return v, nil
}

// SupportsStoragePools 存储池 API 需要 libvirt 0.4.0 及以上
func (c *Client) SupportsStoragePools() (bool, error) {
	v, err := c.GetLibVersion()
	if err != nil {
		return false, err
	}
	return v >= minStorageVersion, nil
}

// FormatVersion converts libvirt version number to human readable format
// libvirt version is encoded as: major * 1000000 + minor * 1000 + micro
// For example: 8003000 = 8.3.0
func FormatVersion(version uint64) string {
	major := version / 1000000
	minor := (version % 1000000) / 1000
	micro := version % 1000
	return fmt.Sprintf("%d.%d.%d", major, minor, micro)
}

// FormatDomainState 将域状态数字转换为可读字符串
func FormatDomainState(state libvirt.DomainState) string {
	switch state {
	case libvirt.DomainNostate:
		return "NoState"
	case libvirt.DomainRunning:
		return "Running"
	case libvirt.DomainBlocked:
		return "Blocked"
	case libvirt.DomainPaused:
		return "Paused"
	case libvirt.DomainShutdown:
		return "ShuttingDown"
	case libvirt.DomainShutoff:
		return "ShutOff"
	case libvirt.DomainCrashed:
		return "Crashed"
	case libvirt.DomainPmsuspended:
		return "PMSuspended"
	default:
		return "Unknown"
	}
}
