package entity

import (
	"github.com/jimyag/virtcim/pkg/pool"
)

// DescribePoolRequest 查询存储池，Kind 为 disk 或 net，默认 disk
type DescribePoolRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

func (r *DescribePoolRequest) IsValid() error {
	return requireFields(field{"name", r.Name})
}

type DescribePoolResponse struct {
	Pool pool.Pool `json:"pool"`
}

// DefinePoolRequest 定义并启动存储池
type DefinePoolRequest struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Path        string   `json:"path"`
	DevicePaths []string `json:"device_paths,omitempty"`
	Host        string   `json:"host,omitempty"`
	SourceDir   string   `json:"source_dir,omitempty"`
	Adapter     string   `json:"adapter,omitempty"`
	PortName    string   `json:"port_name,omitempty"`
	NodeName    string   `json:"node_name,omitempty"`
}

func (r *DefinePoolRequest) IsValid() error {
	return requireFields(field{"name", r.Name}, field{"type", r.Type}, field{"path", r.Path})
}

type PoolRequest struct {
	Name string `json:"name"`
}

func (r *PoolRequest) IsValid() error {
	return requireFields(field{"name", r.Name})
}

// CreateVolumeRequest 在存储池中创建存储卷
type CreateVolumeRequest struct {
	Pool     string `json:"pool"`
	Name     string `json:"name"`
	Format   string `json:"format,omitempty"` // raw 或 qcow2，默认 raw
	Capacity uint64 `json:"capacity"`
	Unit     string `json:"unit,omitempty"` // 默认 G
}

func (r *CreateVolumeRequest) IsValid() error {
	return requireFields(field{"pool", r.Pool}, field{"name", r.Name})
}

type CreateVolumeResponse struct {
	Path string `json:"path"`
}

type DeleteVolumeRequest struct {
	Pool string `json:"pool"`
	Name string `json:"name"`
}

func (r *DeleteVolumeRequest) IsValid() error {
	return requireFields(field{"pool", r.Pool}, field{"name", r.Name})
}
