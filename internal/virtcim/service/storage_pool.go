package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/pkg/apierror"
	"github.com/jimyag/virtcim/pkg/libvirt"
	"github.com/jimyag/virtcim/pkg/pool"
	"github.com/jimyag/virtcim/pkg/xmlgen"
)

// StoragePoolService 存储池服务
type StoragePoolService struct {
	libvirtClient libvirt.LibvirtClient
}

// NewStoragePoolService 创建存储池服务
func NewStoragePoolService(libvirtClient libvirt.LibvirtClient) *StoragePoolService {
	return &StoragePoolService{libvirtClient: libvirtClient}
}

// ensureSupported hypervisor 不支持存储池 API 时返回 NotSupported
func (s *StoragePoolService) ensureSupported() error {
	ok, err := s.libvirtClient.SupportsStoragePools()
	if err != nil {
		return apierror.WrapError(apierror.ErrConnectionFailed, "Failed to get libvirt version", err)
	}
	if !ok {
		return apierror.WrapError(apierror.ErrNotSupported, "Storage pools are not supported by this libvirt", nil)
	}
	return nil
}

// DescribePool 获取并解析存储池
func (s *StoragePoolService) DescribePool(ctx context.Context, req *entity.DescribePoolRequest) (*entity.DescribePoolResponse, error) {
	kind := pool.KindDisk
	if req.Kind != "" {
		k, ok := pool.ParseKind(req.Kind)
		if !ok {
			return nil, apierror.WrapError(apierror.ErrInvalidParameter, fmt.Sprintf("Unknown pool kind %q", req.Kind), nil)
		}
		kind = k
	}

	if err := s.ensureSupported(); err != nil {
		return nil, err
	}

	doc, err := s.libvirtClient.GetStoragePoolXML(req.Name)
	if err != nil {
		return nil, libvirtError(err, fmt.Sprintf("Failed to get storage pool %s", req.Name))
	}

	p, err := pool.Parse(doc, kind)
	if err != nil {
		if errors.Is(err, pool.ErrNotSupported) {
			return nil, apierror.WrapError(apierror.ErrNotSupported, "Network pools are not supported", err)
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to parse storage pool", err)
	}

	zerolog.Ctx(ctx).Debug().Str("pool", req.Name).Msg("Storage pool parsed")
	return &entity.DescribePoolResponse{Pool: p}, nil
}

// DefinePool 定义并启动存储池
func (s *StoragePoolService) DefinePool(ctx context.Context, req *entity.DefinePoolRequest) error {
	logger := zerolog.Ctx(ctx)

	if err := s.ensureSupported(); err != nil {
		return err
	}

	def := &pool.DiskPool{
		Name:        req.Name,
		PoolType:    pool.ParsePoolType(req.Type),
		Path:        req.Path,
		DevicePaths: req.DevicePaths,
		Host:        req.Host,
		SourceDir:   req.SourceDir,
		Adapter:     req.Adapter,
		PortName:    req.PortName,
		NodeName:    req.NodeName,
	}
	if def.PoolType == pool.PoolTypeUnknown {
		return apierror.WrapError(apierror.ErrInvalidParameter, fmt.Sprintf("Unsupported pool type %q", req.Type), nil)
	}

	xml, err := xmlgen.StoragePool(def)
	if err != nil {
		return apierror.WrapError(apierror.ErrInvalidParameter, "Failed to build storage pool XML", err)
	}

	logger.Info().Str("pool", req.Name).Str("type", req.Type).Msg("Defining storage pool")
	if err := s.libvirtClient.DefinePool(xml); err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "Unable to create storage pool", err)
	}
	return nil
}

// DestroyPool 停止并删除存储池
func (s *StoragePoolService) DestroyPool(ctx context.Context, req *entity.PoolRequest) error {
	if err := s.ensureSupported(); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("pool", req.Name).Msg("Destroying storage pool")
	if err := s.libvirtClient.DestroyPool(req.Name); err != nil {
		return libvirtError(err, fmt.Sprintf("Unable to destroy storage pool %s", req.Name))
	}
	return nil
}

// CreateVolume 创建存储卷
func (s *StoragePoolService) CreateVolume(ctx context.Context, req *entity.CreateVolumeRequest) (*entity.CreateVolumeResponse, error) {
	if err := s.ensureSupported(); err != nil {
		return nil, err
	}

	xml, err := xmlgen.StorageVolume(&xmlgen.VolumeSpec{
		Name:     req.Name,
		Format:   req.Format,
		Capacity: req.Capacity,
		Unit:     req.Unit,
	})
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInvalidParameter, "Invalid volume parameters", err)
	}

	path, err := s.libvirtClient.CreateVolume(req.Pool, xml)
	if err != nil {
		return nil, libvirtError(err, fmt.Sprintf("Unable to create volume %s", req.Name))
	}

	zerolog.Ctx(ctx).Info().Str("pool", req.Pool).Str("volume", req.Name).Str("path", path).Msg("Volume created")
	return &entity.CreateVolumeResponse{Path: path}, nil
}

// DeleteVolume 删除存储卷
func (s *StoragePoolService) DeleteVolume(ctx context.Context, req *entity.DeleteVolumeRequest) error {
	if err := s.ensureSupported(); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("pool", req.Pool).Str("volume", req.Name).Msg("Deleting volume")
	if err := s.libvirtClient.DeleteVolume(req.Pool, req.Name); err != nil {
		return libvirtError(err, fmt.Sprintf("Unable to delete volume %s", req.Name))
	}
	return nil
}
