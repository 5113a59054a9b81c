package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/internal/virtcim/service"
	"github.com/jimyag/virtcim/pkg/ginx"
)

// StoragePoolServiceInterface 定义存储池服务接口
type StoragePoolServiceInterface interface {
	DescribePool(ctx context.Context, req *entity.DescribePoolRequest) (*entity.DescribePoolResponse, error)
	DefinePool(ctx context.Context, req *entity.DefinePoolRequest) error
	DestroyPool(ctx context.Context, req *entity.PoolRequest) error
	CreateVolume(ctx context.Context, req *entity.CreateVolumeRequest) (*entity.CreateVolumeResponse, error)
	DeleteVolume(ctx context.Context, req *entity.DeleteVolumeRequest) error
}

type StoragePool struct {
	poolService StoragePoolServiceInterface
}

func NewStoragePool(poolService *service.StoragePoolService) *StoragePool {
	return &StoragePool{
		poolService: poolService,
	}
}

func (p *StoragePool) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/describe-pool", ginx.Adapt(p.DescribePool))
	router.POST("/define-pool", ginx.AdaptNoContent(p.DefinePool))
	router.POST("/destroy-pool", ginx.AdaptNoContent(p.DestroyPool))
	router.POST("/create-volume", ginx.Adapt(p.CreateVolume))
	router.POST("/delete-volume", ginx.AdaptNoContent(p.DeleteVolume))
}

func (p *StoragePool) DescribePool(ctx *gin.Context, req *entity.DescribePoolRequest) (*entity.DescribePoolResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("pool", req.Name).Str("kind", req.Kind).Msg("API: DescribePool called")

	resp, err := p.poolService.DescribePool(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("pool", req.Name).Msg("Failed to describe pool")
		return nil, err
	}
	return resp, nil
}

func (p *StoragePool) DefinePool(ctx *gin.Context, req *entity.DefinePoolRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("pool", req.Name).Str("type", req.Type).Msg("API: DefinePool called")

	if err := p.poolService.DefinePool(ctx, req); err != nil {
		logger.Error().Err(err).Str("pool", req.Name).Msg("Failed to define pool")
		return err
	}
	return nil
}

func (p *StoragePool) DestroyPool(ctx *gin.Context, req *entity.PoolRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("pool", req.Name).Msg("API: DestroyPool called")

	if err := p.poolService.DestroyPool(ctx, req); err != nil {
		logger.Error().Err(err).Str("pool", req.Name).Msg("Failed to destroy pool")
		return err
	}
	return nil
}

func (p *StoragePool) CreateVolume(ctx *gin.Context, req *entity.CreateVolumeRequest) (*entity.CreateVolumeResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("pool", req.Pool).
		Str("volume", req.Name).
		Uint64("capacity", req.Capacity).
		Msg("API: CreateVolume called")

	resp, err := p.poolService.CreateVolume(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("volume", req.Name).Msg("Failed to create volume")
		return nil, err
	}
	return resp, nil
}

func (p *StoragePool) DeleteVolume(ctx *gin.Context, req *entity.DeleteVolumeRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("pool", req.Pool).Str("volume", req.Name).Msg("API: DeleteVolume called")

	if err := p.poolService.DeleteVolume(ctx, req); err != nil {
		logger.Error().Err(err).Str("volume", req.Name).Msg("Failed to delete volume")
		return err
	}
	return nil
}
