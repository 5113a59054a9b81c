package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/internal/virtcim/service"
	"github.com/jimyag/virtcim/pkg/ginx"
)

// SnapshotServiceInterface 定义快照服务接口
type SnapshotServiceInterface interface {
	CreateSnapshot(ctx context.Context, req *entity.CreateSnapshotRequest) (*entity.CreateSnapshotResponse, error)
	DestroySnapshot(ctx context.Context, req *entity.SnapshotRequest) error
	ApplySnapshot(ctx context.Context, req *entity.SnapshotRequest) error
}

type Snapshot struct {
	snapshotService SnapshotServiceInterface
}

func NewSnapshot(snapshotService *service.SnapshotService) *Snapshot {
	return &Snapshot{
		snapshotService: snapshotService,
	}
}

func (s *Snapshot) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/create-snapshot", ginx.Adapt(s.CreateSnapshot))
	router.POST("/destroy-snapshot", ginx.AdaptNoContent(s.DestroySnapshot))
	router.POST("/apply-snapshot", ginx.AdaptNoContent(s.ApplySnapshot))
}

func (s *Snapshot) CreateSnapshot(ctx *gin.Context, req *entity.CreateSnapshotRequest) (*entity.CreateSnapshotResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("domain", req.Domain).
		Int("type", int(req.Type)).
		Msg("API: CreateSnapshot called")

	resp, err := s.snapshotService.CreateSnapshot(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to create snapshot")
		return nil, err
	}
	return resp, nil
}

func (s *Snapshot) DestroySnapshot(ctx *gin.Context, req *entity.SnapshotRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("domain", req.Domain).Msg("API: DestroySnapshot called")

	if err := s.snapshotService.DestroySnapshot(ctx, req); err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to destroy snapshot")
		return err
	}
	return nil
}

func (s *Snapshot) ApplySnapshot(ctx *gin.Context, req *entity.SnapshotRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("domain", req.Domain).Msg("API: ApplySnapshot called")

	if err := s.snapshotService.ApplySnapshot(ctx, req); err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to apply snapshot")
		return err
	}
	return nil
}
