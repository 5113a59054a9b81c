package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/internal/virtcim/service"
	"github.com/jimyag/virtcim/pkg/ginx"
)

// MigrationServiceInterface 定义迁移服务接口
type MigrationServiceInterface interface {
	Migrate(ctx context.Context, req *entity.MigrateRequest) (*entity.MigrateResponse, error)
	MigrateToSystem(ctx context.Context, req *entity.MigrateToSystemRequest) (*entity.MigrateResponse, error)
	CheckMigratable(ctx context.Context, req *entity.CheckMigratableRequest) (*entity.CheckMigratableResponse, error)
	CheckMigratableToSystem(ctx context.Context, req *entity.CheckMigratableToSystemRequest) (*entity.CheckMigratableResponse, error)
}

// SSHKeyServiceInterface 定义临时迁移密钥服务接口
type SSHKeyServiceInterface interface {
	CopySSHKey(ctx context.Context, req *entity.CopySSHKeyRequest) error
	DeleteSSHKey(ctx context.Context) error
}

type Migration struct {
	migrationService MigrationServiceInterface
	sshKeyService    SSHKeyServiceInterface
}

func NewMigration(migrationService *service.MigrationService, sshKeyService *service.SSHKeyService) *Migration {
	return &Migration{
		migrationService: migrationService,
		sshKeyService:    sshKeyService,
	}
}

func (m *Migration) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/migrate-to-host", ginx.Adapt(m.MigrateToHost))
	router.POST("/migrate-to-system", ginx.Adapt(m.MigrateToSystem))
	router.POST("/check-migratable-to-host", ginx.Adapt(m.CheckMigratableToHost))
	router.POST("/check-migratable-to-system", ginx.Adapt(m.CheckMigratableToSystem))
	router.POST("/copy-ssh-key", ginx.AdaptNoContent(m.CopySSHKey))
	router.POST("/delete-ssh-key", ginx.AdaptNoContent(m.DeleteSSHKey))
}

func (m *Migration) MigrateToHost(ctx *gin.Context, req *entity.MigrateRequest) (*entity.MigrateResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("domain", req.Domain).
		Str("destination", req.Destination).
		Stringer("type", req.Settings.Type).
		Msg("API: MigrateToHost called")

	resp, err := m.migrationService.Migrate(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to start migration")
		return nil, err
	}
	return resp, nil
}

func (m *Migration) MigrateToSystem(ctx *gin.Context, req *entity.MigrateToSystemRequest) (*entity.MigrateResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("domain", req.Domain).
		Str("destinationSystem", req.DestinationSystem).
		Stringer("type", req.Settings.Type).
		Msg("API: MigrateToSystem called")

	resp, err := m.migrationService.MigrateToSystem(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to start migration")
		return nil, err
	}
	return resp, nil
}

func (m *Migration) CheckMigratableToHost(ctx *gin.Context, req *entity.CheckMigratableRequest) (*entity.CheckMigratableResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("domain", req.Domain).
		Str("destination", req.Destination).
		Msg("API: CheckMigratableToHost called")

	resp, err := m.migrationService.CheckMigratable(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to check migration")
		return nil, err
	}
	return resp, nil
}

func (m *Migration) CheckMigratableToSystem(ctx *gin.Context, req *entity.CheckMigratableToSystemRequest) (*entity.CheckMigratableResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("domain", req.Domain).
		Str("destinationSystem", req.DestinationSystem).
		Msg("API: CheckMigratableToSystem called")

	resp, err := m.migrationService.CheckMigratableToSystem(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to check migration")
		return nil, err
	}
	return resp, nil
}

func (m *Migration) CopySSHKey(ctx *gin.Context, req *entity.CopySSHKeyRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("source", req.Source).Msg("API: CopySSHKey called")

	if err := m.sshKeyService.CopySSHKey(ctx, req); err != nil {
		logger.Error().Err(err).Msg("Failed to copy ssh key")
		return err
	}
	return nil
}

func (m *Migration) DeleteSSHKey(ctx *gin.Context, _ *struct{}) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("API: DeleteSSHKey called")

	if err := m.sshKeyService.DeleteSSHKey(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to delete ssh key")
		return err
	}
	return nil
}
