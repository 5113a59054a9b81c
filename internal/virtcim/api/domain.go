package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/internal/virtcim/service"
	"github.com/jimyag/virtcim/pkg/ginx"
)

// DomainServiceInterface 定义域服务接口
type DomainServiceInterface interface {
	DescribeDomain(ctx context.Context, req *entity.DomainRequest) (*entity.DescribeDomainResponse, error)
	ListDomains(ctx context.Context) (*entity.ListDomainsResponse, error)
	ListDevices(ctx context.Context, req *entity.ListDevicesRequest) (*entity.ListDevicesResponse, error)
	AttachDevice(ctx context.Context, req *entity.DeviceRequest) error
	DetachDevice(ctx context.Context, req *entity.DeviceRequest) error
	ChangeDevice(ctx context.Context, req *entity.DeviceRequest) error
}

type Domain struct {
	domainService DomainServiceInterface
}

func NewDomain(domainService *service.DomainService) *Domain {
	return &Domain{
		domainService: domainService,
	}
}

func (d *Domain) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/list-domains", ginx.AdaptNoArgs(d.ListDomains))
	router.POST("/describe-domain", ginx.Adapt(d.DescribeDomain))
	router.POST("/list-devices", ginx.Adapt(d.ListDevices))
	router.POST("/attach-device", ginx.AdaptNoContent(d.AttachDevice))
	router.POST("/detach-device", ginx.AdaptNoContent(d.DetachDevice))
	router.POST("/change-device", ginx.AdaptNoContent(d.ChangeDevice))
}

func (d *Domain) ListDomains(ctx *gin.Context) (*entity.ListDomainsResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("API: ListDomains called")

	resp, err := d.domainService.ListDomains(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list domains")
		return nil, err
	}
	return resp, nil
}

func (d *Domain) DescribeDomain(ctx *gin.Context, req *entity.DomainRequest) (*entity.DescribeDomainResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("domain", req.Name).Msg("API: DescribeDomain called")

	resp, err := d.domainService.DescribeDomain(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("domain", req.Name).Msg("Failed to describe domain")
		return nil, err
	}
	return resp, nil
}

func (d *Domain) ListDevices(ctx *gin.Context, req *entity.ListDevicesRequest) (*entity.ListDevicesResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("domain", req.Domain).Str("kind", req.Kind).Msg("API: ListDevices called")

	resp, err := d.domainService.ListDevices(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to list devices")
		return nil, err
	}
	return resp, nil
}

func (d *Domain) AttachDevice(ctx *gin.Context, req *entity.DeviceRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("domain", req.Domain).Str("kind", req.Device.Kind).Msg("API: AttachDevice called")

	if err := d.domainService.AttachDevice(ctx, req); err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to attach device")
		return err
	}
	return nil
}

func (d *Domain) DetachDevice(ctx *gin.Context, req *entity.DeviceRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("domain", req.Domain).Str("kind", req.Device.Kind).Msg("API: DetachDevice called")

	if err := d.domainService.DetachDevice(ctx, req); err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to detach device")
		return err
	}
	return nil
}

func (d *Domain) ChangeDevice(ctx *gin.Context, req *entity.DeviceRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("domain", req.Domain).Str("kind", req.Device.Kind).Msg("API: ChangeDevice called")

	if err := d.domainService.ChangeDevice(ctx, req); err != nil {
		logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to change device")
		return err
	}
	return nil
}
