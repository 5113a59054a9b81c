package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/internal/virtcim/service"
	"github.com/jimyag/virtcim/pkg/ginx"
)

// FilterServiceInterface 定义网络过滤器服务接口
type FilterServiceInterface interface {
	GetFilter(ctx context.Context, req *entity.FilterRequest) (*entity.FilterResponse, error)
	ListFilters(ctx context.Context) (*entity.ListFiltersResponse, error)
	CreateFilter(ctx context.Context, req *entity.PutFilterRequest) (*entity.FilterResponse, error)
	UpdateFilter(ctx context.Context, req *entity.PutFilterRequest) (*entity.FilterResponse, error)
	DeleteFilter(ctx context.Context, req *entity.FilterRequest) error
	AppendFilterRef(ctx context.Context, req *entity.FilterRefRequest) (*entity.FilterResponse, error)
	RemoveFilterRef(ctx context.Context, req *entity.FilterRefRequest) (*entity.FilterResponse, error)
}

type Filter struct {
	filterService FilterServiceInterface
}

func NewFilter(filterService *service.FilterService) *Filter {
	return &Filter{
		filterService: filterService,
	}
}

func (f *Filter) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/describe-filter", ginx.Adapt(f.DescribeFilter))
	router.POST("/list-filters", ginx.AdaptNoArgs(f.ListFilters))
	router.POST("/create-filter", ginx.Adapt(f.CreateFilter))
	router.POST("/update-filter", ginx.Adapt(f.UpdateFilter))
	router.POST("/delete-filter", ginx.AdaptNoContent(f.DeleteFilter))
	router.POST("/append-filter-ref", ginx.Adapt(f.AppendFilterRef))
	router.POST("/remove-filter-ref", ginx.Adapt(f.RemoveFilterRef))
}

func (f *Filter) DescribeFilter(ctx *gin.Context, req *entity.FilterRequest) (*entity.FilterResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("filter", req.Name).Str("uuid", req.UUID).Msg("API: DescribeFilter called")

	resp, err := f.filterService.GetFilter(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("filter", req.Name).Msg("Failed to describe filter")
		return nil, err
	}
	return resp, nil
}

func (f *Filter) ListFilters(ctx *gin.Context) (*entity.ListFiltersResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("API: ListFilters called")

	resp, err := f.filterService.ListFilters(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list filters")
		return nil, err
	}
	return resp, nil
}

func (f *Filter) CreateFilter(ctx *gin.Context, req *entity.PutFilterRequest) (*entity.FilterResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("filter", req.Filter.Name).Msg("API: CreateFilter called")

	resp, err := f.filterService.CreateFilter(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("filter", req.Filter.Name).Msg("Failed to create filter")
		return nil, err
	}
	return resp, nil
}

func (f *Filter) UpdateFilter(ctx *gin.Context, req *entity.PutFilterRequest) (*entity.FilterResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("filter", req.Filter.Name).Msg("API: UpdateFilter called")

	resp, err := f.filterService.UpdateFilter(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("filter", req.Filter.Name).Msg("Failed to update filter")
		return nil, err
	}
	return resp, nil
}

func (f *Filter) DeleteFilter(ctx *gin.Context, req *entity.FilterRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("filter", req.Name).Msg("API: DeleteFilter called")

	if err := f.filterService.DeleteFilter(ctx, req); err != nil {
		logger.Error().Err(err).Str("filter", req.Name).Msg("Failed to delete filter")
		return err
	}
	return nil
}

func (f *Filter) AppendFilterRef(ctx *gin.Context, req *entity.FilterRefRequest) (*entity.FilterResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("filter", req.Filter).Str("ref", req.Ref).Msg("API: AppendFilterRef called")

	resp, err := f.filterService.AppendFilterRef(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("filter", req.Filter).Msg("Failed to append filter ref")
		return nil, err
	}
	return resp, nil
}

func (f *Filter) RemoveFilterRef(ctx *gin.Context, req *entity.FilterRefRequest) (*entity.FilterResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("filter", req.Filter).Str("ref", req.Ref).Msg("API: RemoveFilterRef called")

	resp, err := f.filterService.RemoveFilterRef(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("filter", req.Filter).Msg("Failed to remove filter ref")
		return nil, err
	}
	return resp, nil
}
