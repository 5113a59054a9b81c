package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
	"github.com/jimyag/virtcim/pkg/acl"
	"github.com/jimyag/virtcim/pkg/apierror"
	"github.com/jimyag/virtcim/pkg/libvirt"
)

// FilterService 网络过滤器服务
type FilterService struct {
	libvirtClient libvirt.LibvirtClient
}

// NewFilterService 创建网络过滤器服务
func NewFilterService(libvirtClient libvirt.LibvirtClient) *FilterService {
	return &FilterService{libvirtClient: libvirtClient}
}

// GetFilter 按名称或 UUID 获取过滤器，同时提供时以名称为准
func (s *FilterService) GetFilter(ctx context.Context, req *entity.FilterRequest) (*entity.FilterResponse, error) {
	var (
		doc string
		err error
	)
	if req.Name != "" {
		doc, err = s.libvirtClient.GetFilterXML(req.Name)
	} else {
		doc, err = s.libvirtClient.GetFilterXMLByUUID(req.UUID)
	}
	if err != nil {
		return nil, libvirtError(err, fmt.Sprintf("Filter %s not found", firstNonEmpty(req.Name, req.UUID)))
	}

	f, err := acl.Parse(doc)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to parse filter", err)
	}
	return &entity.FilterResponse{Filter: f}, nil
}

// ListFilters 列出所有过滤器
// 无法解析的过滤器跳过
func (s *FilterService) ListFilters(ctx context.Context) (*entity.ListFiltersResponse, error) {
	logger := zerolog.Ctx(ctx)

	names, err := s.libvirtClient.ListFilters()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list filters", err)
	}

	filters := make([]*acl.Filter, 0, len(names))
	for _, name := range names {
		doc, err := s.libvirtClient.GetFilterXML(name)
		if err != nil {
			logger.Warn().Err(err).Str("filter", name).Msg("Failed to get filter XML")
			continue
		}
		f, err := acl.Parse(doc)
		if err != nil {
			logger.Warn().Err(err).Str("filter", name).Msg("Failed to parse filter")
			continue
		}
		filters = append(filters, f)
	}
	return &entity.ListFiltersResponse{Filters: filters}, nil
}

// CreateFilter 创建过滤器，同名过滤器已存在时失败
func (s *FilterService) CreateFilter(ctx context.Context, req *entity.PutFilterRequest) (*entity.FilterResponse, error) {
	if _, err := s.libvirtClient.GetFilterXML(req.Filter.Name); err == nil {
		return nil, apierror.WrapError(apierror.ErrInvalidParameter, fmt.Sprintf("Filter %s already exists", req.Filter.Name), nil)
	}
	return s.define(ctx, req.Filter)
}

// UpdateFilter 更新已存在的过滤器
func (s *FilterService) UpdateFilter(ctx context.Context, req *entity.PutFilterRequest) (*entity.FilterResponse, error) {
	if _, err := s.libvirtClient.GetFilterXML(req.Filter.Name); err != nil {
		return nil, libvirtError(err, fmt.Sprintf("Filter %s not found", req.Filter.Name))
	}
	return s.define(ctx, req.Filter)
}

func (s *FilterService) define(ctx context.Context, f *acl.Filter) (*entity.FilterResponse, error) {
	// 规则名按位置重新生成
	rules := f.Rules
	f.Rules = nil
	for _, r := range rules {
		f.AppendRule(r)
	}

	xml, err := f.Marshal()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInvalidParameter, "Failed to build filter XML", err)
	}
	if err := s.libvirtClient.DefineFilter(xml); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, fmt.Sprintf("Failed to define filter %s", f.Name), err)
	}

	zerolog.Ctx(ctx).Info().Str("filter", f.Name).Int("rules", len(f.Rules)).Msg("Filter defined")
	return &entity.FilterResponse{Filter: f}, nil
}

// DeleteFilter 删除过滤器
func (s *FilterService) DeleteFilter(ctx context.Context, req *entity.FilterRequest) error {
	name := req.Name
	if name == "" {
		resp, err := s.GetFilter(ctx, req)
		if err != nil {
			return err
		}
		name = resp.Filter.Name
	}

	if err := s.libvirtClient.UndefineFilter(name); err != nil {
		return libvirtError(err, fmt.Sprintf("Failed to delete filter %s", name))
	}
	zerolog.Ctx(ctx).Info().Str("filter", name).Msg("Filter deleted")
	return nil
}

// AppendFilterRef 为过滤器增加引用，已存在时不修改
func (s *FilterService) AppendFilterRef(ctx context.Context, req *entity.FilterRefRequest) (*entity.FilterResponse, error) {
	resp, err := s.GetFilter(ctx, &entity.FilterRequest{Name: req.Filter})
	if err != nil {
		return nil, err
	}
	if !resp.Filter.AppendRef(req.Ref) {
		return resp, nil
	}
	return s.define(ctx, resp.Filter)
}

// RemoveFilterRef 删除过滤器的引用
func (s *FilterService) RemoveFilterRef(ctx context.Context, req *entity.FilterRefRequest) (*entity.FilterResponse, error) {
	resp, err := s.GetFilter(ctx, &entity.FilterRequest{Name: req.Filter})
	if err != nil {
		return nil, err
	}
	if !resp.Filter.RemoveRef(req.Ref) {
		return nil, apierror.WrapError(apierror.ErrNotFound,
			fmt.Sprintf("Filter %s does not reference %s", req.Filter, req.Ref), nil)
	}
	return s.define(ctx, resp.Filter)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
