package entity

import (
	"github.com/jimyag/virtcim/pkg/acl"
)

// FilterRequest 按名称或 UUID 查询过滤器，二者至少一个
type FilterRequest struct {
	Name string `json:"name,omitempty"`
	UUID string `json:"uuid,omitempty"`
}

func (r *FilterRequest) IsValid() error {
	if r.Name == "" && r.UUID == "" {
		return requireFields(field{"name or uuid", ""})
	}
	return nil
}

type FilterResponse struct {
	Filter *acl.Filter `json:"filter"`
}

type ListFiltersResponse struct {
	Filters []*acl.Filter `json:"filters"`
}

// PutFilterRequest 创建或更新过滤器
type PutFilterRequest struct {
	Filter *acl.Filter `json:"filter"`
}

func (r *PutFilterRequest) IsValid() error {
	if r.Filter == nil {
		return requireFields(field{"filter", ""})
	}
	return requireFields(field{"filter.name", r.Filter.Name})
}

// FilterRefRequest 增加或删除过滤器引用
type FilterRefRequest struct {
	Filter string `json:"filter"`
	Ref    string `json:"ref"`
}

func (r *FilterRefRequest) IsValid() error {
	return requireFields(field{"filter", r.Filter}, field{"ref", r.Ref})
}
