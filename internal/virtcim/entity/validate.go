// Package entity 定义服务层和 API 使用的请求、响应和业务对象
package entity

import (
	"fmt"

	"github.com/jimyag/virtcim/pkg/device"
)

type field struct {
	name  string
	value string
}

// requireFields 检查必填字段
func requireFields(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}

// ResolveDeviceID 接受 <host>/<dev> 形式的全限定 ID，返回设备部分
func ResolveDeviceID(id string) string {
	if _, dev, ok := device.ParseFQDevID(id); ok {
		return dev
	}
	return id
}

func errUnknownKind(kind string) error {
	return fmt.Errorf("unknown device kind %q", kind)
}
