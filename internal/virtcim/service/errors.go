package service

import (
	golibvirt "github.com/digitalocean/go-libvirt"

	"github.com/jimyag/virtcim/pkg/apierror"
)

// libvirtError 将 libvirt 错误转换为 API 错误，对象不存在时返回 NotFound
func libvirtError(err error, message string) *apierror.Error {
	if golibvirt.IsNotFound(err) {
		return apierror.WrapError(apierror.ErrNotFound, message, err)
	}
	return apierror.WrapError(apierror.ErrInternalError, message, err)
}
