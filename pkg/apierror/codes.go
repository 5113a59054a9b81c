package apierror

import "net/http"

// 预定义错误，使用 WrapError 附加具体消息和原始错误
var (
	// ErrInvalidParameter 请求参数不合法
	ErrInvalidParameter = &Error{
		Code:       "InvalidParameter",
		Message:    "The request contains an invalid parameter.",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrNotFound 域、存储池、过滤器或作业不存在
	ErrNotFound = &Error{
		Code:       "NotFound",
		Message:    "The requested resource does not exist.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrNotSupported = &Error{
		Code:       "NotSupported",
		Message:    "The requested operation is not supported.",
		HTTPStatus: http.StatusNotImplemented,
	}

	// ErrConnectionFailed 无法连接 hypervisor
	ErrConnectionFailed = &Error{
		Code:       "ConnectionFailed",
		Message:    "Unable to connect to the hypervisor.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrInternalError = &Error{
		Code:       "InternalError",
		Message:    "An internal error has occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrMigrationCheckFailed 迁移前检查未通过
	ErrMigrationCheckFailed = &Error{
		Code:       "MigrationCheckFailed",
		Message:    "The migration pre-check failed.",
		HTTPStatus: http.StatusConflict,
	}
)
