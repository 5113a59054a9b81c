package apierror

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	XMLName   xml.Name `xml:"Response"     json:"-"`
	Errors    []Error  `xml:"Errors>Error" json:"errors"`
	RequestID string   `xml:"RequestID"    json:"requestID"`
}

func (er *ErrorResponse) Error() string {
	parts := make([]string, 0, len(er.Errors)+1)
	parts = append(parts, "RequestID: "+er.RequestID)
	for _, e := range er.Errors {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// Error 单个错误
type Error struct {
	Code       string `xml:"Code"    json:"code"`
	Message    string `xml:"Message" json:"message"`
	HTTPStatus int    `xml:"-"       json:"-"`
	RawError   error  `xml:"-"       json:"-"`
}

func (e *Error) Error() string {
	if e.RawError != nil {
		return fmt.Sprintf("[%s] %s (RawError: %v)", e.Code, e.Message, e.RawError)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is 按错误码比较
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.RawError
}

// NewError 创建错误，HTTP 状态码为 500
func NewError(code, message string) *Error {
	return NewErrorWithStatus(code, message, http.StatusInternalServerError)
}

// NewErrorWithStatus 创建错误并指定 HTTP 状态码
func NewErrorWithStatus(code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// WrapError 基于预定义错误创建新错误，保留错误码和状态码
func WrapError(base *Error, message string, raw error) *Error {
	return &Error{
		Code:       base.Code,
		Message:    message,
		HTTPStatus: base.HTTPStatus,
		RawError:   raw,
	}
}

// From 将任意错误转换为 *Error
// 非 *Error 的错误归为 InternalError
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return WrapError(ErrInternalError, ErrInternalError.Message, err)
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(requestID string, errs ...*Error) *ErrorResponse {
	out := make([]Error, len(errs))
	for i, e := range errs {
		out[i] = *e
	}
	return &ErrorResponse{
		Errors:    out,
		RequestID: requestID,
	}
}

// AddError 添加错误
func (er *ErrorResponse) AddError(err *Error) {
	er.Errors = append(er.Errors, *err)
}

// ToXML 序列化为 XML
func (er *ErrorResponse) ToXML() ([]byte, error) {
	return xml.MarshalIndent(er, "", "    ")
}
