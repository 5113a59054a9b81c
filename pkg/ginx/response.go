package ginx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/virtcim/pkg/apierror"
)

func invalidParameter(err error) *apierror.Error {
	return apierror.WrapError(apierror.ErrInvalidParameter, err.Error(), err)
}

// renderResponse 按请求格式渲染响应，nil 返回 204
func renderResponse(ctx *gin.Context, status int, resp any) {
	if resp == nil {
		ctx.Status(http.StatusNoContent)
		return
	}
	if getResponseFormat(ctx) == formatXML {
		ctx.XML(status, resp)
		return
	}
	ctx.JSON(status, resp)
}

// renderError 渲染错误响应
// RawError 只记录日志，不会返回给调用方
func renderError(ctx *gin.Context, err error) {
	apiErr := apierror.From(err)
	status := apiErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	zerolog.Ctx(ctx.Request.Context()).Warn().
		Err(apiErr.RawError).
		Str("code", apiErr.Code).
		Int("status", status).
		Msg(apiErr.Message)

	renderResponse(ctx, status, apierror.NewErrorResponse(RequestID(ctx), apiErr))
}
