package ginx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// validator 参数自校验
type validator interface {
	IsValid() error
}

// bindAndValidate 绑定并校验参数，失败时已写入响应
func bindAndValidate[T any](ctx *gin.Context) (*T, bool) {
	args := new(T)
	if err := bindArgs(ctx, args); err != nil {
		renderError(ctx, invalidParameter(err))
		return nil, false
	}
	if v, ok := any(args).(validator); ok {
		if err := v.IsValid(); err != nil {
			renderError(ctx, invalidParameter(err))
			return nil, false
		}
	}
	return args, true
}

// Adapt 适配有参数、有返回值和 error 的 handler
func Adapt[TArgs any, TResp any](fn func(*gin.Context, *TArgs) (TResp, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		args, ok := bindAndValidate[TArgs](ctx)
		if !ok {
			return
		}
		resp, err := fn(ctx, args)
		if err != nil {
			renderError(ctx, err)
			return
		}
		renderResponse(ctx, http.StatusOK, resp)
	}
}

// AdaptNoContent 适配有参数、只有 error 的 handler，成功时返回 204
func AdaptNoContent[TArgs any](fn func(*gin.Context, *TArgs) error) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		args, ok := bindAndValidate[TArgs](ctx)
		if !ok {
			return
		}
		if err := fn(ctx, args); err != nil {
			renderError(ctx, err)
			return
		}
		ctx.Status(http.StatusNoContent)
	}
}

// AdaptNoArgs 适配无参数、有返回值和 error 的 handler
func AdaptNoArgs[TResp any](fn func(*gin.Context) (TResp, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		resp, err := fn(ctx)
		if err != nil {
			renderError(ctx, err)
			return
		}
		renderResponse(ctx, http.StatusOK, resp)
	}
}
