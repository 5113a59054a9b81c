package ginx

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

const (
	formatJSON = "json"
	formatXML  = "xml"
)

const (
	responseFormatKey = "ginx.response_format"
	requestIDKey      = "ginx.request_id"
)

func setResponseFormat(ctx *gin.Context, format string) {
	ctx.Set(responseFormatKey, format)
}

func getResponseFormat(ctx *gin.Context) string {
	if v, ok := ctx.Get(responseFormatKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if isXMLContent(ctx.GetHeader("Accept")) {
		return formatXML
	}
	return formatJSON
}

// RequestID 返回当前请求的 ID
func RequestID(ctx *gin.Context) string {
	return ctx.GetString(requestIDKey)
}

// RequestContext 为每个请求分配请求 ID，并把带有请求 ID 的 logger 放入 request context
// 下游通过 zerolog.Ctx(ctx) 取得该 logger
func RequestContext(logger zerolog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.Header(RequestIDHeader, id)

		l := logger.With().Str("requestID", id).Logger()
		ctx.Request = ctx.Request.WithContext(l.WithContext(ctx.Request.Context()))

		ctx.Next()

		l.Debug().
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Msg("Request handled")
	}
}
