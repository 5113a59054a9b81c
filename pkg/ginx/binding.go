package ginx

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

func isXMLContent(value string) bool {
	return strings.Contains(value, "application/xml") || strings.Contains(value, "text/xml")
}

// bindArgs 绑定请求参数
// 先按 Content-Type 绑定 body（空 body 忽略），再绑定 URI 和 Query 参数
func bindArgs(ctx *gin.Context, args any) error {
	if isXMLContent(ctx.GetHeader("Content-Type")) {
		setResponseFormat(ctx, formatXML)
		if err := ctx.ShouldBindXML(args); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	} else if ctx.Request.Body != nil && ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(args); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}

	if len(ctx.Params) > 0 {
		if err := ctx.ShouldBindUri(args); err != nil {
			return err
		}
	}
	if ctx.Request.URL.RawQuery != "" {
		if err := ctx.ShouldBindQuery(args); err != nil {
			return err
		}
	}
	return nil
}
