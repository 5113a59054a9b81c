// Package ginx 将带类型参数的业务函数适配为 gin handler
//
// 请求体按 Content-Type 以 JSON 或 XML 绑定，URI 和 Query 参数随后覆盖绑定。
// 参数实现 IsValid() error 时在调用业务函数前校验。
// 返回的 *apierror.Error 按其 HTTPStatus 渲染，其他错误渲染为 InternalError。
//
//	router.POST("/describe-domain", ginx.Adapt(api.DescribeDomain))
//
// 业务函数签名：
//
//	func(c *gin.Context, args *Args) (Resp, error)  // Adapt
//	func(c *gin.Context, args *Args) error          // AdaptNoContent
//	func(c *gin.Context) (Resp, error)              // AdaptNoArgs
package ginx
