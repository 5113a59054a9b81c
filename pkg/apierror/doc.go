// Package apierror 定义服务层统一返回的错误类型
//
// 每个错误由错误码、面向调用方的消息和 HTTP 状态码组成，内部错误保存在 RawError 中，
// 只用于日志，不会序列化到响应。errors.Is 按错误码比较：
//
//	if errors.Is(err, apierror.ErrNotFound) { ... }
//
// 响应同时支持 JSON 和 XML：
//
//	<Response>
//	    <Errors>
//	        <Error>
//	            <Code>NotFound</Code>
//	            <Message>Failed to lookup domain `vm1'</Message>
//	        </Error>
//	    </Errors>
//	    <RequestID>...</RequestID>
//	</Response>
package apierror
