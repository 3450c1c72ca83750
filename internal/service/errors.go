// Package service 包含了应用的业务逻辑层。
package service

import "errors"

// 业务层错误哨兵。handler 层据此映射为对应的 HTTP 状态码，
// 面向客户端的提示语固定且不携带内部细节，细节只进服务端日志。
var (
	// ErrInvalidInput 表示请求缺少必填字段或字段为空。
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated 表示调用方身份缺失或无效。
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound 表示目标资源不存在。
	ErrNotFound = errors.New("not found")
)
