package service

import "errors"

// 服务层错误哨兵，handler 据此映射 HTTP 状态码
var (
	// ErrNotFound 实体不存在或所有权谓词不满足
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument 请求字段缺失或非法
	ErrInvalidArgument = errors.New("invalid argument")
)
