package domain

import "errors"

// 仓储层统一错误，transport 层映射为 HTTP 状态码
var (
	ErrNotFound     = errors.New("not found")     // 不存在或不属于当前用户（不区分，避免泄露存在性）
	ErrConflict     = errors.New("conflict")      // 唯一约束冲突
	ErrUnauthorized = errors.New("unauthorized")  // 用户名或密码错误（两种情况同一错误）
	ErrInvalidRole  = errors.New("invalid role")  // 角色只允许 user / admin
)
