package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ProfileCache 用户资料的 cache-aside：
// key user:{id}，值为调用方决定的 JSON 投影，TTL 写入时重置。
// 缓存永远不是事实来源，任何失败都降级为回源查库。
type ProfileCache struct {
	C   *Cache
	TTL time.Duration
	log *zap.Logger
}

func NewProfileCache(c *Cache, ttl time.Duration, log *zap.Logger) *ProfileCache {
	if ttl <= 0 {
		ttl = 1800 * time.Second
	}
	return &ProfileCache{C: c, TTL: ttl, log: log}
}

func (p *ProfileCache) Key(id uint) string { return fmt.Sprintf("user:%d", id) }

// Write 覆盖写入并重置 TTL；失败只记日志，不影响调用方
func (p *ProfileCache) Write(ctx context.Context, id uint, fields any) {
	b, err := json.Marshal(fields)
	if err != nil {
		p.log.Warn("profile cache marshal", zap.Uint("user_id", id), zap.Error(err))
		return
	}
	if err := p.C.RDB.Set(ctx, p.Key(id), b, p.TTL).Err(); err != nil {
		p.log.Warn("profile cache write", zap.Uint("user_id", id), zap.Error(err))
	}
}

// Read miss 返回 (nil, false)；任何错误按 miss 处理
func (p *ProfileCache) Read(ctx context.Context, id uint) (json.RawMessage, bool) {
	b, err := p.C.RDB.Get(ctx, p.Key(id)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Invalidate best-effort 删除；删除失败由 TTL 兜底过期
func (p *ProfileCache) Invalidate(ctx context.Context, id uint) {
	if err := p.C.RDB.Del(ctx, p.Key(id)).Err(); err != nil {
		p.log.Warn("profile cache invalidate", zap.Uint("user_id", id), zap.Error(err))
	}
}
