package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rioanand02/education-scheduler-api/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单与登录限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 滑动窗口限流 ──

const rateLimitPrefix = "ratelimit:"

// CheckRateLimit 基于有序集合的滑动窗口计数
// 清理过期记录、写入本次请求、计数在同一个 MULTI 中完成，并发请求各自看到包含自身的计数；
// 超限时撤回本次写入，被拒绝的请求不占用窗口配额。
// 返回 allowed=false 表示窗口内请求数已达上限；retryAfter 为最早一条记录滑出窗口的剩余时间
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error) {
	now := time.Now()
	redisKey := rateLimitPrefix + key
	windowStart := now.Add(-window).UnixNano()
	member := uuid.New().String()

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, redisKey, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	var oldest time.Time
	if z := oldestCmd.Val(); len(z) > 0 {
		oldest = time.Unix(0, int64(z[0].Score))
	}
	allowed, retryAfter = rateLimitDecision(int(countCmd.Val()), limit, oldest, window, now)
	if !allowed {
		if err := c.rdb.ZRem(ctx, redisKey, member).Err(); err != nil {
			c.logger.Warn("撤回限流记录失败", zap.String("key", redisKey), zap.Error(err))
		}
	}
	return allowed, retryAfter, nil
}

// rateLimitDecision count 为写入本次请求后的窗口内计数
func rateLimitDecision(count, limit int, oldest time.Time, window time.Duration, now time.Time) (bool, time.Duration) {
	if count <= limit {
		return true, 0
	}
	var retryAfter time.Duration
	if !oldest.IsZero() {
		retryAfter = oldest.Add(window).Sub(now)
	}
	if retryAfter <= 0 {
		retryAfter = time.Second
	}
	return false, retryAfter
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
