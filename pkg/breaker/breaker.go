package breaker

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Settings 熔断参数
type Settings struct {
	MaxRequests         uint32        // 半开状态允许的探测请求数
	Interval            time.Duration // 闭合状态计数清零周期
	Timeout             time.Duration // 打开状态持续时间
	ConsecutiveFailures uint32        // 连续失败多少次后熔断
}

// DefaultSettings 外部依赖（检索服务等）的默认熔断参数
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:         3,
		Interval:            10 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 3,
	}
}

// New 创建熔断器，状态变化记入日志
func New(name string, s Settings, logger *zap.Logger) *gobreaker.CircuitBreaker {
	threshold := s.ConsecutiveFailures
	if threshold == 0 {
		threshold = 3
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("熔断器状态变化",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}
