package cache

import (
	"context"
	"time"
)

// 守卫键保留时长：超过后允许重试方重新竞争（远端幂等检查仍然兜底）
const postGuardTTL = 10 * time.Minute

// AcquirePostingGuard 对台账自然键做 SETNX 抢占。
// 返回 false 表示同一业务键的另一次投递已在进行或刚完成。
// Redis 未启用时恒返回 true，由远端读写幂等检查独立兜底。
func AcquirePostingGuard(ctx context.Context, naturalKey string) (bool, error) {
	if !Enabled() {
		return true, nil
	}
	return redisClient.SetNX(ctx, buildKey("ledger:guard:"+naturalKey), 1, postGuardTTL).Result()
}

// ReleasePostingGuard 投递失败时释放守卫，允许稍后重试
func ReleasePostingGuard(ctx context.Context, naturalKey string) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Del(ctx, buildKey("ledger:guard:"+naturalKey)).Err()
}
