package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Timestamp 统一时间戳类型（epoch 毫秒）。
// 远端文档中的时间字段表示方式并不统一（RFC3339 字符串、秒、毫秒），
// 全部在此处归一化，核心代码只比较毫秒值。
type Timestamp int64

// epoch 秒与毫秒的分界：大于该值按毫秒处理
const millisThreshold = int64(1e12)

// Now 当前时间戳
func Now() Timestamp {
	return Timestamp(time.Now().UnixMilli())
}

// NewTimestamp 从 time.Time 创建时间戳
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return 0
	}
	return Timestamp(t.UnixMilli())
}

// Time 转换为 time.Time
func (t Timestamp) Time() time.Time {
	if t == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(t))
}

// IsZero 判断是否为零值
func (t Timestamp) IsZero() bool {
	return t == 0
}

// After 判断是否严格晚于另一时间戳
func (t Timestamp) After(other Timestamp) bool {
	return t > other
}

// MarshalJSON 输出 epoch 毫秒
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(t))
}

// UnmarshalJSON 解析异构时间表示
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*t = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = parseTimestampString(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*t = normalizeEpoch(int64(f))
	return nil
}

func parseTimestampString(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewTimestamp(parsed)
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		return NewTimestamp(parsed)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return normalizeEpoch(n)
	}
	return 0
}

func normalizeEpoch(n int64) Timestamp {
	if n <= 0 {
		return 0
	}
	if n < millisThreshold {
		return Timestamp(n * 1000)
	}
	return Timestamp(n)
}
