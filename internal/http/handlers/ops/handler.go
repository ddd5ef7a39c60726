package ops

import "github.com/fieldops-next/internal/provider"

// Handler 外勤作业 API 处理器入口
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
