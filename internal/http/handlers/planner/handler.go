package planner

import "github.com/routepilot/internal/provider"

// Handler 排程端接口处理器入口
// 说明：该处理器仅用于排程/运营侧 API。
type Handler struct {
	*provider.Container
}

// New 创建排程端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
