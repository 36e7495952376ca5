package field

import "github.com/routepilot/internal/provider"

// Handler 外勤端接口处理器入口
// 说明：该处理器仅用于业务员移动端 API。
type Handler struct {
	*provider.Container
}

// New 创建外勤端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
