package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/routepilot/internal/logger"
	"github.com/routepilot/internal/provider"
	"github.com/routepilot/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskMaterializeDailyPlan, c.handleMaterializeDailyPlan)
}

// handleMaterializeDailyPlan 消费日计划生成任务。
// 先刷新模板状态再生成，生成本身幂等，失败由 asynq 重试。
func (c *Consumer) handleMaterializeDailyPlan(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_materialize_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.MaterializeDailyPlanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_materialize_unmarshal_failed", "error", err)
		return err
	}

	date, err := resolveMaterializeDate(payload.Date)
	if err != nil {
		// 非法日期重试也不会成功，吞掉并告警
		logger.Warnw("worker_materialize_skip_invalid_date", "date", payload.Date, "error", err)
		return nil
	}

	if c.TemplateService == nil || c.MaterializerService == nil {
		logger.Warnw("worker_materialize_skip_service_nil", "date", date.Format("2006-01-02"))
		return nil
	}

	if _, err := c.TemplateService.RefreshStatuses(date); err != nil {
		logger.Warnw("worker_materialize_refresh_statuses_failed", "date", date.Format("2006-01-02"), "error", err)
	}

	created, err := c.MaterializerService.MaterializeDailyPlan(date)
	if err != nil {
		logger.Warnw("worker_materialize_failed", "date", date.Format("2006-01-02"), "error", err)
		return err
	}

	logger.Infow("worker_materialize_done",
		"date", date.Format("2006-01-02"),
		"created", created,
	)
	return nil
}

func resolveMaterializeDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
