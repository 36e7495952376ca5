package queue

import (
	"encoding/json"

	"github.com/routepilot/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskMaterializeDailyPlan 日计划生成任务
	TaskMaterializeDailyPlan = constants.TaskMaterializeDailyPlan
)

// MaterializeDailyPlanPayload 日计划生成任务载荷。Date 为 YYYY-MM-DD，空串表示当天。
type MaterializeDailyPlanPayload struct {
	Date string `json:"date"`
}

// NewMaterializeDailyPlanTask 创建日计划生成任务
func NewMaterializeDailyPlanTask(payload MaterializeDailyPlanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMaterializeDailyPlan, body), nil
}
