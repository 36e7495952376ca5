package service

import (
	"time"

	"github.com/routepilot/internal/constants"
)

// DurationMinutes 计算到店与离店之间的整分钟数。
// 任一端点缺失或离店早于到店时返回 nil。
func DurationMinutes(checkIn, checkOut *time.Time) *int {
	if checkIn == nil || checkOut == nil {
		return nil
	}
	if checkOut.Before(*checkIn) {
		return nil
	}
	minutes := int(checkOut.Sub(*checkIn).Seconds()) / 60
	return &minutes
}

// AccuracyFlag 将定位精度（米）归入质量分级。
// 0 历史上是“无定位”的哨兵值，与负值一律视为无效，归为 N/A。
func AccuracyFlag(meters *float64) string {
	if meters == nil || *meters <= 0 {
		return constants.AccuracyFlagNA
	}
	switch {
	case *meters <= constants.AccuracyGoodMeters:
		return constants.AccuracyFlagGood
	case *meters <= constants.AccuracyMediumMeters:
		return constants.AccuracyFlagMedium
	default:
		return constants.AccuracyFlagPoor
	}
}

// NormalizeAccuracy 在入库前清洗定位精度：非正值直接置空，
// 避免下游每个消费方都要重复过滤哨兵值。
func NormalizeAccuracy(meters *float64) *float64 {
	if meters == nil || *meters <= 0 {
		return nil
	}
	v := *meters
	return &v
}

// IsValidOutcome 拜访结果合法性检查
func IsValidOutcome(outcome string) bool {
	for _, o := range constants.VisitOutcomes {
		if o == outcome {
			return true
		}
	}
	return false
}
