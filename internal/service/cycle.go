package service

import (
	"time"

	"github.com/routepilot/internal/constants"
)

// WeekOf 计算目标日期落在第几个轮换周（1..cycleWeeks）。
// anchor 为空时退化为单周模板，恒返回 1；target 早于 anchor 时
// 天数差为负，必须向下取整除法才能落到正确的周，不允许报错。
func WeekOf(cycleWeeks int, anchor, target time.Time) int {
	if cycleWeeks < 1 {
		cycleWeeks = 1
	}
	if anchor.IsZero() {
		return 1
	}
	days := daysBetween(anchor, target)
	week := floorDiv(days, 7) % cycleWeeks
	if week < 0 {
		week += cycleWeeks
	}
	return week + 1
}

// daysBetween 两个日历日期之间的整天数（忽略时分秒）
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// floorDiv 向下取整除法（Go 的整除向零取整，负数需修正）
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// TemplateStatusFor 计算模板的派生状态。
// 判定顺序固定：停用 > 草稿 > 未生效 > 已过期 > 生效中。
// 纯函数，today 由调用方注入，不读环境时钟。
func TemplateStatusFor(isDisabled bool, startDate, endDate *time.Time, today time.Time) string {
	if isDisabled {
		return constants.TemplateStatusInactive
	}
	if startDate == nil {
		return constants.TemplateStatusDraft
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	if start.After(day) {
		return constants.TemplateStatusScheduled
	}
	if endDate != nil {
		end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, time.UTC)
		if end.Before(day) {
			return constants.TemplateStatusExpired
		}
	}
	return constants.TemplateStatusActive
}

// WeekdayName 日期对应的星期名称（与排程明细的 day_of_week 对齐）
func WeekdayName(date time.Time) string {
	return date.Weekday().String()
}

// IsValidWeekday 星期名称合法性检查
func IsValidWeekday(name string) bool {
	for _, d := range constants.Weekdays {
		if d == name {
			return true
		}
	}
	return false
}
